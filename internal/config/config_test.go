package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEffective_CLIPath_ConfigOptional(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{
		Path:     root,
		Names:    "names.txt",
		NamesSet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != filepath.Clean(root) {
		t.Fatalf("path 不符合预期：%q", eff.Path)
	}
	// 相对 names 相对 cwd 解析。
	if eff.Names != filepath.Join(cwd, "names.txt") {
		t.Fatalf("names 解析不符合预期：%q", eff.Names)
	}
	if eff.Mode != ModeReport || eff.Threshold != 50 || eff.Space {
		t.Fatalf("默认值不符合预期：%+v", eff)
	}
	if eff.Dest != "" {
		t.Fatalf("report 模式 dest 应为空：%q", eff.Dest)
	}
}

func TestLoadEffective_NoPath_ConfigRequired(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{Names: "n.txt", NamesSet: true})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 config_not_found，实际：%v", err)
	}

	// 有配置文件但缺 path。
	writeConfig(t, cwd, `{"names":"n.txt"}`)
	_, err = LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 config_missing_path，实际：%v", err)
	}
}

func TestLoadEffective_MergePriority(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()

	// 配置文件提供 mode/threshold/space；CLI 覆盖 threshold。
	writeConfig(t, root, `{"names":"from-config.txt","mode":"copy","dest":"matched","threshold":60,"space":true}`)

	eff, err := LoadEffective(cwd, CLIArgs{
		Path:         root,
		Threshold:    30,
		ThresholdSet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Mode != ModeCopy {
		t.Fatalf("mode 应来自配置文件：%q", eff.Mode)
	}
	if eff.Threshold != 30 {
		t.Fatalf("CLI 必须覆盖配置文件的 threshold：%v", eff.Threshold)
	}
	if !eff.Space {
		t.Fatalf("space 应来自配置文件")
	}
	// 相对 dest 相对被扫描目录解析。
	if eff.Dest != filepath.Join(filepath.Clean(root), "matched") {
		t.Fatalf("dest 解析不符合预期：%q", eff.Dest)
	}
}

func TestLoadEffective_Validation(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()

	// names 必填。
	_, err := LoadEffective(cwd, CLIArgs{Path: root})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("缺 names 应为 config_invalid，实际：%v", err)
	}

	// mode 非法。
	_, err = LoadEffective(cwd, CLIArgs{Path: root, Names: "n", NamesSet: true, Mode: "sync", ModeSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("非法 mode 应为 config_invalid，实际：%v", err)
	}

	// copy 模式缺 dest。
	_, err = LoadEffective(cwd, CLIArgs{Path: root, Names: "n", NamesSet: true, Mode: ModeCopy, ModeSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("copy 缺 dest 应为 config_invalid，实际：%v", err)
	}

	// report 模式给了 dest。
	_, err = LoadEffective(cwd, CLIArgs{Path: root, Names: "n", NamesSet: true, Dest: "d", DestSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("report 带 dest 应为 config_invalid，实际：%v", err)
	}

	// threshold 越界。
	_, err = LoadEffective(cwd, CLIArgs{Path: root, Names: "n", NamesSet: true, Threshold: 101, ThresholdSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("threshold 越界应为 config_invalid，实际：%v", err)
	}
}

func TestLoadEffective_BadJSON(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	writeConfig(t, root, `{not json`)

	_, err := LoadEffective(cwd, CLIArgs{Path: root, Names: "n", NamesSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("坏 JSON 应为 config_invalid，实际：%v", err)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "fuzzycp.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败：%v", err)
	}
}
