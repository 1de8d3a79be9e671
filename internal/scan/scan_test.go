package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuild_SkipsHiddenAndDirs(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "Super Mario 64 (U) [!].v64"))
	touch(t, filepath.Join(dir, ".hidden.v64"))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	idx, err := Build(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("期望 1 个候选，实际 %d：%v", idx.Len(), idx.Corpus())
	}
	if idx.Corpus()[0] != "Super Mario 64" {
		t.Fatalf("规范化形态不符合预期：%q", idx.Corpus()[0])
	}
	orig, ok := idx.Resolve("Super Mario 64")
	if !ok || orig != "Super Mario 64 (U) [!].v64" {
		t.Fatalf("Resolve 不符合预期：%q ok=%v", orig, ok)
	}
}

func TestBuild_CorpusSortedOrder(t *testing.T) {
	dir := t.TempDir()

	// 创建顺序与字典序相反：corpus 顺序必须来自排序后的文件名。
	touch(t, filepath.Join(dir, "zelda.n64"))
	touch(t, filepath.Join(dir, "mario.n64"))
	touch(t, filepath.Join(dir, "banjo.n64"))

	idx, err := Build(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"banjo", "mario", "zelda"}
	for i, w := range want {
		if idx.Corpus()[i] != w {
			t.Fatalf("corpus 顺序不稳定：%v", idx.Corpus())
		}
	}
}

func TestBuild_CollisionLastWins(t *testing.T) {
	dir := t.TempDir()

	// "Game (U).rom" 与 "Game [!].bin" 规范化后同为 "Game"。
	// 碰撞策略：排序序列靠后的覆盖靠前的，因此 Resolve 返回 "Game [!].bin"
	// （'[' (0x5b) 在 '(' (0x28) 之后）。一个名字可能因此匹配到 corpus 里
	// 较早的形态、却解析出另一个文件名——这是被显式保留的上游行为。
	touch(t, filepath.Join(dir, "Game (U).rom"))
	touch(t, filepath.Join(dir, "Game [!].bin"))

	idx, err := Build(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("corpus 应保留重复形态：%v", idx.Corpus())
	}
	if idx.Corpus()[0] != "Game" || idx.Corpus()[1] != "Game" {
		t.Fatalf("规范化形态不符合预期：%v", idx.Corpus())
	}
	orig, ok := idx.Resolve("Game")
	if !ok || orig != "Game [!].bin" {
		t.Fatalf("碰撞应由排序后最后一个胜出，实际：%q ok=%v", orig, ok)
	}
}

func TestBuild_MissingDir(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
