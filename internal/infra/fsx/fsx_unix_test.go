//go:build unix

package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestRename_CrossDeviceEXDEV(t *testing.T) {
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	err := Rename("/a", "/b")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if !IsCrossDevice(err) {
		t.Fatalf("期望 CrossDeviceError，实际：%T %v", err, err)
	}
}

func TestMoveFile_EXDEVFallsBackToCopyDelete(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := filepath.Join(srcDir, "a.txt")
	if err := os.WriteFile(src, []byte("cross device"), 0o644); err != nil {
		t.Fatalf("写入源文件失败：%v", err)
	}

	// 只对源文件的 rename 模拟 EXDEV；CopyFile 内部的临时文件 rename 走真实实现，
	// 这样才能验证“降级为 copy+删除源”的完整路径。
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		if strings.Contains(filepath.Base(oldpath), ".tmp-") {
			return os.Rename(oldpath, newpath)
		}
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	if err := MoveFile(src, dstDir, "a.txt"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	// 目标写入成功之后源文件才被删除；两边不能同时存在。
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("EXDEV 降级后源文件应被删除，Stat err=%v", err)
	}
	b, err := os.ReadFile(filepath.Join(dstDir, "a.txt"))
	if err != nil || string(b) != "cross device" {
		t.Fatalf("目标内容不符合预期：%q err=%v", b, err)
	}
}
