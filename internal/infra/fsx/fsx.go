package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
// 上层可把它映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示跨盘（EXDEV）导致的 rename 失败。
// MoveFile 捕获它并降级为 copy+删除源；直接调用 Rename 的场景由调用方决定。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘移动（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 os.Rename，并把 EXDEV 显式标记为 CrossDeviceError。
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// EnsureDir 确保 dir 是一个已存在的目录（含父目录）。
// 若该路径已存在但不是目录，返回 PathTypeConflictError。
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// CopyFile 把 src 复制为 dstDir/name，源文件保持不动。
//
// 语义（硬约束）：
// - 覆盖策略：目标同名文件被覆盖（同目录临时文件 + rename，尽量原子；
//   覆盖让重复运行幂等）
// - 目标路径已存在且不是常规文件（例如目录）：返回 PathTypeConflictError
// - 元数据：权限位与修改时间随内容一起带到目标
func CopyFile(src, dstDir, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return &PathTypeConflictError{Path: src, Want: "regular file", Got: fi.Mode().Type().String()}
	}

	dst := filepath.Join(filepath.Clean(dstDir), name)
	if dfi, err := os.Lstat(dst); err == nil {
		if dfi.IsDir() {
			return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	// 临时文件必须与目标文件在同目录，以保证 rename 的原子性。
	// 前缀带 '.'，避免半成品出现在目标目录视图里。
	tmp, err := os.CreateTemp(dstDir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Chmod(fi.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := Rename(tmpName, dst); err != nil {
		return err
	}

	// 修改时间在 rename 之后设置（设在临时文件上会被部分文件系统重置）。
	_ = os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	// 目录 fsync：best-effort（不同平台/文件系统的语义差异很大）。
	_ = syncDirBestEffort(dstDir)
	return nil
}

// MoveFile 把 src 移动为 dstDir/name。
//
// 快路径是 rename（同盘时原子且覆盖同名目标）；跨盘（EXDEV）时降级为
// CopyFile + 删除源——源文件只在目标写入成功之后才会被删除。
func MoveFile(src, dstDir, name string) error {
	dst := filepath.Join(filepath.Clean(dstDir), name)
	if dfi, err := os.Lstat(dst); err == nil {
		if dfi.IsDir() {
			return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	err := Rename(src, dst)
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return err
	}

	if err := CopyFile(src, dstDir, name); err != nil {
		return err
	}
	return os.Remove(src)
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
