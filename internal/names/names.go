package names

import (
	"bufio"
	"os"
	"strings"
)

// Read 读取名字文件：每行一个名字，去除首尾空白，丢弃空行，保持文件顺序。
//
// 打开/读取失败时返回 (nil, err)：上层把它降级为“零匹配”的运行结果并
// 在报告中说明，而不是让整个进程崩溃。
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]string, 0, 64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
