package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rsnemmen/fuzzy-cp/internal/normalize"
)

// Index 保存一次目录扫描得到的候选集合。构建完成后只读。
//
// corpus 按排序后的文件名顺序保存每个文件的规范化形态（允许重复）；
// orig 把规范化形态解析回原始文件名。两个文件名规范化后相同（碰撞）时，
// 排序序列中后出现的覆盖先出现的（确定性策略，见 Resolve 的说明）。
type Index struct {
	corpus []string
	orig   map[string]string
}

// Build 扫描 dir 的顶层条目并构建索引。
//
// 规则（硬约束）：
// - 只保留常规文件（目录、socket 等一律跳过；符号链接按其指向判断）
// - 隐藏条目（以 '.' 开头）在发现阶段排除
// - 文件名排序后再规范化，保证 corpus 顺序与碰撞结果跨平台稳定
//
// dir 是显式参数：核心永远不依赖进程的当前工作目录。
// 索引每次运行都重新构建，不做任何跨运行缓存。
func Build(dir string) (*Index, error) {
	dir = filepath.Clean(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			continue
		}
		// 这里必须 Stat（而不是看 DirEntry 类型）：符号链接按指向的目标判定。
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	idx := &Index{
		corpus: make([]string, 0, len(names)),
		orig:   make(map[string]string, len(names)),
	}
	for _, n := range names {
		norm := normalize.Filename(n)
		idx.corpus = append(idx.corpus, norm)
		// 碰撞策略：排序序列中最后一个胜出。
		idx.orig[norm] = n
	}
	return idx, nil
}

// Corpus 返回匹配阶段搜索的规范化形态序列（调用方不得修改）。
func (x *Index) Corpus() []string { return x.corpus }

// Len 返回索引内的文件数（含规范化后碰撞的重复形态）。
func (x *Index) Len() int { return len(x.corpus) }

// Resolve 把 Matcher 产出的规范化形态解析回原始文件名。
//
// 注意：碰撞时这里返回的是“最后胜出”的原始文件名，而 corpus 中该形态
// 可能在更早的位置就参与了选中（平手取先）。也就是说一个名字可能匹配到
// 某个文件、却解析出另一个同形态文件的名字——这是上游实现原有的行为，
// 保留并在测试中显式标注，而不是悄悄改掉。
func (x *Index) Resolve(norm string) (string, bool) {
	v, ok := x.orig[norm]
	return v, ok
}
