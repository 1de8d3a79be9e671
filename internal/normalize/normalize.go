package normalize

import (
	"path/filepath"
	"regexp"
	"strings"
)

// bracketedRE 匹配一段被括号包住的子串（含括号本身与两侧空白）。
//
// 开闭括号不要求同类（"(abc]" 也会被整段移除），配对从左到右独立进行，
// 不要求全局平衡：残缺的括号（只有开没有闭）原样保留，永不报错。
var bracketedRE = regexp.MustCompile(`\s*[\[({][^\])}]*[\])}]\s*`)

// Query 把一个名字规范化为比较形态：
// 1) 下划线/连字符替换为空格
// 2) 移除括号段（()、[]、{}，不嵌套）
// 3) 空白折叠为单个空格并去除首尾空白
//
// 大小写保留（比较时由 Matcher 折叠），结果可能为空串（合法）。
// 对任意输入幂等：Query(Query(s)) == Query(s)。
func Query(raw string) string {
	s := strings.ReplaceAll(raw, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = bracketedRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Filename 先去掉最后一个扩展名，再做 Query 的规范化。
// 只对文件名使用；名字文件里的查询名不做扩展名剥离。
func Filename(name string) string {
	return Query(strings.TrimSuffix(name, filepath.Ext(name)))
}
