package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/rsnemmen/fuzzy-cp/internal/domain"
)

// DefaultThreshold 是阈值的最终默认值（当 CLI 与配置文件都未指定时）。
const DefaultThreshold = 50.0

// Ratio 计算两个字符串的相似度百分比 [0, 100]。
//
// 公式固定为 100 * (1 - 编辑距离 / max(len(a), len(b)))，长度按 rune 计，
// 比较前两侧都做大小写折叠；两个空串记 100。该 0~100 的尺度是对用户的
// 契约（阈值直接作用在它上面），替换底层编辑距离实现时不得改变公式。
//
// 这是 "quick ratio" 一族：单次全局编辑距离，不做分词重排、不做子串
// 搜索——速度优先，对乱序/部分文本不鲁棒。
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 100
	}
	m := la
	if lb > m {
		m = lb
	}

	d := levenshtein.ComputeDistance(a, b)
	s := 100 * (1 - float64(d)/float64(m))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Best 在 corpus 中为 query 选出得分最高的条目。
//
// 选择规则（确定性）：严格更高才替换；平手时 corpus 顺序靠前者胜出。
// corpus 为空时返回 ok=false。
func Best(query string, corpus []string) (norm string, score float64, ok bool) {
	if len(corpus) == 0 {
		return "", 0, false
	}

	norm = corpus[0]
	score = Ratio(query, corpus[0])
	for _, c := range corpus[1:] {
		if s := Ratio(query, c); s > score {
			score = s
			norm = c
		}
	}
	return norm, score, true
}

// Filter 保留得分 >= threshold 的匹配结果。
// 纯函数：不修改输入、保持输入顺序；未匹配的结果（Matched=false）一律丢弃。
func Filter(results []domain.MatchResult, threshold float64) []domain.MatchResult {
	out := make([]domain.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Matched && r.Score >= threshold {
			out = append(out, r)
		}
	}
	return out
}
