package domain

// QueryName 描述一个待匹配的名字（来自名字文件的一行）。
//
// 不变量（实现必须遵守）：
// - Raw 已去除首尾空白且非空
// - Norm 由 normalize.Query 派生，创建后不再改写
type QueryName struct {
	Raw  string
	Norm string
}

// Candidate 描述目录中一个可参与匹配的文件。
type Candidate struct {
	Name string // 原始文件名（含扩展名）
	Norm string // 规范化形态（仅用于比较）
}

// MatchResult 是一次匹配的结果：每个 QueryName 至多一条，不返回候选列表。
//
// Matched=false 表示候选集合为空（打分对任意字符串都是全函数，
// 匹配阶段没有其他失败形态）。
type MatchResult struct {
	Query    QueryName
	Matched  bool
	Norm     string  // 命中的规范化形态
	Original string  // 由索引解析回的原始文件名
	Score    float64 // [0, 100]
}
