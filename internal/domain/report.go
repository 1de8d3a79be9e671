package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusMatched   = "matched"
	StatusCopied    = "copied"
	StatusMoved     = "moved"
	StatusFiltered  = "filtered"
	StatusUnmatched = "unmatched"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

const (
	ErrCodeNamesUnreadable   = "names_unreadable"
	ErrCodeNoCandidates      = "no_candidates"
	ErrCodeBelowThreshold    = "below_threshold"
	ErrCodeCopyFailed        = "copy_failed"
	ErrCodeMoveFailed        = "move_failed"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeTargetConflict    = "target_conflict"
	ErrCodeSourceMissing     = "source_missing"
	ErrCodeCanceled          = "canceled"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	Path      string  `json:"path"`
	Mode      string  `json:"mode"`
	DryRun    bool    `json:"dry_run"`
	Threshold float64 `json:"threshold"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Matched   int `json:"matched"`
	Copied    int `json:"copied"`
	Moved     int `json:"moved"`
	Filtered  int `json:"filtered"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// TotalBytes 是保留匹配（含已复制/移动）文件的字节总和；
	// 仅在成功 stat 到源文件时累加。
	TotalBytes int64 `json:"total_bytes"`
}

// ItemResult 是单个输入名字的最终结果：每个名字恰好一条（含未匹配与被阈值过滤的）。
type ItemResult struct {
	Name  string  `json:"name"`
	Match string  `json:"match"` // 命中的原始文件名；无候选时为空
	Score float64 `json:"score"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Src       string `json:"src"`
	Dst       string `json:"dst"`
	SizeBytes int64  `json:"size_bytes"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 name 字典序；name=="" 的合成条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Name
		b := r.Items[j].Name
		if a == "" && b == "" {
			return false
		}
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusMatched:
			s.Matched++
		case StatusCopied:
			s.Copied++
		case StatusMoved:
			s.Moved++
		case StatusFiltered:
			s.Filtered++
		case StatusUnmatched:
			s.Unmatched++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}

		switch it.Status {
		case StatusMatched, StatusCopied, StatusMoved, StatusFailed, StatusSkipped:
			s.TotalBytes += it.SizeBytes
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
