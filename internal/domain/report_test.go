package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Path:       "/abs/path",
		Mode:       "report",
		DryRun:     true,
		Threshold:  50,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Name: "GoldenEye 007", Status: StatusFiltered, Score: 33},
			{Name: "", Status: StatusFailed}, // names/config 等合成项
			{Name: "Banjo-Kazooie", Status: StatusMatched, Score: 100, SizeBytes: 7},
			{Name: "Doom 64", Status: StatusUnmatched},
		},
	}

	r.Finalize()

	// name=="" 必须排在最后；其余按字典序。
	got := []string{r.Items[0].Name, r.Items[1].Name, r.Items[2].Name, r.Items[3].Name}
	if got[0] != "Banjo-Kazooie" || got[1] != "Doom 64" || got[2] != "GoldenEye 007" || got[3] != "" {
		t.Fatalf("items 排序不符合契约：%v", got)
	}
	if r.Summary.Matched != 1 || r.Summary.Filtered != 1 || r.Summary.Failed != 1 || r.Summary.Unmatched != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
	// filtered/unmatched 不计入 TotalBytes。
	if r.Summary.TotalBytes != 7 {
		t.Fatalf("TotalBytes 期望 7，实际 %d", r.Summary.TotalBytes)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if len(b) == 0 || !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_Finalize_CopyMoveBytes(t *testing.T) {
	r := RunReport{
		Items: []ItemResult{
			{Name: "a", Status: StatusCopied, SizeBytes: 3},
			{Name: "b", Status: StatusMoved, SizeBytes: 5},
			{Name: "c", Status: StatusSkipped, SizeBytes: 11},
		},
	}
	r.Finalize()
	if r.Summary.Copied != 1 || r.Summary.Moved != 1 || r.Summary.Skipped != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
	if r.Summary.TotalBytes != 19 {
		t.Fatalf("TotalBytes 期望 19，实际 %d", r.Summary.TotalBytes)
	}
}
