package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rsnemmen/fuzzy-cp/internal/config"
	"github.com/rsnemmen/fuzzy-cp/internal/domain"
	"github.com/rsnemmen/fuzzy-cp/internal/infra/fsx"
	"github.com/rsnemmen/fuzzy-cp/internal/match"
	"github.com/rsnemmen/fuzzy-cp/internal/names"
	"github.com/rsnemmen/fuzzy-cp/internal/normalize"
	"github.com/rsnemmen/fuzzy-cp/internal/scan"
)

// Execute 执行一次 run（report/copy/move），并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为 item 级失败（单条失败不影响其他）。
func Execute(ctx context.Context, eff config.EffectiveConfig) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息
// （由上层决定是否启用）。
//
// 流水线是严格串行的：读名字 → 建索引 → 全部匹配 → 阈值过滤 → 文件操作。
// 所有匹配在第一个文件操作之前完成，匹配阶段的任何问题都不可能留下
// 半执行的文件操作。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		Mode:      eff.Mode,
		DryRun:    eff.Mode == config.ModeReport,
		Threshold: eff.Threshold,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, 64),
	}

	// 名字文件不可读：降级为零匹配的运行结果（不崩溃，由上层决定退出码）。
	queries, err := names.Read(eff.Names)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeNamesUnreadable, fmt.Sprintf("读取名字文件失败：%v", err)))
		return finish(rr)
	}

	scanStarted := time.Now()
	idx, err := scan.Build(eff.Path)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描目录失败：%v", err)))
		return finish(rr)
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"names": len(queries),
			"files": idx.Len(),
		}, time.Since(scanStarted))
	}

	// 匹配阶段：对打分而言任意两个字符串都可比，这里没有失败路径。
	matchStarted := time.Now()
	results := make([]domain.MatchResult, 0, len(queries))
	for _, raw := range queries {
		q := domain.QueryName{Raw: raw, Norm: normalize.Query(raw)}
		res := domain.MatchResult{Query: q}
		if norm, score, ok := match.Best(q.Norm, idx.Corpus()); ok {
			orig, _ := idx.Resolve(norm)
			res.Matched = true
			res.Norm = norm
			res.Original = orig
			res.Score = score
		}
		results = append(results, res)
	}
	retained := match.Filter(results, eff.Threshold)
	if obs != nil {
		obs.OnPhaseDone("match", map[string]any{
			"matched":  len(results),
			"retained": len(retained),
		}, time.Since(matchStarted))
	}

	// 未匹配与低于阈值的条目先进报告：每个输入名字都必须有解释。
	retainedSet := make(map[int]struct{}, len(retained))
	for i, r := range results {
		if r.Matched && r.Score >= eff.Threshold {
			retainedSet[i] = struct{}{}
			continue
		}
		rr.Items = append(rr.Items, droppedItem(r, eff.Threshold))
	}

	if eff.Mode == config.ModeReport {
		for i, r := range results {
			if _, ok := retainedSet[i]; !ok {
				continue
			}
			rr.Items = append(rr.Items, reportItem(eff, r))
		}
		return finish(rr)
	}

	// 执行阶段前置条件：目标目录必须先就位；创建失败对整批致命，
	// 一个条目都不尝试。
	if obs != nil {
		obs.OnPhaseDone("exec", map[string]any{
			"total_items": len(retained),
		}, 0)
	}
	if err := fsx.EnsureDir(eff.Dest); err != nil {
		code := domain.ErrCodeIOFailed
		if fsx.IsPathTypeConflict(err) {
			code = domain.ErrCodeTargetConflict
		}
		msg := fmt.Sprintf("创建目标目录失败，整批中止：%v", err)
		for _, r := range retained {
			it := baseItem(r)
			it.Status = domain.StatusFailed
			it.ErrorCode = code
			it.ErrorMsg = msg
			rr.Items = append(rr.Items, it)
		}
		return finish(rr)
	}

	canceled := false
	for i, r := range retained {
		// 取消信号只在条目边界生效：进行中的操作完整收尾，剩余条目跳过，
		// 绝不留下写了一半的目标文件。
		if !canceled {
			select {
			case <-ctx.Done():
				canceled = true
			default:
			}
		}
		if canceled {
			it := baseItem(r)
			it.Status = domain.StatusSkipped
			it.ErrorCode = domain.ErrCodeCanceled
			it.ErrorMsg = "收到取消信号，剩余条目跳过"
			rr.Items = append(rr.Items, it)
			continue
		}

		oneStarted := time.Now()
		it := execOne(eff, r)
		rr.Items = append(rr.Items, it)
		if obs != nil {
			obs.OnItemDone(i+1, len(retained), r.Query.Raw, it, time.Since(oneStarted))
		}
	}

	return finish(rr)
}

// execOne 对一条保留匹配执行 copy/move。
// 任何失败都被捕获为该条目的结果（单条失败不中止整批）。
func execOne(eff config.EffectiveConfig, r domain.MatchResult) domain.ItemResult {
	it := baseItem(r)
	srcAbs := filepath.Join(eff.Path, r.Original)

	// 扫描与执行之间源文件可能消失：显式标记，而不是让 copy/move 报一个
	// 含糊的 IO 错误。
	fi, err := os.Stat(srcAbs)
	if err != nil {
		it.Status = domain.StatusFailed
		if os.IsNotExist(err) {
			it.ErrorCode = domain.ErrCodeSourceMissing
			it.ErrorMsg = fmt.Sprintf("源文件在扫描后消失：%q", r.Original)
		} else {
			it.ErrorCode = domain.ErrCodeIOFailed
			it.ErrorMsg = err.Error()
		}
		return it
	}
	it.SizeBytes = fi.Size()

	switch eff.Mode {
	case config.ModeCopy:
		if err := fsx.CopyFile(srcAbs, eff.Dest, r.Original); err != nil {
			fillExecError(&it, domain.ErrCodeCopyFailed, err)
			return it
		}
		it.Status = domain.StatusCopied
	case config.ModeMove:
		if err := fsx.MoveFile(srcAbs, eff.Dest, r.Original); err != nil {
			fillExecError(&it, domain.ErrCodeMoveFailed, err)
			return it
		}
		it.Status = domain.StatusMoved
	}
	return it
}

func baseItem(r domain.MatchResult) domain.ItemResult {
	return domain.ItemResult{
		Name:  r.Query.Raw,
		Match: r.Original,
		Score: r.Score,
		Src:   r.Original,
		Dst:   r.Original, // 目标文件名与源同名（目录由 eff.Dest 决定）
	}
}

func reportItem(eff config.EffectiveConfig, r domain.MatchResult) domain.ItemResult {
	it := baseItem(r)
	it.Dst = ""
	it.Status = domain.StatusMatched
	// report 模式不读文件内容；--space 需要尺寸时只做 stat。
	if eff.Space {
		if fi, err := os.Stat(filepath.Join(eff.Path, r.Original)); err == nil {
			it.SizeBytes = fi.Size()
		}
	}
	return it
}

func droppedItem(r domain.MatchResult, threshold float64) domain.ItemResult {
	it := domain.ItemResult{
		Name:  r.Query.Raw,
		Match: r.Original,
		Score: r.Score,
	}
	if !r.Matched {
		it.Status = domain.StatusUnmatched
		it.ErrorCode = domain.ErrCodeNoCandidates
		it.ErrorMsg = "目录中没有可匹配的候选文件"
		return it
	}
	it.Status = domain.StatusFiltered
	it.ErrorCode = domain.ErrCodeBelowThreshold
	it.ErrorMsg = fmt.Sprintf("最佳得分 %.1f 低于阈值 %.1f", r.Score, threshold)
	return it
}

func fillExecError(it *domain.ItemResult, code string, err error) {
	it.Status = domain.StatusFailed
	if fsx.IsPathTypeConflict(err) {
		it.ErrorCode = domain.ErrCodeTargetConflict
	} else if os.IsNotExist(err) {
		it.ErrorCode = domain.ErrCodeSourceMissing
	} else {
		it.ErrorCode = code
	}
	it.ErrorMsg = err.Error()
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

func finish(rr domain.RunReport) domain.RunReport {
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}
