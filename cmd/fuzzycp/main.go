package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rsnemmen/fuzzy-cp/internal/app/run"
	"github.com/rsnemmen/fuzzy-cp/internal/config"
	"github.com/rsnemmen/fuzzy-cp/internal/domain"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, ra.CLIArgs())
	if err != nil {
		rr := reportForConfigError(cwd, ra, err)
		emitReport(rr, config.EffectiveConfig{})
		return 1
	}

	// Ctrl-C：进行中的条目完整收尾，剩余条目跳过（不会留下半成品目标文件）。
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(ctx, eff, obs)

	emitReport(rr, eff)
	if rr.Summary.Failed == 0 && rr.Summary.Unmatched == 0 {
		return 0
	}
	return 1
}

type runArgs struct {
	Path string

	Names    string
	NamesSet bool

	Mode    string
	ModeSet bool

	Dest    string
	DestSet bool

	Threshold    float64
	ThresholdSet bool

	Space    bool
	SpaceSet bool
}

func (ra runArgs) CLIArgs() config.CLIArgs {
	return config.CLIArgs{
		Path:         ra.Path,
		Names:        ra.Names,
		NamesSet:     ra.NamesSet,
		Mode:         ra.Mode,
		ModeSet:      ra.ModeSet,
		Dest:         ra.Dest,
		DestSet:      ra.DestSet,
		Threshold:    ra.Threshold,
		ThresholdSet: ra.ThresholdSet,
		Space:        ra.Space,
		SpaceSet:     ra.SpaceSet,
	}
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	takeValue := func(flag string, i *int) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--names":
			v, err := takeValue(a, &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Names = v
			ra.NamesSet = true
		case strings.HasPrefix(a, "--names="):
			ra.Names = strings.TrimPrefix(a, "--names=")
			ra.NamesSet = true
		case a == "--mode":
			v, err := takeValue(a, &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Mode = v
			ra.ModeSet = true
		case strings.HasPrefix(a, "--mode="):
			ra.Mode = strings.TrimPrefix(a, "--mode=")
			ra.ModeSet = true
		case a == "--dest":
			v, err := takeValue(a, &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Dest = v
			ra.DestSet = true
		case strings.HasPrefix(a, "--dest="):
			ra.Dest = strings.TrimPrefix(a, "--dest=")
			ra.DestSet = true
		case a == "--threshold":
			v, err := takeValue(a, &i)
			if err != nil {
				return runArgs{}, err
			}
			th, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return runArgs{}, fmt.Errorf("--threshold 必须是数字，实际是 %q", v)
			}
			ra.Threshold = th
			ra.ThresholdSet = true
		case strings.HasPrefix(a, "--threshold="):
			v := strings.TrimPrefix(a, "--threshold=")
			th, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return runArgs{}, fmt.Errorf("--threshold 必须是数字，实际是 %q", v)
			}
			ra.Threshold = th
			ra.ThresholdSet = true
		case a == "-s" || a == "--space":
			ra.Space = true
			ra.SpaceSet = true
		case strings.HasPrefix(a, "--space="):
			v := strings.TrimPrefix(a, "--space=")
			switch v {
			case "true":
				ra.Space = true
			case "false":
				ra.Space = false
			default:
				return runArgs{}, fmt.Errorf("--space 只能是 true 或 false，实际是 %q", v)
			}
			ra.SpaceSet = true
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.Path != "" {
				return runArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ra.Path, a)
			}
			ra.Path = a
		}
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  fuzzycp run [path] --names <file> [--mode report|copy|move] [--dest <dir>] [--threshold <0-100>] [-s|--space]

命令：
  run    对 path（默认读配置文件）下的文件做模糊匹配（默认只报告，不动文件）

使用 "fuzzycp run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  fuzzycp run [path] --names <file> [--mode report|copy|move] [--dest <dir>] [--threshold <0-100>] [-s|--space]

参数：
  --names      名字文件路径（每行一个名字；必填，可由 fuzzycp.json 提供）
  --mode       report（默认，只打印匹配结果）| copy | move
  --dest       copy/move 的目标目录（相对路径相对被扫描目录解析）
  --threshold  保留匹配的最低得分，[0, 100]，默认 50
  -s, --space  统计保留匹配文件占用的磁盘空间
  -h, --help   显示帮助
`)
}

var (
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // blue
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func emitReport(rr domain.RunReport, eff config.EffectiveConfig) {
	if isTTY(os.Stdout) {
		emitTable(os.Stdout, rr, eff)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：matched=%d copied=%d moved=%d filtered=%d unmatched=%d failed=%d skipped=%d\n",
		rr.Summary.Matched, rr.Summary.Copied, rr.Summary.Moved,
		rr.Summary.Filtered, rr.Summary.Unmatched, rr.Summary.Failed, rr.Summary.Skipped,
	)
}

func emitTable(w io.Writer, rr domain.RunReport, eff config.EffectiveConfig) {
	nameW, matchW := len("Name"), len("Best-match")
	for _, it := range rr.Items {
		if n := len(it.Name); n > nameW {
			nameW = n
		}
		if n := len(it.Match); n > matchW {
			matchW = n
		}
	}

	fmt.Fprintf(w, "%s  %s  %s\n",
		headerStyle.Inherit(nameStyle).Render(pad("Name", nameW)),
		headerStyle.Inherit(matchStyle).Render(pad("Best-match", matchW)),
		headerStyle.Inherit(scoreStyle).Render("Score"),
	)

	for _, it := range rr.Items {
		note := ""
		switch it.Status {
		case domain.StatusFiltered:
			note = "（低于阈值）"
		case domain.StatusUnmatched:
			note = "（无候选）"
		case domain.StatusFailed:
			note = "（失败：" + it.ErrorCode + "）"
		case domain.StatusSkipped:
			note = "（跳过）"
		}
		fmt.Fprintf(w, "%s  %s  %s%s\n",
			nameStyle.Render(pad(it.Name, nameW)),
			matchStyle.Render(pad(it.Match, matchW)),
			scoreStyle.Render(fmt.Sprintf("%3.0f", it.Score)),
			dimStyle.Render(note),
		)
	}

	fmt.Fprintf(w, "\n完成：matched=%d copied=%d moved=%d filtered=%d unmatched=%d failed=%d skipped=%d\n",
		rr.Summary.Matched, rr.Summary.Copied, rr.Summary.Moved,
		rr.Summary.Filtered, rr.Summary.Unmatched, rr.Summary.Failed, rr.Summary.Skipped,
	)
	if eff.Space {
		fmt.Fprintf(w, "磁盘空间 = %s\n", humanize.IBytes(uint64(rr.Summary.TotalBytes)))
	}

	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		key := it.Name
		if key == "" {
			key = "<run>"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
	}
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func reportForConfigError(cwd string, ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       cwd,
		Mode:       ra.Mode,
		DryRun:     !ra.ModeSet || ra.Mode == config.ModeReport,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
