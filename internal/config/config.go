package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsnemmen/fuzzy-cp/internal/match"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 fuzzycp.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// ModeReport 只打印匹配结果，不做任何文件操作（默认，等价 dry-run）。
	ModeReport = "report"
	// ModeCopy 把保留匹配复制到目标目录（源文件保持不动）。
	ModeCopy = "copy"
	// ModeMove 把保留匹配移动到目标目录。
	ModeMove = "move"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --threshold=30 必须能覆盖配置文件里的 60。
type CLIArgs struct {
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

// FileConfig 对应 fuzzycp.json 的解析结构。
type FileConfig struct {
	Path      string   `json:"path"`
	Names     string   `json:"names"`
	Mode      string   `json:"mode"`
	Dest      string   `json:"dest"`
	Threshold *float64 `json:"threshold"`
	Space     *bool    `json:"space"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，
// 不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string // 被扫描目录（clean + absolute）

	Names     string // 名字文件路径（clean + absolute）
	Mode      string
	Dest      string // copy/move 的目标目录；report 模式恒为空
	Threshold float64
	Space     bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按固定规则发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/fuzzycp.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/fuzzycp.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - names/mode/dest/threshold/space：CLI > config > 默认
//   （默认：mode=report，threshold=50，space=false；names 没有默认、必填）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/fuzzycp.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, "fuzzycp.json")

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(cwdAbs, absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/fuzzycp.json，且其中必须包含 path。
	cfgPath := filepath.Join(cwdAbs, "fuzzycp.json")
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(cwdAbs, absPath, cli, fc, cfgPath)
}

func merge(cwdAbs, absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// names：CLI > config；必填。相对路径相对调用者的 cwd 解析
	// （名字文件是用户在命令行手里的东西，不跟着被扫描目录走）。
	namesRaw := ""
	if cli.NamesSet {
		namesRaw = cli.Names
	} else {
		namesRaw = fc.Names
	}
	if strings.TrimSpace(namesRaw) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("缺少 names（名字文件路径）")}
	}
	namesAbs := absCleanFrom(cwdAbs, namesRaw)

	// mode：CLI > config > 默认 report。
	mode := ModeReport
	if cli.ModeSet {
		mode = cli.Mode
	} else if strings.TrimSpace(fc.Mode) != "" {
		mode = fc.Mode
	}
	if err := validateMode(mode); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// dest：CLI > config；copy/move 必填，report 禁止。
	// 相对路径相对被扫描目录解析（让结果不依赖从哪里启动命令）。
	destRaw := ""
	if cli.DestSet {
		destRaw = cli.Dest
	} else {
		destRaw = fc.Dest
	}
	destRaw = strings.TrimSpace(destRaw)

	dest := ""
	switch mode {
	case ModeReport:
		if destRaw != "" {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("mode=report 不接受 dest（report 与 copy/move 互斥）")}
		}
	default:
		if destRaw == "" {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("mode=%s 需要 dest（目标目录）", mode)}
		}
		dest = absCleanFrom(absPath, destRaw)
	}

	// threshold：CLI > config > 默认 50；范围 [0, 100]。
	threshold := match.DefaultThreshold
	if cli.ThresholdSet {
		threshold = cli.Threshold
	} else if fc.Threshold != nil {
		threshold = *fc.Threshold
	}
	if threshold < 0 || threshold > 100 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("threshold 必须在 [0, 100]，实际是 %v", threshold)}
	}

	space := false
	if cli.SpaceSet {
		space = cli.Space
	} else if fc.Space != nil {
		space = *fc.Space
	}

	return EffectiveConfig{
		Path:      absPath,
		Names:     namesAbs,
		Mode:      mode,
		Dest:      dest,
		Threshold: threshold,
		Space:     space,
	}, nil
}

func validateMode(m string) error {
	switch m {
	case ModeReport, ModeCopy, ModeMove:
		return nil
	case "":
		return fmt.Errorf("mode 不能为空")
	default:
		return fmt.Errorf("mode 只能是 report、copy 或 move，实际是 %q", m)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
