package config

import (
	"strings"

	"github.com/example/delog/internal/engine"
)

// EngineConfig は設定ファイル／環境変数からの上書き層。
// nil フィールドは「指定なし」を意味する。
type EngineConfig struct {
	Receiver       *string   `yaml:"receiver" toml:"receiver" json:"receiver"`
	Methods        *[]string `yaml:"methods" toml:"methods" json:"methods"`
	Paths          *[]string `yaml:"path" toml:"path" json:"path"`
	Excludes       *[]string `yaml:"exclude" toml:"exclude" json:"exclude"`
	PathRegex      *[]string `yaml:"path_regex" toml:"path_regex" json:"path_regex"`
	ExcludeTypical *bool     `yaml:"exclude_typical" toml:"exclude_typical" json:"exclude_typical"`
	Risky          *bool     `yaml:"risky" toml:"risky" json:"risky"`
	Verify         *bool     `yaml:"verify" toml:"verify" json:"verify"`
	Backup         *bool     `yaml:"backup" toml:"backup" json:"backup"`
	DetectLangs    *[]string `yaml:"langs" toml:"langs" json:"langs"`
	MaxFileBytes   *int      `yaml:"max_file_bytes" toml:"max_file_bytes" json:"max_file_bytes"`
	Jobs           *int      `yaml:"jobs" toml:"jobs" json:"jobs"`
	Repo           *string   `yaml:"repo" toml:"repo" json:"repo"`
	Output         *string   `yaml:"output" toml:"output" json:"output"`
	Color          *string   `yaml:"color" toml:"color" json:"color"`
	NoPrefilter    *bool     `yaml:"no_prefilter" toml:"no_prefilter" json:"no_prefilter"`
}

// UIConfig は表示まわりの上書き層。
type UIConfig struct {
	Fields   *string `yaml:"fields" toml:"fields" json:"fields"`
	Truncate *int    `yaml:"truncate" toml:"truncate" json:"truncate"`
}

type Config struct {
	Engine EngineConfig `yaml:"engine" toml:"engine" json:"engine"`
	UI     UIConfig     `yaml:"ui" toml:"ui" json:"ui"`
}

// EngineSettings is the resolved (non-pointer) form after merging layers.
type EngineSettings struct {
	Receiver       string
	Methods        []string
	Paths          []string
	Excludes       []string
	PathRegex      []string
	ExcludeTypical bool
	Risky          bool
	Verify         bool
	Backup         bool
	DetectLangs    []string
	MaxFileBytes   int
	Jobs           int
	Repo           string
	Output         string
	Color          string
	NoPrefilter    bool
}

type UISettings struct {
	Fields   string
	Truncate int
}

// EngineSettingsFromOptions seeds the merge base from engine defaults.
func EngineSettingsFromOptions(opts engine.Options) EngineSettings {
	return EngineSettings{
		Receiver:       opts.Receiver,
		Methods:        cloneStrings(opts.Methods),
		Paths:          cloneStrings(opts.Paths),
		Excludes:       cloneStrings(opts.Excludes),
		PathRegex:      cloneStrings(opts.PathRegex),
		ExcludeTypical: opts.ExcludeTypical,
		Risky:          opts.ApplyRisky,
		Verify:         opts.Verify,
		Backup:         opts.Backup,
		DetectLangs:    cloneStrings(opts.DetectLangs),
		MaxFileBytes:   opts.MaxFileBytes,
		Jobs:           opts.Jobs,
		Repo:           opts.RepoDir,
		Output:         "table",
		Color:          "auto",
		NoPrefilter:    opts.NoPrefilter,
	}
}

// ApplyToOptions writes the resolved settings back onto engine options.
func (s EngineSettings) ApplyToOptions(opts *engine.Options) {
	if opts == nil {
		return
	}
	opts.Receiver = s.Receiver
	opts.Methods = cloneStrings(s.Methods)
	opts.Paths = cloneStrings(s.Paths)
	opts.Excludes = cloneStrings(s.Excludes)
	opts.PathRegex = cloneStrings(s.PathRegex)
	opts.ExcludeTypical = s.ExcludeTypical
	opts.ApplyRisky = s.Risky
	opts.Verify = s.Verify
	opts.Backup = s.Backup
	opts.DetectLangs = cloneStrings(s.DetectLangs)
	opts.MaxFileBytes = s.MaxFileBytes
	opts.Jobs = s.Jobs
	if trimmed := strings.TrimSpace(s.Repo); trimmed != "" {
		opts.RepoDir = trimmed
	}
	opts.NoPrefilter = s.NoPrefilter
}

func DefaultUISettings() UISettings {
	return UISettings{Fields: "", Truncate: 0}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
