package engine

import (
	"regexp"
	"time"

	"github.com/example/delog/internal/model"
)

// Item は検出された 1 件のコンソール呼び出しと、その扱いを表す。
type Item struct {
	File        string               `json:"file"`
	Line        int                  `json:"line"` // 1-based
	Method      string               `json:"method"`
	Class       model.Classification `json:"classification"`
	Risky       bool                 `json:"risky"`
	Preview     string               `json:"preview"`
	Replacement string               `json:"replacement,omitempty"`
	Reason      string               `json:"reason,omitempty"`
	Applied     bool                 `json:"applied"`
}

// ItemError は 1 ファイル／1 件の処理に失敗した際の情報を表す。
// 単一ファイルの異常はバッチ全体を止めない。
type ItemError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Options は実行オプション。
type Options struct {
	Receiver          string
	Methods           []string
	Write             bool
	ApplyRisky        bool
	Verify            bool
	Backup            bool
	Jobs              int
	RepoDir           string
	Paths             []string
	Excludes          []string
	PathRegex         []string
	PathRegexCompiled []*regexp.Regexp
	ExcludeTypical    bool
	DetectLangs       []string
	MaxFileBytes      int
	NoPrefilter       bool
	Progress          bool
	Now               time.Time
}

// Result は 1 回の走査／適用の出力。
type Result struct {
	Items         []Item      `json:"items"`
	FilesScanned  int         `json:"files_scanned"`
	FilesChanged  int         `json:"files_changed"`
	Total         int         `json:"total"`
	Removed       int         `json:"removed"`
	Replaced      int         `json:"replaced"`
	SkippedRisky  int         `json:"skipped_risky"`
	BackupSession string      `json:"backup_session,omitempty"`
	DryRun        bool        `json:"dry_run"`
	ElapsedMS     int64       `json:"elapsed_ms"`
	Errors        []ItemError `json:"errors,omitempty"`
	ErrorCount    int         `json:"error_count"`
}
