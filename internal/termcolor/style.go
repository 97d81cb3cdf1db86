package termcolor

import (
	"github.com/fatih/color"
)

// Styles はテーブル出力で使うセルごとの装飾。enabled が false のときは
// すべて素通しになる。
type Styles struct {
	Location    *color.Color
	Method      *color.Color
	Risky       *color.Color
	Safe        *color.Color
	Applied     *color.Color
	Skipped     *color.Color
	Replacement *color.Color
}

// NewStyles は有効／無効を固定した装飾セットを返す。
// グローバルな color.NoColor には依存しない。
func NewStyles(enabled bool) *Styles {
	s := &Styles{
		Location:    color.New(color.FgCyan),
		Method:      color.New(color.Bold),
		Risky:       color.New(color.FgYellow),
		Safe:        color.New(color.FgGreen),
		Applied:     color.New(color.FgGreen),
		Skipped:     color.New(color.Faint),
		Replacement: color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{s.Location, s.Method, s.Risky, s.Safe, s.Applied, s.Skipped, s.Replacement} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Risk renders the risk column value.
func (s *Styles) Risk(risky bool) string {
	if risky {
		return s.Risky.Sprint("risky")
	}
	return s.Safe.Sprint("safe")
}

// AppliedMark renders the applied column value.
func (s *Styles) AppliedMark(applied bool) string {
	if applied {
		return s.Applied.Sprint("yes")
	}
	return s.Skipped.Sprint("no")
}
