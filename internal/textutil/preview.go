// Package textutil provides display-width helpers for rendering match
// previews in terminal tables. Widths are wcwidth-based so CJK text and
// emoji in source previews do not break column alignment.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CollapsePreview flattens src into a single display line: runs of
// whitespace (line breaks included) become one space, and the result is
// truncated to fit width columns with a trailing ellipsis.
func CollapsePreview(src string, width int) string {
	collapsed := strings.Join(strings.Fields(src), " ")
	return TruncateByWidth(collapsed, width, "…")
}

// VisibleWidth returns the terminal display width of s.
func VisibleWidth(s string) int {
	if s == "" {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	width := 0
	for g.Next() {
		width += runewidth.StringWidth(g.Str())
	}
	return width
}

// TruncateByWidth truncates s to fit width w without splitting grapheme
// clusters. When truncation happens and ellipsis is non-empty it is appended
// if it fits.
func TruncateByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	ellW := runewidth.StringWidth(ellipsis)
	budget := w
	if ellW <= w {
		budget = w - ellW
	} else {
		ellipsis = ""
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		seg := g.Str()
		segW := runewidth.StringWidth(seg)
		if used+segW > budget {
			break
		}
		b.WriteString(seg)
		used += segW
	}
	return b.String() + ellipsis
}

// PadRight pads s with spaces so the visible width equals w.
func PadRight(s string, w int) string {
	pad := w - VisibleWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
