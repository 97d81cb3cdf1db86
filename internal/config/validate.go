package config

import (
	"fmt"
	"strings"
)

var outputFormats = map[string]struct{}{
	"table":    {},
	"tsv":      {},
	"json":     {},
	"csv":      {},
	"markdown": {},
	"ndjson":   {},
}

var colorModes = map[string]struct{}{
	"auto":   {},
	"always": {},
	"never":  {},
}

// Validate canonicalizes and checks the resolved engine settings that the
// config layer owns. Engine-level validation (receiver, jobs range) happens
// later in opts.NormalizeAndValidate.
func (s *EngineSettings) Validate() error {
	out := strings.ToLower(strings.TrimSpace(s.Output))
	if out == "" {
		out = "table"
	}
	if _, ok := outputFormats[out]; !ok {
		return fmt.Errorf("invalid output format: %q (want table, tsv, json, csv, markdown, or ndjson)", s.Output)
	}
	s.Output = out

	color := strings.ToLower(strings.TrimSpace(s.Color))
	if color == "" {
		color = "auto"
	}
	if _, ok := colorModes[color]; !ok {
		return fmt.Errorf("invalid color mode: %q (want auto, always, or never)", s.Color)
	}
	s.Color = color

	if s.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0, got %d", s.MaxFileBytes)
	}
	return nil
}

// Validate checks the UI settings.
func (u *UISettings) Validate() error {
	if u.Truncate < 0 {
		return fmt.Errorf("truncate must be >= 0, got %d", u.Truncate)
	}
	return nil
}
