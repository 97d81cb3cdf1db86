package engine

import (
	"path/filepath"
	"regexp"
	"strings"
)

// typicalExcludePatterns drops the trees a JS workspace almost never wants
// rewritten: dependencies, build output and minified bundles.
var typicalExcludePatterns = []string{
	":(glob,exclude)node_modules/**",
	":(glob,exclude)vendor/**",
	":(glob,exclude)dist/**",
	":(glob,exclude)build/**",
	":(glob,exclude)out/**",
	":(glob,exclude).next/**",
	":(glob,exclude)coverage/**",
	":(glob,exclude)*.min.js",
	":(glob,exclude)*.min.mjs",
	":(glob,exclude)*.bundle.js",
}

// buildPathspecs builds the list to append after "--" for git grep and
// git ls-files.
func buildPathspecs(includes, excludes []string, typical bool) []string {
	normalized := make([]string, 0, len(includes))
	for _, raw := range includes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, filepath.ToSlash(trimmed))
	}

	out := make([]string, 0, len(normalized)+len(excludes)+len(typicalExcludePatterns)+1)
	if len(normalized) == 0 {
		out = append(out, ".")
	} else {
		out = append(out, normalized...)
	}

	if typical {
		out = append(out, typicalExcludePatterns...)
	}

	for _, raw := range excludes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		trimmed = filepath.ToSlash(trimmed)
		if strings.HasPrefix(trimmed, ":!") || strings.HasPrefix(trimmed, ":(exclude)") || strings.HasPrefix(trimmed, ":(glob,exclude)") {
			out = append(out, trimmed)
			continue
		}
		out = append(out, ":(glob,exclude)"+trimmed)
	}
	return out
}

func compilePathRegex(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		rx, err := regexp.Compile(trimmed)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rx)
	}
	return compiled, nil
}

func filterPathsByRegex(paths []string, rx []*regexp.Regexp) []string {
	if len(rx) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		for _, r := range rx {
			if r.MatchString(p) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
