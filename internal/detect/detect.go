// Package detect decides whether a file belongs to the JavaScript family the
// rewriter understands. Detection is by extension first, shebang second; the
// content itself is never parsed here.
package detect

import (
	"bytes"
	"path/filepath"
	"strings"
)

type Info struct {
	Name string
}

var extensionLanguages = map[string]string{
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".mts":    "typescript",
	".cts":    "typescript",
	".vue":    "vue",
	".svelte": "svelte",
	".astro":  "astro",
}

var shebangLanguages = map[string]string{
	"node": "javascript",
	"deno": "typescript",
	"bun":  "javascript",
}

// FromPathAndContent resolves the language of a file. An empty Name means
// the file is not a scan candidate.
func FromPathAndContent(p string, data []byte) Info {
	ext := strings.ToLower(filepath.Ext(filepath.Base(p)))
	if lang, ok := extensionLanguages[ext]; ok {
		return Info{Name: lang}
	}
	if lang := detectByShebang(data); lang != "" {
		return Info{Name: lang}
	}
	return Info{}
}

func detectByShebang(data []byte) string {
	if !bytes.HasPrefix(data, []byte("#!")) {
		return ""
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	line := strings.ToLower(string(data[:end]))
	for key, lang := range shebangLanguages {
		if strings.Contains(line, key) {
			return lang
		}
	}
	return ""
}

// Scannable reports whether the detected language is in the JS family.
func Scannable(info Info) bool {
	return info.Name != ""
}

// MatchesLang reports whether the detected language is in the allow list.
// An empty list allows everything scannable.
func MatchesLang(info Info, allow []string) bool {
	if len(allow) == 0 {
		return Scannable(info)
	}
	for _, raw := range allow {
		if strings.EqualFold(strings.TrimSpace(raw), info.Name) {
			return true
		}
	}
	return false
}
