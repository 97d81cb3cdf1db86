// Package opts holds the option plumbing shared by the CLI flags and the
// web query parameters, so both surfaces parse and validate identically.
package opts

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/example/delog/internal/console"
	"github.com/example/delog/internal/engine"
)

const maxJobs = 64

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(repoDir string) engine.Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return engine.Options{
		Receiver:       "console",
		Methods:        nil, // nil means console.DefaultMethods
		Write:          false,
		ApplyRisky:     false,
		Verify:         true,
		Backup:         true,
		Jobs:           jobs,
		RepoDir:        repoDir,
		ExcludeTypical: true,
		MaxFileBytes:   0,
		NoPrefilter:    false,
		Progress:       false,
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into
// the provided options. Validation happens separately via
// NormalizeAndValidate.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def

	if raw, ok := lastRawValue(q["receiver"]); ok {
		out.Receiver = raw
	}
	if raw, ok := lastRawValue(q["methods"]); ok {
		out.Methods = SplitMulti([]string{raw})
	}
	if vals := q["path"]; len(vals) > 0 {
		out.Paths = SplitMulti(vals)
	}
	if vals := q["exclude"]; len(vals) > 0 {
		out.Excludes = SplitMulti(vals)
	}
	if vals := q["path_regex"]; len(vals) > 0 {
		out.PathRegex = SplitMulti(vals)
	}
	if vals := q["langs"]; len(vals) > 0 {
		out.DetectLangs = SplitMulti(vals)
	}
	if raw, ok := lastLiteralValue(q["exclude_typical"]); ok {
		v, err := ParseBool(raw, "exclude_typical")
		if err != nil {
			return out, err
		}
		out.ExcludeTypical = v
	}
	if raw, ok := lastLiteralValue(q["risky"]); ok {
		v, err := ParseBool(raw, "risky")
		if err != nil {
			return out, err
		}
		out.ApplyRisky = v
	}
	if raw, ok := lastLiteralValue(q["verify"]); ok {
		v, err := ParseBool(raw, "verify")
		if err != nil {
			return out, err
		}
		out.Verify = v
	}
	if raw, ok := lastLiteralValue(q["backup"]); ok {
		v, err := ParseBool(raw, "backup")
		if err != nil {
			return out, err
		}
		out.Backup = v
	}
	if raw, ok := lastLiteralValue(q["no_prefilter"]); ok {
		v, err := ParseBool(raw, "no_prefilter")
		if err != nil {
			return out, err
		}
		out.NoPrefilter = v
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := ParseIntInRange(raw, "max_file_bytes", 0, 1<<31-1)
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = n
	}
	if raw, ok := lastLiteralValue(q["jobs"]); ok {
		n, err := ParseIntInRange(raw, "jobs", 1, maxJobs)
		if err != nil {
			return out, err
		}
		out.Jobs = n
	}
	return out, nil
}

// NormalizeAndValidate canonicalizes the options in place. Every input path
// (flags, env, config, web query) funnels through here so errors read the
// same everywhere.
func NormalizeAndValidate(o *engine.Options) error {
	o.Receiver = strings.TrimSpace(o.Receiver)
	if o.Receiver == "" {
		o.Receiver = "console"
	}
	if !isIdentifier(o.Receiver) {
		return fmt.Errorf("invalid receiver: %q", o.Receiver)
	}
	for _, m := range o.Methods {
		if !isIdentifier(strings.TrimSpace(m)) {
			return fmt.Errorf("invalid method name: %q", m)
		}
	}
	if o.Jobs < 1 || o.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}
	if o.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must not be negative")
	}
	if o.ApplyRisky && !o.Write {
		// risky only matters in write mode; normalize instead of erroring
		o.ApplyRisky = false
	}
	return nil
}

// MethodsOrDefault resolves the effective allow-list for display purposes.
func MethodsOrDefault(methods []string) []string {
	if len(methods) == 0 {
		return console.DefaultMethods
	}
	return methods
}

// ParseBool parses CLI/web boolean literals (1/0, true/false, yes/no,
// on/off).
func ParseBool(raw, field string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean for %s: %q", field, raw)
}

// ParseIntInRange parses an integer and enforces [min, max].
func ParseIntInRange(raw, field string, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", field, raw)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", field, min, max)
	}
	return n, nil
}

// SplitMulti splits repeated and comma-separated values into one flat,
// trimmed list.
func SplitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			out = append(out, trimmed)
		}
	}
	return out
}

func lastLiteralValue(values []string) (string, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(values[i])
		if trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func lastRawValue(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || c == '$' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
