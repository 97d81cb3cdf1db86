package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	engineopts "github.com/example/delog/internal/engine/opts"
)

// FromEnv collects DELOG_* overrides. getenv is injectable for tests.
// Invalid values are joined into one error so the user sees everything at once.
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config
	var errs []error

	if v, ok := lookup(getenv, "DELOG_RECEIVER"); ok {
		cfg.Engine.Receiver = &v
	}
	if v, ok := lookup(getenv, "DELOG_METHODS"); ok {
		list := engineopts.SplitMulti([]string{v})
		cfg.Engine.Methods = &list
	}
	if v, ok := lookup(getenv, "DELOG_PATH"); ok {
		list := engineopts.SplitMulti([]string{v})
		cfg.Engine.Paths = &list
	}
	if v, ok := lookup(getenv, "DELOG_EXCLUDE"); ok {
		list := engineopts.SplitMulti([]string{v})
		cfg.Engine.Excludes = &list
	}
	if v, ok := lookup(getenv, "DELOG_PATH_REGEX"); ok {
		list := engineopts.SplitMulti([]string{v})
		cfg.Engine.PathRegex = &list
	}
	if v, ok := lookup(getenv, "DELOG_LANGS"); ok {
		list := engineopts.SplitMulti([]string{v})
		cfg.Engine.DetectLangs = &list
	}
	if b, ok, err := envBool(getenv, "DELOG_EXCLUDE_TYPICAL"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.ExcludeTypical = &b
	}
	if b, ok, err := envBool(getenv, "DELOG_RISKY"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.Risky = &b
	}
	if b, ok, err := envBool(getenv, "DELOG_VERIFY"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.Verify = &b
	}
	if b, ok, err := envBool(getenv, "DELOG_BACKUP"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.Backup = &b
	}
	if b, ok, err := envBool(getenv, "DELOG_NO_PREFILTER"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.NoPrefilter = &b
	}
	if n, ok, err := envInt(getenv, "DELOG_MAX_FILE_BYTES"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.MaxFileBytes = &n
	}
	if n, ok, err := envInt(getenv, "DELOG_JOBS"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Engine.Jobs = &n
	}
	if v, ok := lookup(getenv, "DELOG_REPO"); ok {
		cfg.Engine.Repo = &v
	}
	if v, ok := lookup(getenv, "DELOG_OUTPUT"); ok {
		cfg.Engine.Output = &v
	}
	if v, ok := lookup(getenv, "DELOG_COLOR"); ok {
		cfg.Engine.Color = &v
	}
	if v, ok := lookup(getenv, "DELOG_FIELDS"); ok {
		cfg.UI.Fields = &v
	}
	if n, ok, err := envInt(getenv, "DELOG_TRUNCATE"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.UI.Truncate = &n
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return "", false
	}
	return v, true
}

func envBool(getenv func(string) string, key string) (bool, bool, error) {
	v, ok := lookup(getenv, key)
	if !ok {
		return false, false, nil
	}
	b, err := engineopts.ParseBool(v, key)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}

func envInt(getenv func(string) string, key string) (int, bool, error) {
	v, ok := lookup(getenv, key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer for %s: %q", key, v)
	}
	return n, true, nil
}
