package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	engineopts "github.com/example/delog/internal/engine/opts"
)

// engineKeyMap maps accepted spellings to canonical engine keys.
var engineKeyMap = map[string]string{
	"receiver":        "receiver",
	"methods":         "methods",
	"method":          "methods",
	"path":            "path",
	"paths":           "path",
	"exclude":         "exclude",
	"excludes":        "exclude",
	"path_regex":      "path_regex",
	"path_regexes":    "path_regex",
	"exclude_typical": "exclude_typical",
	"risky":           "risky",
	"apply_risky":     "risky",
	"verify":          "verify",
	"backup":          "backup",
	"langs":           "langs",
	"languages":       "langs",
	"max_file_bytes":  "max_file_bytes",
	"max_bytes":       "max_file_bytes",
	"jobs":            "jobs",
	"repo":            "repo",
	"output":          "output",
	"color":           "color",
	"no_prefilter":    "no_prefilter",
}

var uiKeyMap = map[string]string{
	"fields":   "fields",
	"truncate": "truncate",
}

// Load reads one config file, dispatching the parser on the extension.
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var raw map[string]any
	switch ext {
	case ".yaml", ".yml":
		if decodeErr := yaml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".toml":
		if decodeErr := toml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".json":
		if decodeErr := json.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

// decodeConfigMap accepts both sectioned ({engine: ..., ui: ...}) and flat
// top-level keys.
func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	engineSection := make(map[string]any)
	uiSection := make(map[string]any)

	if block, ok := raw["engine"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("engine: %w", err)
		}
		if err := fillSection(engineSection, sub, engineKeyMap, "engine"); err != nil {
			return cfg, err
		}
	}
	if block, ok := raw["ui"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("ui: %w", err)
		}
		if err := fillSection(uiSection, sub, uiKeyMap, "ui"); err != nil {
			return cfg, err
		}
	}

	for key, value := range raw {
		norm := normalizeKey(key)
		switch norm {
		case "engine", "ui":
			continue
		default:
			if canonical, ok := engineKeyMap[norm]; ok {
				engineSection[canonical] = value
				continue
			}
			if canonical, ok := uiKeyMap[norm]; ok {
				uiSection[canonical] = value
				continue
			}
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
	}

	if err := assignEngine(engineSection, &cfg.Engine); err != nil {
		return cfg, fmt.Errorf("engine: %w", err)
	}
	if err := assignUI(uiSection, &cfg.UI); err != nil {
		return cfg, fmt.Errorf("ui: %w", err)
	}
	return cfg, nil
}

func fillSection(dst, src map[string]any, allowed map[string]string, section string) error {
	for key, value := range src {
		canonical, ok := allowed[normalizeKey(key)]
		if !ok {
			return fmt.Errorf("unknown %s key: %s", section, key)
		}
		dst[canonical] = value
	}
	return nil
}

func assignEngine(section map[string]any, dst *EngineConfig) error {
	for key, value := range section {
		switch key {
		case "receiver":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Receiver = &str
		case "methods":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			dst.Methods = &list
		case "path":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			dst.Paths = &list
		case "exclude":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			dst.Excludes = &list
		case "path_regex":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			dst.PathRegex = &list
		case "langs":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			dst.DetectLangs = &list
		case "exclude_typical":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.ExcludeTypical = &b
		case "risky":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Risky = &b
		case "verify":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Verify = &b
		case "backup":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Backup = &b
		case "no_prefilter":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.NoPrefilter = &b
		case "max_file_bytes":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.MaxFileBytes = &n
		case "jobs":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.Jobs = &n
		case "repo":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Repo = &str
		case "output":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			dst.Output = &trimmed
		case "color":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			dst.Color = &trimmed
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func assignUI(section map[string]any, dst *UIConfig) error {
	for key, value := range section {
		switch key {
		case "fields":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Fields = &str
		case "truncate":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.Truncate = &n
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return engineopts.ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %v", field, value)
		}
		return n, nil
	case string:
		trimmed := strings.TrimSpace(v)
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer for %s, got %T", field, value)
	}
}

func expectStringList(value any, field string) ([]string, error) {
	switch v := value.(type) {
	case string:
		return engineopts.SplitMulti([]string{v}), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			out = append(out, str)
		}
		return out, nil
	case []string:
		return engineopts.SplitMulti(v), nil
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", field, value)
	}
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}
