package config

import (
	"os"
	"path/filepath"
	"strings"
)

// configFilenames are searched in order within each directory.
var configFilenames = []string{
	".delog.yaml",
	".delog.yml",
	".delog.toml",
	".delog.json",
}

// xdgFilenames are searched under $XDG_CONFIG_HOME/delog/.
var xdgFilenames = []string{
	"config.yaml",
	"config.yml",
	"config.toml",
	"config.json",
}

// Find は設定ファイルの探索を行う。明示パスが指定されていればそれを使い、
// それ以外はリポジトリから親方向に辿り、XDG とホームをフォールバックとする。
// 見つからない場合は空文字列を返す(エラーではない)。
func Find(repoDir, explicitPath, xdgHome, home string) (string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	dir := strings.TrimSpace(repoDir)
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err == nil {
		dir = abs
	}
	for {
		if found := firstExisting(dir, configFilenames); found != "" {
			return found, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if xdg := strings.TrimSpace(xdgHome); xdg != "" {
		if found := firstExisting(filepath.Join(xdg, "delog"), xdgFilenames); found != "" {
			return found, nil
		}
	}
	if h := strings.TrimSpace(home); h != "" {
		if found := firstExisting(filepath.Join(h, ".config", "delog"), xdgFilenames); found != "" {
			return found, nil
		}
		if found := firstExisting(h, configFilenames); found != "" {
			return found, nil
		}
	}
	return "", nil
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path
	}
	return ""
}
