// Package config implements the ambient configuration loader names (the
// PYRSEAS_CONFIG_FILE / PYRSEAS_SYS_CONFIG / PYRSEAS_USER_CONFIG search path) and the
// PYRSEAS_MAX_IDENT_LEN filename-truncation setting multifile writing uses.
//
// Grounded on original_source/pyrseas/config.py: a system-level config is loaded first, then a
// user-level config is shallow-merged on top (existing top-level keys get updated, not replaced),
// then a repository-local config is shallow-merged on top of that. Go has no implicit
// "script directory" the way __file__ does, so the system config's default search directory is the
// current working directory rather than the package's install location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logfmt/logfmt"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for within a config directory, overridable via
// PYRSEAS_CONFIG_FILE.
func FileName() string {
	if v := os.Getenv("PYRSEAS_CONFIG_FILE"); v != "" {
		return v
	}
	return "config.yaml"
}

// Config is a two-level configuration tree: top-level sections (e.g. "datacopy", "repository"),
// each a map of settings. It mirrors original_source's Config(dict) closely enough that the merge
// semantics (update a section in place rather than replacing it wholesale) carry over unchanged.
type Config map[string]map[string]any

// Load builds a Config from, in order: the system config directory (PYRSEAS_SYS_CONFIG, default
// the current working directory), the user config directory (PYRSEAS_USER_CONFIG, default
// "$HOME/.config/pyrseas"), and repoPath (typically the -r flag's repository path, default the
// current working directory). Each later source is merged over the earlier ones.
func Load(repoPath string) (Config, error) {
	cfg := Config{}

	sysDir := os.Getenv("PYRSEAS_SYS_CONFIG")
	if sysDir == "" {
		if wd, err := os.Getwd(); err == nil {
			sysDir = wd
		}
	}
	sysCfg, err := loadDir(sysDir)
	if err != nil {
		return nil, fmt.Errorf("loading system config: %w", err)
	}
	cfg.merge(sysCfg)

	userDir := os.Getenv("PYRSEAS_USER_CONFIG")
	if userDir == "" {
		if home, err := homeDir(); err == nil {
			userDir = filepath.Join(home, "pyrseas")
		}
	}
	userCfg, err := loadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}
	cfg.merge(userCfg)

	if repoPath == "" {
		if v, ok := cfg["repository"]["path"].(string); ok && v != "" {
			repoPath = v
		} else if wd, err := os.Getwd(); err == nil {
			repoPath = wd
		}
	}
	repoCfg, err := loadDir(repoPath)
	if err != nil {
		return nil, fmt.Errorf("loading repository config: %w", err)
	}
	cfg.merge(repoCfg)

	return cfg, nil
}

// merge shallow-merges other into c: a section present in both is updated key-by-key (original_source's
// `self[key].update(val)`); a section only in other is added wholesale.
func (c Config) merge(other Config) {
	for section, settings := range other {
		if existing, ok := c[section]; ok {
			for k, v := range settings {
				existing[k] = v
			}
		} else {
			copied := make(map[string]any, len(settings))
			for k, v := range settings {
				copied[k] = v
			}
			c[section] = copied
		}
	}
}

// ApplySet merges --set section.key=value overrides into c. A key
// with no "." is stored under a "" section.
func (c Config) ApplySet(sets []string) error {
	for _, raw := range sets {
		decoder := logfmt.NewDecoder(strings.NewReader(raw))
		for decoder.ScanRecord() {
			for decoder.ScanKeyval() {
				key := string(decoder.Key())
				val := string(decoder.Value())
				section, setting := "", key
				if idx := strings.IndexByte(key, '.'); idx >= 0 {
					section, setting = key[:idx], key[idx+1:]
				}
				if c[section] == nil {
					c[section] = map[string]any{}
				}
				c[section][setting] = val
			}
		}
		if err := decoder.Err(); err != nil {
			return fmt.Errorf("parsing --set %q: %w", raw, err)
		}
	}
	return nil
}

func loadDir(dir string) (Config, error) {
	if dir == "" {
		return nil, nil
	}
	path := dir
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		path = filepath.Join(dir, FileName())
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// MaxIdentLen returns PYRSEAS_MAX_IDENT_LEN, clamped to Postgres's own NAMEDATALEN-1 ceiling, and
// defaulting to 32 as specifies. Used by internal/multifile when truncating filenames.
func MaxIdentLen() int {
	const (defaultLen = 32
		maxLen = 63
	)
	v := os.Getenv("PYRSEAS_MAX_IDENT_LEN")
	if v == "" {
		return defaultLen
	}
	n := defaultLen
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return defaultLen
	}
	if n > maxLen {
		return maxLen
	}
	if n < 1 {
		return defaultLen
	}
	return n
}
