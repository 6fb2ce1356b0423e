package config

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadSync loads the synchronization configuration.
// Search order: customPath -> ~/.beatshot/configs/sync.yaml -> ./configs/sync.yaml -> embedded default
func LoadSync(customPath string) (SyncConfig, error) {
	cfg := DefaultSyncConfig()
	if err := load("sync.yaml", customPath, defaultSyncYAML, &cfg); err != nil {
		return DefaultSyncConfig(), err
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadLevel loads a level definition by ID.
// Search order: customPath -> ~/.beatshot/configs/levels/<id>.yaml ->
// ./configs/levels/<id>.yaml -> embedded default
func LoadLevel(id, customPath string) (LevelConfig, error) {
	embedded, _ := defaultLevelsFS.ReadFile(path.Join("defaults", "levels", id+".yaml"))

	var cfg LevelConfig
	if err := load(filepath.Join("levels", id+".yaml"), customPath, embedded, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ID == "" && customPath == "" && embedded == nil {
		return cfg, fmt.Errorf("config: unknown level %q", id)
	}
	if cfg.ID == "" {
		cfg.ID = id
	}
	fillLevelDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLevelFile parses a standalone level definition.
func LoadLevelFile(p string) (LevelConfig, error) {
	var cfg LevelConfig
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read level %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse level %s: %w", p, err)
	}
	fillLevelDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EmbeddedLevels returns the built-in level definitions sorted by menu order.
func EmbeddedLevels() ([]LevelConfig, error) {
	entries, err := fs.Glob(defaultLevelsFS, "defaults/levels/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("config: failed to list levels: %w", err)
	}

	levels := make([]LevelConfig, 0, len(entries))
	for _, name := range entries {
		data, err := defaultLevelsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", name, err)
		}
		var cfg LevelConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", name, err)
		}
		fillLevelDefaults(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		levels = append(levels, cfg)
	}

	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Order != levels[j].Order {
			return levels[i].Order < levels[j].Order
		}
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// load fills out from the first source in the search order that parses.
// Only an explicit customPath turns a read or parse failure into an error.
func load(name, customPath string, embedded []byte, out any) error {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(name); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", name)); err == nil {
		if err := yaml.Unmarshal(data, out); err == nil {
			return nil
		}
	}

	// Use embedded default YAML; out keeps its hardcoded values otherwise
	if embedded != nil {
		_ = yaml.Unmarshal(embedded, out)
	}
	return nil
}

// HomeDir returns ~/.beatshot, or empty if home is unavailable.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".beatshot")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := HomeDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}

func errLevel(id, msg string) error {
	return fmt.Errorf("config: level %q: %s", id, msg)
}
