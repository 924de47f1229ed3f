// Package fs resolves the on-disk locations stagehand uses.
package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the optional configuration file. Zero values mean "not set";
// flags override anything read from disk.
type Config struct {
	ContextLines int    `json:"context_lines,omitempty"`
	Theme        string `json:"theme,omitempty"`
	GitPath      string `json:"git_path,omitempty"`
	SuggestModel string `json:"suggest_model,omitempty"`
	Journal      string `json:"journal,omitempty"`
}

// DefaultConfigDir returns the default config directory for stagehand.
// Uses XDG_CONFIG_HOME if set, otherwise falls back to ~/.config/stagehand.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stagehand")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stagehand")
}

// DefaultCacheDir returns the default cache directory for stagehand.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/stagehand.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "stagehand")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "stagehand")
}

// LoadConfig reads the JSON config file at path. A missing file is not an
// error; it yields the zero config.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
