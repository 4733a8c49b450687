// Package config loads client configuration: defaults, then the YAML config
// file, then PIONEER_* environment variables, highest last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PIONEER_"

type Config struct {
	API   APIConfig   `koanf:"api"`
	State StateConfig `koanf:"state"`
	Log   LogConfig   `koanf:"log"`
}

type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type StateConfig struct {
	// Dir holds the local SQLite state db (session credential, remembered
	// logins). Defaults to ~/.config/pioneer.
	Dir string `koanf:"dir"`
}

type LogConfig struct {
	// File receives log output. Empty disables logging entirely; stdout is
	// never used because the TUI owns it.
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

var defaults = []byte(`
api:
  base_url: "https://api.pioneer-alpha.app"
  timeout: 30s
log:
  level: info
`)

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "pioneer", "config.yaml"), nil
}

// Load reads configuration. An empty path means the default location; a
// missing file is fine (defaults + env still apply), a malformed one is not.
//
// Environment keys map PIONEER_API_BASE_URL -> api.base_url and so on.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	if raw, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.State.Dir == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.State.Dir = filepath.Dir(p)
	}
	return &cfg, nil
}

// envToKey maps PIONEER_API_BASE_URL to api.base_url. Only the first
// underscore separates the section; the rest stay part of the key.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	return section + "." + rest
}
