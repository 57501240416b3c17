// Package config handles checkline's YAML configuration and dotenv-backed
// provider settings under ~/.checkline/.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.checkline/checkline.yaml.
type Config struct {
	IndexDir       string   `yaml:"index_dir"`
	Timezone       string   `yaml:"timezone,omitempty"`
	TopK           int      `yaml:"top_k,omitempty"`
	MinScore       float64  `yaml:"min_score,omitempty"`
	PreferredTypes []string `yaml:"preferred_types,omitempty"`
}

// ChecklineDir returns the absolute path to ~/.checkline/.
func ChecklineDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".checkline"), nil
}

// ConfigPath returns the absolute path to ~/.checkline/checkline.yaml.
func ConfigPath() (string, error) {
	dir, err := ChecklineDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "checkline.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first checkline init.
func DefaultConfig() (*Config, error) {
	dir, err := ChecklineDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		IndexDir: filepath.Join(dir, "index"),
		Timezone: "Europe/London",
		TopK:     12,
		MinScore: 0.30,
		PreferredTypes: []string{
			"Opening_Check",
			"Closing_Check",
			"Fridge_Temperature_Check",
		},
	}, nil
}

// Load reads and parses ~/.checkline/checkline.yaml. A missing file yields
// the defaults so read-only commands work before init.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig()
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.IndexDir, err = ExpandPath(cfg.IndexDir)
	if err != nil {
		return nil, err
	}
	if cfg.IndexDir == "" {
		def, derr := DefaultConfig()
		if derr != nil {
			return nil, derr
		}
		cfg.IndexDir = def.IndexDir
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/London"
	}
	if cfg.TopK == 0 {
		cfg.TopK = 12
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = 0.30
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.checkline/checkline.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
