// Package config loads ~/.ngp/config.yaml. Every field has a usable zero
// default so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DBPath overrides the database location. Empty means the default
	// resolution order (NGP_DB env, then ~/.ngp/ngp.db).
	DBPath string `yaml:"db_path,omitempty"`

	// DayStartsAt is the hour (0-23) at which a "day" begins for daily
	// token caps and daily cycles. Night owls set 4.
	DayStartsAt int `yaml:"day_starts_at"`

	// RevealTarget shows which mission is the current cycle target. Off by
	// default: the game works better blind.
	RevealTarget bool `yaml:"reveal_target"`

	// Debug enables verbose logging to ~/.ngp/ngp.log.
	Debug bool `yaml:"debug"`
}

// DefaultPath is ~/.ngp/config.yaml, overridable via NGP_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv("NGP_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".ngp", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DayStartsAt < 0 || cfg.DayStartsAt > 23 {
		return nil, fmt.Errorf("day_starts_at %d out of range 0-23", cfg.DayStartsAt)
	}
	return cfg, nil
}

// Save writes the config back, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
