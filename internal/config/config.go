package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds decoder settings read from YAML.
type Config struct {
	// Permissive skips layout range/overlap validation and the per-field
	// record length check.
	Permissive bool     `yaml:"permissive"`
	Layouts    []string `yaml:"layouts"`
	Logging    Logging  `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: Logging{Level: "info"},
	}
}

// LoadConfig reads path over the defaults. Relative layout paths are resolved
// against the directory of the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	dir := filepath.Dir(path)
	for i, p := range cfg.Layouts {
		if !filepath.IsAbs(p) {
			cfg.Layouts[i] = filepath.Join(dir, p)
		}
	}
	if _, err := cfg.LogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (logrus.Level, error) {
	if c.Logging.Level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return 0, fmt.Errorf("invalid logging level: %w", err)
	}
	return lvl, nil
}
