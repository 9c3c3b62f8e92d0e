// Package config loads the setcal run configuration from YAML, falling
// back to defaults, with environment overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all setcal configuration.
type Config struct {
	Limits  LimitsConfig  `yaml:"limits"`
	Select  SelectConfig  `yaml:"select"`
	Logging LoggingConfig `yaml:"logging"`
}

// LimitsConfig bounds input size and execution length.
type LimitsConfig struct {
	MaxLines       int `yaml:"max_lines"`
	MaxLabelLength int `yaml:"max_label_length"`
	StepFactor     int `yaml:"step_factor"` // budget = step_factor * lines * commands
}

// SelectConfig configures the select operation's random source.
type SelectConfig struct {
	Seed uint64 `yaml:"seed"` // 0 = seed from the clock once per run
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxLines:       1000,
			MaxLabelLength: 30,
			StepFactor:     8,
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Encoding: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults if config file doesn't exist
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Unparsable
// numbers are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SETCAL_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Select.Seed = n
		}
	}
	if v := os.Getenv("SETCAL_STEP_FACTOR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Limits.StepFactor = n
		}
	}
	if v := os.Getenv("SETCAL_MAX_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Limits.MaxLines = n
		}
	}
	if v := os.Getenv("SETCAL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Limits.MaxLines < 1 {
		return fmt.Errorf("limits.max_lines must be >= 1")
	}
	if c.Limits.MaxLabelLength < 1 {
		return fmt.Errorf("limits.max_label_length must be >= 1")
	}
	if c.Limits.StepFactor < 1 {
		return fmt.Errorf("limits.step_factor must be >= 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("logging.encoding must be json or console; got %q", c.Logging.Encoding)
	}
	return nil
}
