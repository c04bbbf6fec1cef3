// Package config loads optional client settings from config.yaml.
//
// All settings have working defaults; a missing config file is not an error.
// Session credentials are never stored here — they are supplied by the caller
// at construction time and live only in memory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hidemail/hidemail-core/paths"
)

// DefaultTimeoutSeconds is the request timeout applied when the config does
// not specify one.
const DefaultTimeoutSeconds = 30

// Config holds client settings.
type Config struct {
	// SetupURL overrides the session-check endpoint base. Empty means the
	// production endpoint.
	SetupURL string `yaml:"setup_url,omitempty"`

	// TimeoutSeconds is the HTTP request timeout. Zero means DefaultTimeoutSeconds.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// LabelPrefix is prepended to every claim label (e.g. "shopping/").
	LabelPrefix string `yaml:"label_prefix,omitempty"`

	// DefaultNote is used when a claim is made with an empty note.
	DefaultNote string `yaml:"default_note,omitempty"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Load reads config.yaml from the config directory.
// Returns nil, nil if the file does not exist.
func Load() (*Config, error) {
	fp, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(fp)
}

// LoadFrom reads and parses a config file at the given path.
// Returns nil, nil if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid timeout_seconds %d: must not be negative", cfg.TimeoutSeconds)
	}

	return &cfg, nil
}

// LoadOrDefault loads the config and falls back to defaults when no file exists.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// SaveTo writes the config as yaml to the given path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Save writes the config to the default config file path.
func (c *Config) Save() error {
	fp, err := paths.ConfigFilePath()
	if err != nil {
		return err
	}
	return c.SaveTo(fp)
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c == nil || c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
