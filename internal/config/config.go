// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for buai.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.buai/config.toml; built-in defaults apply
// when the file is absent.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete buai configuration.
type Config struct {
	// Model is the advisory model endpoint configuration.
	Model ModelConfig `toml:"model"`

	// Store is the message log configuration.
	Store StoreConfig `toml:"store"`

	// UI holds presentation tuning.
	UI UIConfig `toml:"ui"`
}

// ModelConfig configures the generateContent client.
type ModelConfig struct {
	// Endpoint is the API base URL.
	Endpoint string `toml:"endpoint"`
	// Name is the generation model.
	Name string `toml:"name"`
	// APIKey is sent as x-goog-api-key when set; normally supplied via
	// the BUAI_API_KEY environment variable instead of the file.
	APIKey string `toml:"api_key"`
	// MaxRetries is the total delivery attempts per request.
	MaxRetries int `toml:"max_retries"`
	// BackoffMs is the initial retry backoff in milliseconds; it doubles
	// per retry.
	BackoffMs int `toml:"backoff_ms"`
	// TimeoutSecs is the per-attempt request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// StoreConfig configures conversation persistence.
type StoreConfig struct {
	// Path is the SQLite database location (empty = ~/.buai/messages.db).
	Path string `toml:"path"`
	// Disabled forces local-only mode even when the database is usable.
	Disabled bool `toml:"disabled"`
}

// UIConfig holds presentation tuning.
type UIConfig struct {
	// CharDelayMs is the reveal cadence per character.
	CharDelayMs int `toml:"char_delay_ms"`
	// ParagraphDelayMs is the pause between revealed paragraphs.
	ParagraphDelayMs int `toml:"paragraph_delay_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Name:        "gemini-2.5-flash",
			MaxRetries:  3,
			BackoffMs:   1000,
			TimeoutSecs: 30,
		},
		Store: StoreConfig{
			Path: "", // resolved to ~/.buai/messages.db at open time
		},
		UI: UIConfig{
			CharDelayMs:      10,
			ParagraphDelayMs: 300,
		},
	}
}

// ConfigPath returns the expected config file location.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".buai", "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the standard location, falling back to
// defaults when the file is absent. Environment overrides are applied
// last, then the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies BUAI_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("BUAI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if endpoint := os.Getenv("BUAI_ENDPOINT"); endpoint != "" {
		c.Model.Endpoint = endpoint
	}
	if name := os.Getenv("BUAI_MODEL"); name != "" {
		c.Model.Name = name
	}
	if path := os.Getenv("BUAI_DB"); path != "" {
		c.Store.Path = path
	}
	if disabled := os.Getenv("BUAI_NO_PERSIST"); disabled != "" {
		if v, err := strconv.ParseBool(disabled); err == nil {
			c.Store.Disabled = v
		}
	}
}

// fillDefaults replaces zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Model.Endpoint == "" {
		c.Model.Endpoint = def.Model.Endpoint
	}
	if c.Model.Name == "" {
		c.Model.Name = def.Model.Name
	}
	if c.Model.MaxRetries == 0 {
		c.Model.MaxRetries = def.Model.MaxRetries
	}
	if c.Model.BackoffMs == 0 {
		c.Model.BackoffMs = def.Model.BackoffMs
	}
	if c.Model.TimeoutSecs == 0 {
		c.Model.TimeoutSecs = def.Model.TimeoutSecs
	}
	if c.UI.CharDelayMs == 0 {
		c.UI.CharDelayMs = def.UI.CharDelayMs
	}
	if c.UI.ParagraphDelayMs == 0 {
		c.UI.ParagraphDelayMs = def.UI.ParagraphDelayMs
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Model.Endpoint); err != nil {
		return fmt.Errorf("model.endpoint is not a valid URL: %w", err)
	}
	if c.Model.MaxRetries < 1 {
		return fmt.Errorf("model.max_retries must be at least 1, got %d", c.Model.MaxRetries)
	}
	if c.Model.BackoffMs < 0 {
		return fmt.Errorf("model.backoff_ms must not be negative, got %d", c.Model.BackoffMs)
	}
	if c.UI.CharDelayMs < 0 || c.UI.ParagraphDelayMs < 0 {
		return fmt.Errorf("ui delays must not be negative")
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// Backoff returns the initial retry backoff as a duration.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.Model.BackoffMs) * time.Millisecond
}

// Timeout returns the per-attempt request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Model.TimeoutSecs) * time.Second
}
