// Package cli implements the shared plumbing behind the orange commands:
// configuration loading, session construction, input sanitizing, and the
// interactive and NDJSON chat loops.
package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for an agent (orange.yaml).
type Config struct {
	SystemPrompt    string   `yaml:"system_prompt"`
	InitialMessages []string `yaml:"initial_messages"`

	Model     ModelConfig   `yaml:"model"`
	Redis     RedisConfig   `yaml:"redis"`
	Confirm   ConfirmConfig `yaml:"confirm"`
	Workspace string        `yaml:"workspace"`

	// Tools lists the enabled tool names. Empty means all built-ins.
	Tools []string `yaml:"tools"`
}

// ModelConfig selects the backend model.
type ModelConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// RedisConfig enables transcript persistence when Addr is set.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
	SessionID string        `yaml:"session_id"`
}

// ConfirmConfig shapes the confirmation policy table.
type ConfirmConfig struct {
	// AutoAccept disables the gate entirely. Dangerous outside sandboxes.
	AutoAccept bool `yaml:"auto_accept"`

	// Tools are always gated by name.
	Tools []string `yaml:"tools"`

	// Effects are always-gated side-effect classes. Defaults to
	// filesystem_write and process_exec when empty.
	Effects []string `yaml:"effects"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		SystemPrompt: "You are a helpful assistant.",
		Model: ModelConfig{
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Workspace: ".",
	}
}

// LoadConfig reads a YAML config file, applying defaults for missing fields.
// A missing file is not an error: it yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultConfig().SystemPrompt
	}
	if cfg.Model.APIKeyEnv == "" {
		cfg.Model.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}
	return cfg, nil
}

// APIKey resolves the backend credential from the environment.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.Model.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.Model.APIKeyEnv)
	}
	return key, nil
}
