// Package infra holds the ambient concerns: configuration, logging, and
// reconnect timing.
package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the terminal needs to reach its server.
// Environment variables override the file for URLs and the journal path.
type Config struct {
	Server struct {
		RestURL string `yaml:"rest_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"server"`

	Reconnect struct {
		MaxJitterMS int `yaml:"max_jitter_ms"`
	} `yaml:"reconnect"`

	Journal struct {
		Path string `yaml:"path"` // empty disables the session journal
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the YAML config at path, applies environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	overrideWithEnv(&cfg)

	if cfg.Reconnect.MaxJitterMS == 0 {
		cfg.Reconnect.MaxJitterMS = 5000
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.RestURL, "http://") && !strings.HasPrefix(c.Server.RestURL, "https://") {
		return fmt.Errorf("invalid rest URL: %s", c.Server.RestURL)
	}
	if !strings.HasPrefix(c.Server.WSURL, "ws://") && !strings.HasPrefix(c.Server.WSURL, "wss://") {
		return fmt.Errorf("invalid ws URL: %s", c.Server.WSURL)
	}
	if c.Reconnect.MaxJitterMS < 0 {
		return fmt.Errorf("max jitter must not be negative")
	}
	return nil
}

// overrideWithEnv lets deployment environment take precedence over the file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("OPENBROKER_REST_URL"); v != "" {
		cfg.Server.RestURL = v
	}
	if v := os.Getenv("OPENBROKER_WS_URL"); v != "" {
		cfg.Server.WSURL = v
	}
	if v := os.Getenv("OPENBROKER_JOURNAL"); v != "" {
		cfg.Journal.Path = v
	}
}
