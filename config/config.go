// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package config loads YAML configuration for the pushq command line
// client.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the push client.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Publish   PublishConfig   `yaml:"publish"`
	Subscribe SubscribeConfig `yaml:"subscribe"`
	TLS       TLSConfig       `yaml:"tls"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds push server connection settings.
type ServerConfig struct {
	URL              string        `yaml:"url"`
	DefaultTopic     string        `yaml:"default_topic"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// AuthConfig holds access credentials. Token takes precedence over
// user/password when both are set.
type AuthConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// PublishConfig holds publish-side settings.
type PublishConfig struct {
	// Rate limits publishes per topic, in messages per second. Zero
	// disables limiting.
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`

	// Circuit breaker over publish requests.
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
}

// SubscribeConfig holds subscription-side settings.
type SubscribeConfig struct {
	// MaxQueueSize bounds the per-subscription message queue. Zero
	// means unbounded.
	MaxQueueSize int `yaml:"max_queue_size"`
}

// TLSConfig holds client TLS material for self-hosted servers.
type TLSConfig struct {
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:              "https://ntfy.sh",
			HandshakeTimeout: 10 * time.Second,
		},
		Publish: PublishConfig{
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				ResetTimeout:     60 * time.Second,
			},
		},
		Subscribe: SubscribeConfig{
			MaxQueueSize: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url cannot be empty")
	}
	if c.Server.HandshakeTimeout < 0 {
		return fmt.Errorf("server.handshake_timeout cannot be negative")
	}

	if c.Auth.Token != "" && (c.Auth.User != "" || c.Auth.Password != "") {
		return fmt.Errorf("auth.token and auth.user/auth.password are mutually exclusive")
	}
	if c.Auth.User == "" && c.Auth.Password != "" {
		return fmt.Errorf("auth.user required when auth.password is set")
	}

	if c.Publish.Rate < 0 {
		return fmt.Errorf("publish.rate cannot be negative")
	}
	if c.Publish.Burst < 0 {
		return fmt.Errorf("publish.burst cannot be negative")
	}
	if c.Publish.Breaker.Enabled {
		if c.Publish.Breaker.FailureThreshold < 1 {
			return fmt.Errorf("publish.breaker.failure_threshold must be at least 1")
		}
		if c.Publish.Breaker.ResetTimeout < time.Second {
			return fmt.Errorf("publish.breaker.reset_timeout must be at least 1 second")
		}
	}

	if c.Subscribe.MaxQueueSize < 0 {
		return fmt.Errorf("subscribe.max_queue_size cannot be negative")
	}

	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: text, json")
	}

	return nil
}
