// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package config loads Orbitus configuration using Koanf v2 with layered
// sources: built-in defaults, an optional YAML config file, and environment
// variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Sampler   SamplerConfig   `koanf:"sampler"`
	Retention RetentionConfig `koanf:"retention"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// UpstreamConfig configures the position source.
type UpstreamConfig struct {
	// URL is the upstream position endpoint.
	URL string `koanf:"url"`

	// FetchTimeout bounds one fetch round-trip.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
}

// SamplerConfig configures the polling loop.
type SamplerConfig struct {
	// PollInterval is the sampling cadence.
	PollInterval time.Duration `koanf:"poll_interval"`

	// BackoffCap bounds the exponential failure backoff.
	BackoffCap time.Duration `koanf:"backoff_cap"`
}

// RetentionConfig configures the in-memory sample buffer.
type RetentionConfig struct {
	// Window is the trailing time span to retain.
	Window time.Duration `koanf:"window"`

	// MaxEntries caps the retained sample count. 0 means "sized to the
	// window": window divided by the poll interval.
	MaxEntries int `koanf:"max_entries"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ShutdownTimeout bounds graceful connection draining.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig configures the HTTP middleware policy.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			URL:          "https://api.wheretheiss.at/v1/satellites/25544",
			FetchTimeout: 5 * time.Second,
		},
		Sampler: SamplerConfig{
			PollInterval: 5 * time.Second,
			BackoffCap:   60 * time.Second,
		},
		Retention: RetentionConfig{
			Window:     72 * time.Hour,
			MaxEntries: 0, // sized to window/interval during validation
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks invariants and normalizes derived values. It must be
// called after loading; Load does so automatically.
func (c *Config) Validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url must not be empty")
	}
	if c.Upstream.FetchTimeout <= 0 {
		return fmt.Errorf("upstream.fetch_timeout must be positive, got %v", c.Upstream.FetchTimeout)
	}
	if c.Sampler.PollInterval <= 0 {
		return fmt.Errorf("sampler.poll_interval must be positive, got %v", c.Sampler.PollInterval)
	}
	if c.Sampler.BackoffCap < c.Sampler.PollInterval {
		return fmt.Errorf("sampler.backoff_cap (%v) must be >= sampler.poll_interval (%v)",
			c.Sampler.BackoffCap, c.Sampler.PollInterval)
	}
	if c.Retention.Window < c.Sampler.PollInterval {
		return fmt.Errorf("retention.window (%v) must be >= sampler.poll_interval (%v)",
			c.Retention.Window, c.Sampler.PollInterval)
	}
	if c.Retention.MaxEntries < 0 {
		return fmt.Errorf("retention.max_entries must not be negative, got %d", c.Retention.MaxEntries)
	}
	if c.Retention.MaxEntries == 0 {
		c.Retention.MaxEntries = int(c.Retention.Window / c.Sampler.PollInterval)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if !c.API.RateLimitDisabled && c.API.RateLimitRequests <= 0 {
		return fmt.Errorf("api.rate_limit_requests must be positive, got %d", c.API.RateLimitRequests)
	}
	return nil
}
