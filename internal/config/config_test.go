// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upstream.URL != "https://api.wheretheiss.at/v1/satellites/25544" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.Upstream.FetchTimeout)
	}
	if cfg.Sampler.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Sampler.PollInterval)
	}
	if cfg.Sampler.BackoffCap != 60*time.Second {
		t.Errorf("BackoffCap = %v, want 60s", cfg.Sampler.BackoffCap)
	}
	if cfg.Retention.Window != 72*time.Hour {
		t.Errorf("Window = %v, want 72h", cfg.Retention.Window)
	}
	// 72h at one sample per 5s
	if cfg.Retention.MaxEntries != 51840 {
		t.Errorf("MaxEntries = %d, want 51840", cfg.Retention.MaxEntries)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "10")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("RETENTION_WINDOW", "24h")
	t.Setenv("MAX_BUFFER_ENTRIES", "1000")
	t.Setenv("LISTEN_PORT", "9090")
	t.Setenv("UPSTREAM_URL", "http://localhost:9999/position")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sampler.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.Sampler.PollInterval)
	}
	if cfg.Upstream.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.Upstream.FetchTimeout)
	}
	if cfg.Retention.Window != 24*time.Hour {
		t.Errorf("Window = %v, want 24h", cfg.Retention.Window)
	}
	if cfg.Retention.MaxEntries != 1000 {
		t.Errorf("MaxEntries = %d, want 1000", cfg.Retention.MaxEntries)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Upstream.URL != "http://localhost:9999/position" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
sampler:
  poll_interval: 15s
server:
  port: 3000
retention:
  window: 48h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sampler.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want 15s", cfg.Sampler.PollInterval)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Retention.Window != 48*time.Hour {
		t.Errorf("Window = %v, want 48h", cfg.Retention.Window)
	}
	// Untouched fields keep their defaults.
	if cfg.Upstream.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.Upstream.FetchTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LISTEN_PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Port = %d, want 4000 (env over file)", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"empty upstream url", func(c *Config) { c.Upstream.URL = "" }, true},
		{"zero poll interval", func(c *Config) { c.Sampler.PollInterval = 0 }, true},
		{"backoff cap below interval", func(c *Config) { c.Sampler.BackoffCap = time.Second }, true},
		{"window below interval", func(c *Config) { c.Retention.Window = time.Second }, true},
		{"negative max entries", func(c *Config) { c.Retention.MaxEntries = -1 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero rate limit", func(c *Config) { c.API.RateLimitRequests = 0 }, true},
		{"zero rate limit allowed when disabled", func(c *Config) {
			c.API.RateLimitRequests = 0
			c.API.RateLimitDisabled = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesMaxEntries(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sampler.PollInterval = 10 * time.Second
	cfg.Retention.Window = time.Hour
	cfg.Retention.MaxEntries = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Retention.MaxEntries != 360 {
		t.Errorf("MaxEntries = %d, want 360", cfg.Retention.MaxEntries)
	}
}

func TestBadSecondsEnvValue(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "fast")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded with non-numeric POLL_INTERVAL_SECONDS")
	}
}
