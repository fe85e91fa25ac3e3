// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/orbitus/config.yaml",
	"/etc/orbitus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// POLL_INTERVAL_SECONDS -> sampler.poll_interval
	// LISTEN_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process legacy *_SECONDS integers into duration strings
	if err := processSecondsFields(k); err != nil {
		return nil, fmt.Errorf("failed to process seconds fields: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate and normalize
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// secondsConfigPaths maps legacy integer-seconds config paths to the
// duration paths the Config struct actually unmarshals from. Env vars such
// as POLL_INTERVAL_SECONDS=10 land on the legacy path as the string "10"
// and are rewritten here as "10s" on the canonical path.
var secondsConfigPaths = map[string]string{
	"sampler.poll_interval_seconds":  "sampler.poll_interval",
	"upstream.fetch_timeout_seconds": "upstream.fetch_timeout",
	"sampler.backoff_cap_seconds":    "sampler.backoff_cap",
}

// processSecondsFields rewrites legacy integer-seconds values as duration
// strings on the canonical config paths.
func processSecondsFields(k *koanf.Koanf) error {
	for legacy, canonical := range secondsConfigPaths {
		if !k.Exists(legacy) {
			continue
		}
		secs := k.Int(legacy)
		if secs <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", legacy, k.String(legacy))
		}
		if err := k.Set(canonical, (time.Duration(secs) * time.Second).String()); err != nil {
			return fmt.Errorf("failed to set %s: %w", canonical, err)
		}
		k.Delete(legacy)
	}
	return nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are skipped so random environment variables do not
// pollute the config.
//
// Examples:
//   - POLL_INTERVAL_SECONDS -> sampler.poll_interval_seconds
//   - RETENTION_WINDOW -> retention.window
//   - LISTEN_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Upstream mappings
		"upstream_url":          "upstream.url",
		"fetch_timeout_seconds": "upstream.fetch_timeout_seconds",
		"fetch_timeout":         "upstream.fetch_timeout",

		// Sampler mappings
		"poll_interval_seconds": "sampler.poll_interval_seconds",
		"poll_interval":         "sampler.poll_interval",
		"backoff_cap_seconds":   "sampler.backoff_cap_seconds",
		"backoff_cap":           "sampler.backoff_cap",

		// Retention mappings
		"retention_window":   "retention.window",
		"max_buffer_entries": "retention.max_entries",

		// Server mappings
		"listen_port":      "server.port",
		"listen_host":      "server.host",
		"shutdown_timeout": "server.shutdown_timeout",

		// API mappings
		"cors_origins":        "api.cors_origins",
		"rate_limit_requests": "api.rate_limit_requests",
		"rate_limit_window":   "api.rate_limit_window",
		"disable_rate_limit":  "api.rate_limit_disabled",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
