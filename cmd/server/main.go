// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package main is the entry point for the Orbitus server.
//
// Orbitus polls the public wheretheiss.at API for the current position of the
// International Space Station (NORAD 25544), retains a rolling three-day
// window of samples in memory, and serves the current position and the
// retained history over a REST API and a WebSocket feed.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from environment variables and config files (Koanf v2)
//  2. Retention buffer: bounded in-memory sample store
//  3. Fetcher: upstream HTTP client wrapped in a circuit breaker
//  4. Event bus: in-process pub/sub fanning samples out to WebSocket clients
//  5. Sampler: fixed-cadence polling loop with exponential failure backoff
//  6. HTTP server: REST API, WebSocket endpoint, and Prometheus metrics
//
// All long-running components run under a suture supervisor tree and are
// restarted with backoff if they fail.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (POLL_INTERVAL_SECONDS, RETENTION_WINDOW,
//     MAX_BUFFER_ENTRIES, FETCH_TIMEOUT_SECONDS, LISTEN_PORT, UPSTREAM_URL,
//     LOG_LEVEL, LOG_FORMAT, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops the sampling loop
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//
// # Example Usage
//
//	export POLL_INTERVAL_SECONDS=5
//	export RETENTION_WINDOW=72h
//	export LISTEN_PORT=8080
//	./orbitus
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orbitus/orbitus/internal/api"
	"github.com/orbitus/orbitus/internal/config"
	"github.com/orbitus/orbitus/internal/events"
	"github.com/orbitus/orbitus/internal/fetcher"
	"github.com/orbitus/orbitus/internal/logging"
	"github.com/orbitus/orbitus/internal/query"
	"github.com/orbitus/orbitus/internal/retention"
	"github.com/orbitus/orbitus/internal/sampler"
	"github.com/orbitus/orbitus/internal/supervisor"
	"github.com/orbitus/orbitus/internal/supervisor/services"
	ws "github.com/orbitus/orbitus/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("upstream_url", cfg.Upstream.URL).
		Dur("poll_interval", cfg.Sampler.PollInterval).
		Dur("retention_window", cfg.Retention.Window).
		Int("max_entries", cfg.Retention.MaxEntries).
		Msg("Starting Orbitus")

	// Retention buffer holding the rolling sample window
	buffer := retention.New(retention.Config{
		MaxAge:   cfg.Retention.Window,
		MaxCount: cfg.Retention.MaxEntries,
	})

	// Upstream fetcher wrapped in a circuit breaker
	client := fetcher.New(fetcher.Config{
		URL:     cfg.Upstream.URL,
		Timeout: cfg.Upstream.FetchTimeout,
	})
	breaker := fetcher.NewBreakerClient(client)

	// In-process event bus fanning samples out to WebSocket clients
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	wsHub := ws.NewHub()
	relay := ws.NewRelay(bus, wsHub)

	smp := sampler.New(breaker, buffer, bus, sampler.Config{
		Period:     cfg.Sampler.PollInterval,
		BackoffCap: cfg.Sampler.BackoffCap,
	})

	// Query layer and HTTP surface
	queries := query.New(buffer)
	handler := api.NewHandler(queries, wsHub, version)
	middleware := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		RateLimitRequests:  cfg.API.RateLimitRequests,
		RateLimitWindow:    cfg.API.RateLimitWindow,
		RateLimitDisabled:  cfg.API.RateLimitDisabled,
	})
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())

	// Sampling layer
	tree.AddSamplingService(services.NewSamplerService(smp))

	// Messaging layer
	tree.AddMessagingService(services.NewHubService(wsHub))
	tree.AddMessagingService(services.NewRelayService(relay))

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
