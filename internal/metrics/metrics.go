// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package metrics provides Prometheus instrumentation for Orbitus:
// upstream fetch outcomes and latency, circuit breaker state, retention
// buffer occupancy, sampler backoff, API throughput, and WebSocket clients.
// Collectors are package-level promauto variables registered on the default
// registry and exposed via /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream fetch metrics
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Duration of upstream position fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Total number of upstream fetch attempts by outcome",
		},
		[]string{"outcome"}, // "success", "unreachable", "malformed", "timeout"
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Retention buffer metrics
	BufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_buffer_samples",
			Help: "Current number of retained samples",
		},
	)

	BufferEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_buffer_evictions_total",
			Help: "Total samples evicted by age or count pressure",
		},
	)

	BufferSamplesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_buffer_dropped_total",
			Help: "Total samples dropped as duplicate or stale",
		},
	)

	// Sampler metrics
	SamplerPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampler_polls_total",
			Help: "Total sampler poll cycles by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "dropped"
	)

	SamplerBackoffSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sampler_backoff_seconds",
			Help: "Current sampler backoff delay in seconds (0 when healthy)",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total WebSocket messages broadcast to clients",
		},
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total events published to the in-process bus",
		},
		[]string{"topic"},
	)
)
