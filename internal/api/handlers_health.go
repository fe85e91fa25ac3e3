// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package api

import (
	"net/http"
	"time"

	"github.com/orbitus/orbitus/internal/models"
)

// Health reports overall service health.
//
// Method: GET
// Path: /api/health
//
// Status is "healthy" once at least one sample is retained and "degraded"
// before that (process up, upstream not yet delivering). Always 200; the
// status field carries the judgment so monitors can alert without
// conflating "not ready" with "down".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.queries.Stats()

	status := "healthy"
	if stats.TotalSamples == 0 {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:          status,
		Version:         h.version,
		SamplesRetained: stats.TotalSamples,
		LastSampleTime:  stats.Newest,
		UptimeSeconds:   h.uptime(),
	}

	respondSuccess(w, health, time.Now())
}

// HealthLive is the liveness probe: 200 whenever the process is serving,
// regardless of upstream state.
//
// Method: GET
// Path: /api/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]string{"status": "alive"}, time.Now())
}
