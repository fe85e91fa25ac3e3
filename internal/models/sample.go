// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package models defines the data types shared across Orbitus components:
// the position Sample, the API response envelope, and the documents served
// by the HTTP endpoints.
package models

import (
	"time"
)

// Sample is a single validated position observation. Samples are created by
// the fetcher from upstream data and never mutated afterwards; every
// consumer (retention buffer, query service, event bus, API) treats them as
// values.
//
// Field ranges:
//   - Latitude: [-90, 90] degrees
//   - Longitude: [-180, 180] degrees (no wraparound normalization)
//   - Altitude: kilometers, expected positive but not bounded
//   - Velocity: km/h, nil when the upstream source omits it
//
// Timestamp is UTC with second resolution.
type Sample struct {
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Latitude  float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64   `json:"longitude" validate:"min=-180,max=180"`
	Altitude  float64   `json:"altitude"`
	Velocity  *float64  `json:"velocity,omitempty"`
}

// Age returns how far behind now the sample's timestamp is.
func (s Sample) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// HistoryPage is one fixed-size slice of the retained history in ascending
// timestamp order. Page is the 0-based index the client requested; an
// out-of-range index yields empty Items with TotalCount still populated.
type HistoryPage struct {
	Items      []Sample `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalCount int      `json:"total_count"`
}

// BufferStats summarizes the retained window for the /api/stats endpoint.
// Oldest and Newest are nil while the buffer is empty.
type BufferStats struct {
	TotalSamples  int        `json:"total_samples"`
	CoverageHours float64    `json:"coverage_hours"`
	CoverageDays  float64    `json:"coverage_days"`
	Oldest        *time.Time `json:"oldest,omitempty"`
	Newest        *time.Time `json:"newest,omitempty"`
}

// HealthStatus is the health document served by /api/health.
// Status is "healthy" once samples are flowing and "degraded" while the
// upstream source has not yet produced a retained sample.
type HealthStatus struct {
	Status          string     `json:"status"`
	Version         string     `json:"version"`
	SamplesRetained int        `json:"samples_retained"`
	LastSampleTime  *time.Time `json:"last_sample_time,omitempty"`
	UptimeSeconds   float64    `json:"uptime_seconds"`
}
