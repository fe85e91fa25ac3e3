// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package services wraps Orbitus components as suture services.
package services

import (
	"context"
)

// Runner is the lifecycle contract shared by the long-running components:
// Run processes until ctx is canceled and then returns ctx.Err().
//
// Satisfied by *sampler.Sampler, *websocket.Hub, and *websocket.Relay.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runner to suture.Service. The supervisor restarts
// the service if Run returns a non-context error.
type RunnerService struct {
	runner Runner
	name   string
}

// NewSamplerService wraps the polling loop for the sampling layer.
func NewSamplerService(r Runner) *RunnerService {
	return &RunnerService{runner: r, name: "sampler"}
}

// NewHubService wraps the WebSocket hub for the messaging layer.
func NewHubService(r Runner) *RunnerService {
	return &RunnerService{runner: r, name: "websocket-hub"}
}

// NewRelayService wraps the bus-to-hub relay for the messaging layer.
func NewRelayService(r Runner) *RunnerService {
	return &RunnerService{runner: r, name: "websocket-relay"}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.Run(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *RunnerService) String() string {
	return s.name
}
