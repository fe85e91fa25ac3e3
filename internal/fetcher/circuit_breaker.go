// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package fetcher

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/orbitus/orbitus/internal/logging"
	"github.com/orbitus/orbitus/internal/metrics"
	"github.com/orbitus/orbitus/internal/models"
)

// breakerName labels the circuit breaker in logs and metrics.
const breakerName = "upstream-position-api"

// BreakerClient wraps a PositionFetcher with a circuit breaker so that a
// persistently failing upstream stops consuming network round-trips. While
// the circuit is open, Fetch fails fast with KindUnreachable and the
// sampler's backoff governs the retry cadence.
//
// The breaker uses real time for its recovery window; tests exercise the
// wrapped fetcher directly.
type BreakerClient struct {
	fetcher PositionFetcher
	cb      *gobreaker.CircuitBreaker[models.Sample]
}

// NewBreakerClient wraps fetcher with a circuit breaker.
//
// Configuration: trips after 5 consecutive failures, waits 60s before
// half-open, allows one probe request while half-open. With the sampler's
// 60s backoff cap, an open circuit rejects at most one attempt per minute.
func NewBreakerClient(fetcher PositionFetcher) *BreakerClient {
	log := logging.WithComponent("fetcher")

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[models.Sample](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     60 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			log.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{fetcher: fetcher, cb: cb}
}

// Fetch delegates to the wrapped fetcher under breaker protection.
// Rejections from an open circuit surface as KindUnreachable so the sampler
// treats them like any other upstream failure.
func (b *BreakerClient) Fetch(ctx context.Context) (models.Sample, error) {
	result, err := b.cb.Execute(func() (models.Sample, error) {
		return b.fetcher.Fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return models.Sample{}, &UpstreamError{Kind: KindUnreachable, Err: err}
		}
		return models.Sample{}, err
	}
	return result, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
