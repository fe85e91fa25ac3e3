// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package sampler drives the upstream fetcher on a fixed cadence and pushes
// successful samples into the retention buffer. It owns the polling loop
// and its failure policy: exponential backoff on fetch errors, drop-and-log
// on duplicate or stale timestamps, cooperative cancellation via context.
// No failure mode crashes the loop; it exits only when its context ends.
package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbitus/orbitus/internal/fetcher"
	"github.com/orbitus/orbitus/internal/logging"
	"github.com/orbitus/orbitus/internal/metrics"
	"github.com/orbitus/orbitus/internal/models"
	"github.com/orbitus/orbitus/internal/retention"
)

// Default polling parameters.
const (
	DefaultPeriod     = 5 * time.Second
	DefaultBackoffCap = 60 * time.Second
)

// Inserter is the retention buffer's write contract.
// Satisfied by *retention.Buffer.
type Inserter interface {
	Insert(models.Sample) error
}

// Publisher receives every retained sample. Satisfied by *events.Bus.
type Publisher interface {
	PublishSample(models.Sample) error
}

// Config holds sampler construction parameters.
type Config struct {
	// Period is the polling cadence. Default: 5s.
	Period time.Duration

	// BackoffCap bounds the failure backoff. Default: 60s.
	BackoffCap time.Duration
}

// Sampler polls the fetcher and feeds the buffer.
type Sampler struct {
	fetcher fetcher.PositionFetcher
	buffer  Inserter
	bus     Publisher // nil disables event publishing

	period     time.Duration
	backoffCap time.Duration

	failures int
	log      zerolog.Logger
}

// New creates a sampler. bus may be nil when no live consumers exist.
func New(f fetcher.PositionFetcher, buffer Inserter, bus Publisher, cfg Config) *Sampler {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = DefaultBackoffCap
	}
	return &Sampler{
		fetcher:    f,
		buffer:     buffer,
		bus:        bus,
		period:     cfg.Period,
		backoffCap: cfg.BackoffCap,
		log:        logging.WithComponent("sampler"),
	}
}

// Run executes the polling loop until ctx is canceled. On success the next
// poll is scheduled at pollStart+period rather than now+period so the
// cadence does not drift under load. On failure the loop sleeps the current
// backoff delay instead. Always returns ctx.Err().
func (s *Sampler) Run(ctx context.Context) error {
	s.log.Info().
		Dur("period", s.period).
		Dur("backoff_cap", s.backoffCap).
		Msg("sampler started")

	for {
		pollStart := time.Now()
		delay := s.delayAfterPoll(s.pollOnce(ctx), pollStart)

		if err := sleep(ctx, delay); err != nil {
			s.log.Info().Msg("sampler stopped")
			return err
		}
	}
}

// pollOnce runs one Polling -> (Success|Failed) transition: a single fetch
// and, on success, the buffer insert and event publish.
func (s *Sampler) pollOnce(ctx context.Context) error {
	sample, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	if err := s.buffer.Insert(sample); err != nil {
		if errors.Is(err, retention.ErrDuplicateOrStale) {
			metrics.SamplerPollsTotal.WithLabelValues("dropped").Inc()
			s.log.Warn().
				Time("sample_timestamp", sample.Timestamp).
				Msg("dropped duplicate or stale sample")
			return nil
		}
		return err
	}

	metrics.SamplerPollsTotal.WithLabelValues("success").Inc()
	s.log.Debug().
		Time("sample_timestamp", sample.Timestamp).
		Float64("latitude", sample.Latitude).
		Float64("longitude", sample.Longitude).
		Msg("sample retained")

	if s.bus != nil {
		if err := s.bus.PublishSample(sample); err != nil {
			// Live updates are best-effort; the sample is already retained.
			s.log.Warn().Err(err).Msg("failed to publish sample event")
		}
	}
	return nil
}

// delayAfterPoll updates the failure state and returns how long to wait
// before the next poll.
func (s *Sampler) delayAfterPoll(err error, pollStart time.Time) time.Duration {
	if err == nil {
		if s.failures > 0 {
			s.log.Info().Int("failures", s.failures).Msg("upstream recovered")
		}
		s.failures = 0
		metrics.SamplerBackoffSeconds.Set(0)

		delay := s.period - time.Since(pollStart)
		if delay < 0 {
			delay = 0
		}
		return delay
	}

	s.failures++
	metrics.SamplerPollsTotal.WithLabelValues("failure").Inc()

	delay := backoffDelay(s.period, s.backoffCap, s.failures)
	metrics.SamplerBackoffSeconds.Set(delay.Seconds())

	kind, _ := fetcher.KindOf(err)
	s.log.Warn().
		Err(err).
		Str("kind", kind.String()).
		Int("consecutive_failures", s.failures).
		Dur("backoff", delay).
		Msg("poll failed")
	return delay
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still yield to cancellation between back-to-back polls.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
