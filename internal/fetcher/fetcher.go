// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package fetcher acquires one validated position sample per call from the
// upstream source. It performs a single bounded network round-trip, decodes
// and range-checks the response, and reports failures as typed
// UpstreamError values. It never retries; retry and backoff policy belong
// to the sampler.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/orbitus/orbitus/internal/metrics"
	"github.com/orbitus/orbitus/internal/models"
	"github.com/orbitus/orbitus/internal/validation"
)

// DefaultURL is the wheretheiss.at record for the ISS (NORAD 25544).
const DefaultURL = "https://api.wheretheiss.at/v1/satellites/25544"

// DefaultTimeout bounds one fetch round-trip.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps the response body read. Position records are a few
// hundred bytes; anything larger is malformed.
const maxResponseBytes = 64 << 10

// PositionFetcher is the contract the sampler polls against. Satisfied by
// *Client and by *BreakerClient.
type PositionFetcher interface {
	Fetch(ctx context.Context) (models.Sample, error)
}

// Config holds fetcher construction parameters.
type Config struct {
	// URL is the upstream position endpoint. Default: DefaultURL.
	URL string

	// Timeout bounds one round-trip. Default: 5s.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// upstreamRecord is the decoded wire shape of one upstream response.
// Velocity is a pointer because some sources omit it.
type upstreamRecord struct {
	Latitude  float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64  `json:"longitude" validate:"min=-180,max=180"`
	Altitude  *float64 `json:"altitude" validate:"required"`
	Velocity  *float64 `json:"velocity"`
	Timestamp int64    `json:"timestamp" validate:"required,gt=0"`
}

// Client fetches position samples over HTTP.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client

	// limiter guards the upstream against misconfigured sub-second poll
	// intervals; the public wheretheiss.at API allows roughly one request
	// per second.
	limiter *rate.Limiter
}

// New creates an upstream position client.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Fetch performs one round-trip to the upstream source and returns a
// validated sample. Failure modes:
//   - KindTimeout: the round-trip exceeded the configured deadline
//   - KindUnreachable: network failure or non-2xx status
//   - KindMalformed: undecodable body or out-of-range field
func (c *Client) Fetch(ctx context.Context) (models.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	sample, err := c.fetch(ctx)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		kind, _ := KindOf(err)
		metrics.FetchesTotal.WithLabelValues(kind.String()).Inc()
		return models.Sample{}, err
	}

	metrics.FetchesTotal.WithLabelValues("success").Inc()
	return sample, nil
}

func (c *Client) fetch(ctx context.Context) (models.Sample, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.Sample{}, &UpstreamError{Kind: KindTimeout, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.Sample{}, &UpstreamError{Kind: KindUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Sample{}, &UpstreamError{Kind: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Sample{}, &UpstreamError{
			Kind: KindUnreachable,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Sample{}, &UpstreamError{Kind: classifyTransportError(err), Err: err}
	}

	var rec upstreamRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.Sample{}, &UpstreamError{Kind: KindMalformed, Err: err}
	}
	if verr := validation.ValidateStruct(&rec); verr != nil {
		return models.Sample{}, &UpstreamError{Kind: KindMalformed, Err: verr}
	}

	return models.Sample{
		Timestamp: time.Unix(rec.Timestamp, 0).UTC(),
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Altitude:  *rec.Altitude,
		Velocity:  rec.Velocity,
	}, nil
}

// classifyTransportError distinguishes deadline expiry from other
// transport failures.
func classifyTransportError(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}
