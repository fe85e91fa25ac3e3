// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbitus/orbitus/internal/models"
)

type flakyFetcher struct {
	calls int
	err   error
}

func (f *flakyFetcher) Fetch(_ context.Context) (models.Sample, error) {
	f.calls++
	if f.err != nil {
		return models.Sample{}, f.err
	}
	return models.Sample{Timestamp: time.Unix(int64(f.calls), 0).UTC()}, nil
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &flakyFetcher{}
	b := NewBreakerClient(inner)

	sample, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if sample.Timestamp.IsZero() {
		t.Error("Fetch returned zero sample")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyFetcher{err: &UpstreamError{Kind: KindUnreachable, Err: errors.New("down")}}
	b := NewBreakerClient(inner)

	for i := 0; i < 5; i++ {
		if _, err := b.Fetch(context.Background()); err == nil {
			t.Fatalf("Fetch %d succeeded, want error", i)
		}
	}
	callsWhenOpen := inner.calls

	// Open breaker short-circuits without hitting the upstream.
	_, err := b.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch through open breaker succeeded")
	}
	if kind, ok := KindOf(err); !ok || kind != KindUnreachable {
		t.Errorf("kind = %v (ok=%v), want KindUnreachable", kind, ok)
	}
	if inner.calls != callsWhenOpen {
		t.Errorf("upstream called %d times after breaker opened, want %d", inner.calls, callsWhenOpen)
	}
}
