// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gather returns the metric family with the given name from the default
// registry, or nil if it has no samples yet.
func gather(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) (float64, bool) {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && lp.GetValue() != want {
				match = false
				break
			}
		}
		if match {
			return m.GetCounter().GetValue(), true
		}
	}
	return 0, false
}

func TestFetchesTotalLabels(t *testing.T) {
	FetchesTotal.WithLabelValues("success").Inc()
	FetchesTotal.WithLabelValues("timeout").Add(2)

	mf := gather(t, "upstream_fetches_total")
	if mf == nil {
		t.Fatal("upstream_fetches_total not registered")
	}

	if v, ok := counterValue(mf, map[string]string{"outcome": "success"}); !ok || v < 1 {
		t.Errorf("success counter = %v (found=%v), want >= 1", v, ok)
	}
	if v, ok := counterValue(mf, map[string]string{"outcome": "timeout"}); !ok || v < 2 {
		t.Errorf("timeout counter = %v (found=%v), want >= 2", v, ok)
	}
}

func TestBufferGauges(t *testing.T) {
	BufferSize.Set(42)

	mf := gather(t, "retention_buffer_samples")
	if mf == nil {
		t.Fatal("retention_buffer_samples not registered")
	}
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 42 {
		t.Errorf("retention_buffer_samples = %v, want 42", got)
	}
}

func TestFetchDurationObservations(t *testing.T) {
	FetchDuration.Observe(0.05)
	FetchDuration.Observe(0.2)

	mf := gather(t, "upstream_fetch_duration_seconds")
	if mf == nil {
		t.Fatal("upstream_fetch_duration_seconds not registered")
	}
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() < 2 {
		t.Errorf("sample count = %d, want >= 2", h.GetSampleCount())
	}
}
