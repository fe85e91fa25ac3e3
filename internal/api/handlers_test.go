// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbitus/orbitus/internal/models"
	"github.com/orbitus/orbitus/internal/query"
	"github.com/orbitus/orbitus/internal/retention"
	ws "github.com/orbitus/orbitus/internal/websocket"
)

var testBase = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// newTestRouter builds the full chi router over a buffer pre-filled with n
// samples spaced 5s apart.
func newTestRouter(t *testing.T, n int) http.Handler {
	t.Helper()

	// Pin the buffer clock to testBase so the hardcoded fixtures are never
	// age-evicted by the real clock.
	buf := retention.New(retention.Config{Now: func() time.Time { return testBase }})
	for i := 0; i < n; i++ {
		s := models.Sample{
			Timestamp: testBase.Add(time.Duration(i) * 5 * time.Second),
			Latitude:  float64(i),
			Longitude: float64(-i),
			Altitude:  417.5,
		}
		if err := buf.Insert(s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	handler := NewHandler(query.New(buf), ws.NewHub(), "test")
	mw := NewMiddleware(DefaultMiddlewareConfig())
	return NewRouter(handler, mw).Setup()
}

// envelope mirrors models.APIResponse with raw data for per-test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

func TestCurrentEndpoint(t *testing.T) {
	t.Run("no data yet", func(t *testing.T) {
		router := newTestRouter(t, 0)
		rec, env := doRequest(t, router, "/api/current")

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		if env.Status != "error" {
			t.Errorf("envelope status = %q, want error", env.Status)
		}
		if env.Error == nil || env.Error.Code != "NO_DATA_YET" {
			t.Errorf("error = %+v, want code NO_DATA_YET", env.Error)
		}
	})

	t.Run("returns latest sample", func(t *testing.T) {
		router := newTestRouter(t, 3)
		rec, env := doRequest(t, router, "/api/current")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var sample models.Sample
		if err := json.Unmarshal(env.Data, &sample); err != nil {
			t.Fatalf("data is not a sample: %v", err)
		}
		want := testBase.Add(10 * time.Second)
		if !sample.Timestamp.Equal(want) {
			t.Errorf("timestamp = %v, want %v", sample.Timestamp, want)
		}
	})
}

func TestHistoryEndpoint(t *testing.T) {
	router := newTestRouter(t, 5)

	t.Run("pagination", func(t *testing.T) {
		rec, env := doRequest(t, router, "/api/last3days?page=0&pageSize=2")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var page models.HistoryPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("data is not a history page: %v", err)
		}
		if len(page.Items) != 2 {
			t.Errorf("len(items) = %d, want 2", len(page.Items))
		}
		if page.TotalCount != 5 {
			t.Errorf("total_count = %d, want 5", page.TotalCount)
		}
		if page.Page != 0 || page.PageSize != 2 {
			t.Errorf("page = %d size = %d, want 0 and 2", page.Page, page.PageSize)
		}
	})

	t.Run("defaults when params absent", func(t *testing.T) {
		rec, env := doRequest(t, router, "/api/last3days")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var page models.HistoryPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("data is not a history page: %v", err)
		}
		if page.PageSize != query.DefaultPageSize {
			t.Errorf("page_size = %d, want %d", page.PageSize, query.DefaultPageSize)
		}
		if len(page.Items) != 5 {
			t.Errorf("len(items) = %d, want 5", len(page.Items))
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		paths := []string{
			"/api/last3days?page=abc",
			"/api/last3days?pageSize=abc",
			"/api/last3days?page=-1",
			"/api/last3days?pageSize=-5",
			"/api/last3days?page=1.5",
		}
		for _, path := range paths {
			rec, env := doRequest(t, router, path)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", path, rec.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("%s: error = %+v, want VALIDATION_ERROR", path, env.Error)
			}
		}
	})

	t.Run("extreme page index is out of range, not an error", func(t *testing.T) {
		rec, env := doRequest(t, router, "/api/last3days?page=9223372036854775807&pageSize=1000")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var page models.HistoryPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("data is not a history page: %v", err)
		}
		if len(page.Items) != 0 {
			t.Errorf("len(items) = %d, want 0", len(page.Items))
		}
		if page.TotalCount != 5 {
			t.Errorf("total_count = %d, want 5", page.TotalCount)
		}
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		rec, env := doRequest(t, router, "/api/last3days?page=50&pageSize=2")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var page models.HistoryPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("data is not a history page: %v", err)
		}
		if len(page.Items) != 0 {
			t.Errorf("len(items) = %d, want 0", len(page.Items))
		}
		if page.TotalCount != 5 {
			t.Errorf("total_count = %d, want 5", page.TotalCount)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, 4)
	rec, env := doRequest(t, router, "/api/stats")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats models.BufferStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("data is not buffer stats: %v", err)
	}
	if stats.TotalSamples != 4 {
		t.Errorf("total_samples = %d, want 4", stats.TotalSamples)
	}
	if stats.Oldest == nil || stats.Newest == nil {
		t.Fatal("oldest/newest missing")
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("degraded before first sample", func(t *testing.T) {
		router := newTestRouter(t, 0)
		rec, env := doRequest(t, router, "/api/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var health models.HealthStatus
		if err := json.Unmarshal(env.Data, &health); err != nil {
			t.Fatalf("data is not health status: %v", err)
		}
		if health.Status != "degraded" {
			t.Errorf("health status = %q, want degraded", health.Status)
		}
	})

	t.Run("healthy with samples", func(t *testing.T) {
		router := newTestRouter(t, 2)
		_, env := doRequest(t, router, "/api/health")
		var health models.HealthStatus
		if err := json.Unmarshal(env.Data, &health); err != nil {
			t.Fatalf("data is not health status: %v", err)
		}
		if health.Status != "healthy" {
			t.Errorf("health status = %q, want healthy", health.Status)
		}
		if health.SamplesRetained != 2 {
			t.Errorf("samples_retained = %d, want 2", health.SamplesRetained)
		}
		if health.Version != "test" {
			t.Errorf("version = %q, want test", health.Version)
		}
	})

	t.Run("liveness", func(t *testing.T) {
		router := newTestRouter(t, 0)
		rec, _ := doRequest(t, router, "/api/health/live")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/current", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v", err)
	}
	if env.Error == nil || env.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("error = %+v, want METHOD_NOT_ALLOWED", env.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 1)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpointLabelIsRoutePattern(t *testing.T) {
	router := newTestRouter(t, 1)

	for _, path := range []string{
		"/api/current",
		"/api/does-not-exist-aaa",
		"/api/does-not-exist-bbb",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	endpoints := map[string]bool{}
	for _, mf := range families {
		if mf.GetName() != "api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "endpoint" {
					endpoints[lp.GetValue()] = true
				}
			}
		}
	}

	if !endpoints["/api/current"] {
		t.Errorf("no series for matched route pattern, got %v", endpoints)
	}
	// Unmatched paths collapse into one label value instead of minting a
	// series per path.
	if endpoints["/api/does-not-exist-aaa"] || endpoints["/api/does-not-exist-bbb"] {
		t.Errorf("raw unmatched paths used as endpoint labels: %v", endpoints)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, 1)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
