// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package retention implements the bounded, time-ordered, thread-safe store
// of position samples covering a fixed trailing window.
//
// The buffer is logically a deque over an ascending-timestamp slice: inserts
// append at the back, eviction pops from the front. Eviction is amortized
// into every insert, so the "last N days" semantic is exact without a
// separate cleanup pass. Ordered reads (latest, range, page) run under a
// read lock and use binary search, keeping every operation O(log n) plus
// the size of the returned slice.
//
// Complexity:
//   - Insert: amortized O(1) plus evicted entries
//   - Latest: O(1)
//   - Range: O(log n + k) where k = matching samples
//   - Page: O(pageSize)
package retention

import (
	"sort"
	"sync"
	"time"

	"github.com/orbitus/orbitus/internal/metrics"
	"github.com/orbitus/orbitus/internal/models"
)

// Default retention bounds. MaxCount defaults to one sample per poll
// interval over the whole window; callers normally size it from config.
const (
	DefaultMaxAge   = 72 * time.Hour
	DefaultMaxCount = 51840 // 3 days at one sample per 5s
)

// Config holds buffer construction parameters.
type Config struct {
	// MaxAge is the trailing time span to retain. Default: 72h.
	MaxAge time.Duration

	// MaxCount caps the number of retained samples regardless of age.
	// Default: DefaultMaxCount.
	MaxCount int

	// Now is the clock used for age-based eviction. Default: time.Now.
	// Tests inject a fake clock here.
	Now func() time.Time
}

// Buffer is a bounded, ascending-timestamp sample store. It supports one
// writer concurrent with many readers; every mutation (insert plus its
// eviction pass) happens atomically under one lock acquisition.
type Buffer struct {
	mu       sync.RWMutex
	samples  []models.Sample
	maxAge   time.Duration
	maxCount int
	now      func() time.Time
}

// New creates an empty buffer. Zero-value config fields get defaults.
func New(cfg Config) *Buffer {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = DefaultMaxCount
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Buffer{
		samples:  make([]models.Sample, 0, 128),
		maxAge:   cfg.MaxAge,
		maxCount: cfg.MaxCount,
		now:      cfg.Now,
	}
}

// Insert appends the sample if its timestamp is strictly greater than the
// current maximum (or the buffer is empty). Otherwise it is a no-op that
// returns ErrDuplicateOrStale. After a successful insert, samples older
// than MaxAge and samples beyond MaxCount are evicted from the front.
func (b *Buffer) Insert(s models.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.samples); n > 0 && !s.Timestamp.After(b.samples[n-1].Timestamp) {
		metrics.BufferSamplesDropped.Inc()
		return ErrDuplicateOrStale
	}

	b.samples = append(b.samples, s)
	b.evict()
	metrics.BufferSize.Set(float64(len(b.samples)))
	return nil
}

// evict removes front entries that violate the age or count bound.
// Must be called with the write lock held.
func (b *Buffer) evict() {
	now := b.now()
	evicted := 0
	for len(b.samples) > evicted &&
		(now.Sub(b.samples[evicted].Timestamp) > b.maxAge || len(b.samples)-evicted > b.maxCount) {
		evicted++
	}
	if evicted == 0 {
		return
	}

	metrics.BufferEvictions.Add(float64(evicted))
	remaining := len(b.samples) - evicted

	// Compact in place so the backing array does not pin evicted samples.
	copy(b.samples, b.samples[evicted:])
	for i := remaining; i < len(b.samples); i++ {
		b.samples[i] = models.Sample{}
	}
	b.samples = b.samples[:remaining]
}

// Latest returns the most recently inserted sample, or ErrEmpty if no
// sample has ever been inserted (or all have been evicted).
func (b *Buffer) Latest() (models.Sample, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.samples) == 0 {
		return models.Sample{}, ErrEmpty
	}
	return b.samples[len(b.samples)-1], nil
}

// Range returns all retained samples with since <= timestamp <= until in
// ascending order. An empty range is not an error.
func (b *Buffer) Range(since, until time.Time) []models.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lo := sort.Search(len(b.samples), func(i int) bool {
		return !b.samples[i].Timestamp.Before(since)
	})
	hi := sort.Search(len(b.samples), func(i int) bool {
		return b.samples[i].Timestamp.After(until)
	})
	if lo >= hi {
		return []models.Sample{}
	}

	out := make([]models.Sample, hi-lo)
	copy(out, b.samples[lo:hi])
	return out
}

// Page returns the pageIndex-th fixed-size slice of the retained history in
// ascending timestamp order, plus the total retained count. pageIndex is
// 0-based; an out-of-range index returns an empty slice with the correct
// total. pageSize <= 0 fails with ErrInvalidPageSize.
func (b *Buffer) Page(pageSize, pageIndex int) ([]models.Sample, int, error) {
	if pageSize <= 0 {
		return nil, 0, ErrInvalidPageSize
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	total := len(b.samples)
	// Compare by division so huge indexes cannot overflow the start
	// multiplication below.
	if pageIndex < 0 || total == 0 || pageIndex > (total-1)/pageSize {
		return []models.Sample{}, total, nil
	}

	start := pageIndex * pageSize
	end := start + pageSize
	if end > total || end < start {
		end = total
	}

	out := make([]models.Sample, end-start)
	copy(out, b.samples[start:end])
	return out, total, nil
}

// Len returns the number of retained samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Stats summarizes the retained window.
func (b *Buffer) Stats() models.BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := models.BufferStats{TotalSamples: len(b.samples)}
	if len(b.samples) == 0 {
		return stats
	}

	oldest := b.samples[0].Timestamp
	newest := b.samples[len(b.samples)-1].Timestamp
	stats.Oldest = &oldest
	stats.Newest = &newest
	stats.CoverageHours = newest.Sub(oldest).Hours()
	stats.CoverageDays = stats.CoverageHours / 24
	return stats
}
