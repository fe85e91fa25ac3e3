// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package query answers "current position" and "history page" requests by
// reading the retention buffer. The service is stateless beyond the buffer
// reference; it owns the server-side paging policy (default and maximum
// page size) so the HTTP layer and any future consumer share one
// implementation.
package query

import (
	"errors"
	"time"

	"github.com/orbitus/orbitus/internal/models"
	"github.com/orbitus/orbitus/internal/retention"
)

// ErrNoDataYet indicates no sample has been retained since startup. It is a
// distinct "not ready" condition, never a generic failure.
var ErrNoDataYet = errors.New("no position data retained yet")

// ErrInvalidPageSize is re-exported so HTTP callers need not import the
// retention package to classify paging errors.
var ErrInvalidPageSize = retention.ErrInvalidPageSize

// Paging policy. Requests above MaxPageSize are clamped, not rejected.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Buffer is the read contract the service needs from the retention buffer.
type Buffer interface {
	Latest() (models.Sample, error)
	Range(since, until time.Time) []models.Sample
	Page(pageSize, pageIndex int) ([]models.Sample, int, error)
	Stats() models.BufferStats
}

// Service serves point and range queries against the retained window.
type Service struct {
	buffer Buffer
}

// New creates a query service over the given buffer.
func New(buffer Buffer) *Service {
	return &Service{buffer: buffer}
}

// Current returns the most recent sample, or ErrNoDataYet when the buffer
// has never held a sample.
func (s *Service) Current() (models.Sample, error) {
	sample, err := s.buffer.Latest()
	if err != nil {
		if errors.Is(err, retention.ErrEmpty) {
			return models.Sample{}, ErrNoDataYet
		}
		return models.Sample{}, err
	}
	return sample, nil
}

// History returns one page of the retained history in ascending timestamp
// order. pageSize 0 selects the server default; values above MaxPageSize
// are clamped. Negative pageSize fails with ErrInvalidPageSize. An
// out-of-range page yields empty items with the correct total count.
func (s *Service) History(pageSize, pageIndex int) (models.HistoryPage, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	items, total, err := s.buffer.Page(pageSize, pageIndex)
	if err != nil {
		return models.HistoryPage{}, err
	}

	return models.HistoryPage{
		Items:      items,
		Page:       pageIndex,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// Window returns all retained samples with since <= timestamp <= until.
func (s *Service) Window(since, until time.Time) []models.Sample {
	return s.buffer.Range(since, until)
}

// Stats summarizes the retained window for the stats endpoint.
func (s *Service) Stats() models.BufferStats {
	return s.buffer.Stats()
}
