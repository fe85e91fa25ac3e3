// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package retention

import "errors"

// Sentinel errors returned by the Buffer.
var (
	// ErrDuplicateOrStale indicates an insert whose timestamp is not
	// strictly greater than the newest retained sample. The insert is a
	// no-op; callers log and continue.
	ErrDuplicateOrStale = errors.New("duplicate or stale sample")

	// ErrEmpty indicates no sample has ever been inserted.
	ErrEmpty = errors.New("buffer is empty")

	// ErrInvalidPageSize indicates a page request with pageSize <= 0.
	ErrInvalidPageSize = errors.New("page size must be positive")
)
