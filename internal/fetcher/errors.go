// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package fetcher

import (
	"errors"
	"fmt"
)

// Kind classifies upstream failures. The sampler backs off on every kind;
// the distinction exists for logs and metrics.
type Kind int

const (
	// KindUnreachable covers connection failures, DNS errors, and non-2xx
	// upstream responses.
	KindUnreachable Kind = iota

	// KindMalformed covers undecodable response bodies and decoded records
	// with out-of-range fields.
	KindMalformed

	// KindTimeout covers round-trips that exceeded the configured deadline.
	KindTimeout
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// UpstreamError is the error type for all fetch failures.
type UpstreamError struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream error (%s)", e.Kind)
	}
	return fmt.Sprintf("upstream error (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err. The second return value is
// false when err is not an UpstreamError.
func KindOf(err error) (Kind, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return 0, false
}
