// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package sampler

import "time"

// backoffDelay computes the exponential backoff delay after the given
// number of consecutive failures: base after the first failure, doubling
// per failure, capped. failures must be >= 1.
func backoffDelay(base, cap time.Duration, failures int) time.Duration {
	if failures < 1 {
		return base
	}
	// Shifting past 30 would overflow any practical base; the cap applies
	// long before that anyway.
	shift := failures - 1
	if shift > 30 {
		return cap
	}
	delay := base << shift
	if delay > cap || delay <= 0 {
		return cap
	}
	return delay
}
