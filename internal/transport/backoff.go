// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import "time"

// Backoff is the reconnection schedule: the delay doubles from Min and
// is capped at Max, for at most MaxAttempts tries.
type Backoff struct {
	MaxAttempts int
	Min         time.Duration
	Max         time.Duration
}

// DefaultBackoff is five attempts between one and five seconds apart.
var DefaultBackoff = Backoff{MaxAttempts: 5, Min: time.Second, Max: 5 * time.Second}

// Delay returns the wait before the given zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if b.Min <= 0 {
		return 0
	}
	d := b.Min
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Exhausted reports whether attempt is past the allowed number of tries.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxAttempts
}
