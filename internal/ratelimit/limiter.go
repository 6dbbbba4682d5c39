// Package ratelimit throttles the public intake endpoints per client IP
// using a sliding window, so a burst at a window boundary cannot double the
// effective limit.
package ratelimit

import (
	"context"
	"time"
)

// Result describes one rate limit decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key over a sliding window.
type Store interface {
	// Allow records a request against the key and reports whether it fits
	// within limit over the trailing window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}

// Limit pairs a request budget with its window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// The public endpoint budgets. Generation is expensive and produces a
// persisted artifact per call, so it gets the tightest budget.
var (
	LimitGenerate = Limit{Requests: 10, Window: time.Hour}
	LimitValidate = Limit{Requests: 60, Window: time.Minute}
	LimitDefault  = Limit{Requests: 120, Window: time.Minute}
)
