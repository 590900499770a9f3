package outbound

import (
	"context"
	"time"
)

// RateDecision is the outcome of counting one hit against a bucket.
type RateDecision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest hit leaves the window.
	// Zero when the hit was allowed.
	RetryAfter time.Duration
}

// RateLimiterPort counts hits per bucket over a sliding window.
type RateLimiterPort interface {
	// Take records a hit for key unless limit is already reached.
	Take(ctx context.Context, key string, limit int, window time.Duration) (*RateDecision, error)
}
