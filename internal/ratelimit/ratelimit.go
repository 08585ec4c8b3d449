// Package ratelimit implements sliding-window request limits keyed by client.
package ratelimit

import (
	"context"
	"time"
)

// Result is the decision for a single request.
type Result struct {
	Allowed bool
	// Count is the number of requests in the window, including this one when allowed.
	Count int
	// RetryAfter is set when the request was denied.
	RetryAfter time.Duration
}

// Store records hits and decides whether key may make another request.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
