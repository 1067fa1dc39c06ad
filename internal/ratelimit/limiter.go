package ratelimit

import "context"

// RateLimiter controls outbound send throughput per bucket.
type RateLimiter interface {
	Allow(ctx context.Context, bucket string) (bool, error)
	Wait(ctx context.Context, bucket string) error
}
