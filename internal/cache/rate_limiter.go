package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per identifier kept in Redis.
type RateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter allows limit hits per window for each identifier.
func NewRateLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// Allow counts a hit for identifier and reports whether it is within the limit.
// When Redis is unavailable the hit is allowed and the error returned for logging.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if r == nil || r.client == nil || r.limit <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:%s:%s", r.prefix, identifier)

	// EXPIRE NX goes out with every hit so a window whose TTL failed to set still closes.
	var incr *redis.IntCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})
	if err != nil {
		return true, err
	}
	return incr.Val() <= r.limit, nil
}

// Window returns the length of one counting window.
func (r *RateLimiter) Window() time.Duration {
	if r == nil {
		return 0
	}
	return r.window
}
