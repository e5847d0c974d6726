// Package cache holds the Redis-backed helpers in front of the public search endpoint.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/queuely/queue-service/internal/queuestate"
)

// SearchCache keeps recently served search summaries in Redis.
type SearchCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSearchCache returns a cache; a nil client or non-positive ttl disables it.
func NewSearchCache(client redis.Cmdable, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func searchKey(queueID string) string {
	return fmt.Sprintf("queue:search:%s", queueID)
}

// floorKey holds the lowest revision a cached summary may carry.
func floorKey(queueID string) string {
	return fmt.Sprintf("queue:search:%s:floor", queueID)
}

// KEYS[1] summary, KEYS[2] floor; ARGV[1] payload, ARGV[2] revision, ARGV[3] ttl ms.
const setIfCurrentScript = `
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
if floor > tonumber(ARGV[2]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`

// KEYS[1] summary, KEYS[2] floor; ARGV[1] revision, ARGV[2] ttl ms.
const invalidateScript = `
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[1]) > floor then
  redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
end
redis.call('DEL', KEYS[1])
return 1
`

func (c *SearchCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached summary and whether it was present.
func (c *SearchCache) Get(ctx context.Context, queueID string) (*queuestate.Summary, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, searchKey(queueID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summary queuestate.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

// Set stores a summary under its queue id unless a newer revision was already saved.
func (c *SearchCache) Set(ctx context.Context, summary queuestate.Summary) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	keys := []string{searchKey(summary.ID), floorKey(summary.ID)}
	return c.client.Eval(ctx, setIfCurrentScript, keys, data, summary.Revision, c.ttl.Milliseconds()).Err()
}

// Invalidate drops the cached summary and raises the floor to revision, so a lookup
// that loaded an older revision cannot write it back.
func (c *SearchCache) Invalidate(ctx context.Context, queueID string, revision int64) error {
	if !c.enabled() {
		return nil
	}
	keys := []string{searchKey(queueID), floorKey(queueID)}
	return c.client.Eval(ctx, invalidateScript, keys, revision, c.ttl.Milliseconds()).Err()
}
