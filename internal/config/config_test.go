package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("QUEUE_SEARCH_CACHE_TTL_SECONDS", "")
	t.Setenv("PUBNUB_PUBLISH_KEY", "")
	t.Setenv("PUBNUB_SUBSCRIBE_KEY", "")
	t.Setenv("PUSH_WORKERS", "")
	t.Setenv("PUSH_BUFFER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 15*time.Second, cfg.Queue.SearchCacheTTL())
	assert.Equal(t, 30, cfg.Queue.SearchRateLimitPerMinute)
	assert.False(t, cfg.Notification.PushEnabled())
	assert.Equal(t, 4, cfg.Notification.PushWorkers)
	assert.Equal(t, 256, cfg.Notification.PushBuffer)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("QUEUE_SEARCH_RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("PUBNUB_PUBLISH_KEY", "pub")
	t.Setenv("PUBNUB_SUBSCRIBE_KEY", "sub")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 30, cfg.Queue.SearchRateLimitPerMinute)
	assert.True(t, cfg.Notification.PushEnabled())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid REDIS_DB")
}
