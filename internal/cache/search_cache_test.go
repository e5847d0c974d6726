package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/queuestate"
)

func testSummary() queuestate.Summary {
	return queuestate.Summary{
		ID:                "q-1",
		Name:              "Bank",
		Description:       "Tellers",
		Category:          domain.CategoryBanking,
		Capacity:          20,
		Status:            domain.QueueStatusActive,
		CurrentUsersCount: 2,
		CreatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Position:          3,
		EstimatedWaitTime: 45,
		Revision:          7,
	}
}

func TestSearchCache_SetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSearchCache(db, 15*time.Second)
	ctx := context.Background()
	summary := testSummary()
	data, err := json.Marshal(summary)
	require.NoError(t, err)

	mock.ExpectEval(setIfCurrentScript, []string{"queue:search:q-1", "queue:search:q-1:floor"},
		data, int64(7), int64(15000)).SetVal(int64(1))
	require.NoError(t, c.Set(ctx, summary))

	mock.ExpectGet("queue:search:q-1").SetVal(string(data))
	got, ok, err := c.Get(ctx, "q-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, summary, *got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSearchCache(db, time.Minute)

	mock.ExpectGet("queue:search:q-9").RedisNil()
	got, ok, err := c.Get(context.Background(), "q-9")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSearchCache(db, time.Minute)

	mock.ExpectGet("queue:search:q-1").SetErr(errors.New("connection refused"))
	_, ok, err := c.Get(context.Background(), "q-1")

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSearchCache_SkippedWriteIsNotAnError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSearchCache(db, time.Minute)
	summary := testSummary()
	data, err := json.Marshal(summary)
	require.NoError(t, err)

	// the floor is already past revision 7
	mock.ExpectEval(setIfCurrentScript, []string{"queue:search:q-1", "queue:search:q-1:floor"},
		data, int64(7), int64(60000)).SetVal(int64(0))
	require.NoError(t, c.Set(context.Background(), summary))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCache_InvalidateRaisesFloor(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSearchCache(db, time.Minute)

	mock.ExpectEval(invalidateScript, []string{"queue:search:q-1", "queue:search:q-1:floor"},
		int64(8), int64(60000)).SetVal(int64(1))
	require.NoError(t, c.Invalidate(context.Background(), "q-1", 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*SearchCache{nil, NewSearchCache(nil, time.Minute)} {
		require.NoError(t, c.Set(ctx, testSummary()))
		require.NoError(t, c.Invalidate(ctx, "q-1", 1))
		_, ok, err := c.Get(ctx, "q-1")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	db, mock := redismock.NewClientMock()
	zeroTTL := NewSearchCache(db, 0)
	require.NoError(t, zeroTTL.Set(ctx, testSummary()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
