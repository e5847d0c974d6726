package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/observability"
	"github.com/queuely/queue-service/internal/repository/repositorytest"
)

func waitingGauge(t *testing.T, metrics *observability.Metrics) map[string]float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "queue_waiting_members" {
			continue
		}
		for _, m := range mf.GetMetric() {
			out[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
	}
	return out
}

func TestGaugeRefresher_Refresh(t *testing.T) {
	store := repositorytest.NewQueueStore()
	ctx := context.Background()
	q := &domain.Queue{
		Name:     "Bank",
		Status:   domain.QueueStatusActive,
		Capacity: 10,
		Members: []domain.Membership{
			{UserID: "a", Position: 1},
			{UserID: "b", Position: 2},
		},
	}
	require.NoError(t, store.Create(ctx, q))

	metrics := observability.NewMetrics()
	refresher := NewGaugeRefresher(store, metrics, zap.NewNop(), time.Minute)
	require.NoError(t, refresher.Refresh(ctx))

	assert.Equal(t, map[string]float64{q.ID: 2}, waitingGauge(t, metrics))
}

func TestGaugeRefresher_RunStopsWithContext(t *testing.T) {
	refresher := NewGaugeRefresher(repositorytest.NewQueueStore(), observability.NewMetrics(), zap.NewNop(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		refresher.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
