package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/observability"
	"github.com/queuely/queue-service/internal/repository"
	"github.com/queuely/queue-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// GaugeRefresher resyncs the waiting-members gauge from the store. Writes from other
// instances never touch this process's gauge, so it drifts without a periodic resync.
type GaugeRefresher struct {
	queues   repository.QueueRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
}

func NewGaugeRefresher(queues repository.QueueRepository, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *GaugeRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &GaugeRefresher{queues: queues, metrics: metrics, logger: logger, interval: interval}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (g *GaugeRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		if err := g.Refresh(ctx); err != nil && ctx.Err() == nil {
			g.logger.Warn("queue gauge refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh sets the gauge for every stored queue.
func (g *GaugeRefresher) Refresh(ctx context.Context) error {
	queues, err := g.queues.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range queues {
		g.metrics.SetWaiting(queues[i].ID, len(queues[i].Members))
	}
	return nil
}
