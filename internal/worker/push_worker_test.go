package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/events"
	"github.com/queuely/queue-service/internal/observability"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/repository/repositorytest"
	"github.com/queuely/queue-service/internal/service"
)

type slowPublisher struct {
	delay time.Duration

	mu       sync.Mutex
	channels []string
	messages []map[string]any
}

func (p *slowPublisher) Publish(ctx context.Context, channel string, message map[string]any) error {
	time.Sleep(p.delay)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message)
	return nil
}

func (p *slowPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

func (p *slowPublisher) positionsFor(channel string) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []any
	for i, ch := range p.channels {
		if ch == channel {
			out = append(out, p.messages[i]["position"])
		}
	}
	return out
}

func stopWorker(t *testing.T, w *PushWorker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}

func TestPushWorker_CallNextDoesNotWaitForDelivery(t *testing.T) {
	publisher := &slowPublisher{delay: 20 * time.Millisecond}
	pushes := NewPushWorker(publisher, zap.NewNop(), 4, 128, time.Second)
	pushes.Start()

	dispatcher := events.NewInMemoryDispatcher()
	StartNotificationWorker(service.NewNotificationService(dispatcher, pushes, nil))
	queues := service.NewQueueService(service.QueueDependencies{
		QueueRepo:  repositorytest.NewQueueStore(),
		Metrics:    observability.NewMetrics(),
		Dispatcher: dispatcher,
	})

	ctx := context.Background()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	q, err := queues.Create(ctx, admin, queuestate.CreateInput{
		Name:        "Clinic",
		Description: "Walk-ins",
		Category:    domain.CategoryHealth,
		Capacity:    100,
	})
	require.NoError(t, err)

	const members = 50
	for i := 0; i < members; i++ {
		_, err := queues.Join(ctx, fmt.Sprintf("u-%d", i), q.ID)
		require.NoError(t, err)
	}

	start := time.Now()
	served, err := queues.CallNext(ctx, admin.ID, q.ID)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, "u-0", served.UserID)
	assert.Less(t, elapsed, 250*time.Millisecond, "call-next waited on %d pushes", members)

	stopWorker(t, pushes)
	// one push per join, then your-turn plus one position update per remaining member
	assert.Equal(t, members+1+(members-1), publisher.count())
	assert.Equal(t, []any{2, 1}, publisher.positionsFor("user-u-1"))
}

func TestPushWorker_KeepsOrderPerChannel(t *testing.T) {
	publisher := &slowPublisher{delay: time.Millisecond}
	pushes := NewPushWorker(publisher, zap.NewNop(), 4, 16, time.Second)
	pushes.Start()

	for pos := 5; pos >= 1; pos-- {
		require.NoError(t, pushes.Publish(context.Background(), "user-a", map[string]any{"position": pos}))
	}
	stopWorker(t, pushes)

	assert.Equal(t, []any{5, 4, 3, 2, 1}, publisher.positionsFor("user-a"))
}

func TestPushWorker_IgnoresCanceledCallerContext(t *testing.T) {
	publisher := &slowPublisher{}
	pushes := NewPushWorker(publisher, zap.NewNop(), 1, 4, time.Second)
	pushes.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, pushes.Publish(ctx, "user-a", map[string]any{"position": 1}))
	stopWorker(t, pushes)

	assert.Equal(t, 1, publisher.count())
}

func TestPushWorker_BacklogFullAndStopped(t *testing.T) {
	pushes := NewPushWorker(&slowPublisher{}, zap.NewNop(), 1, 1, time.Second)
	ctx := context.Background()

	// not started, so the single slot stays taken
	require.NoError(t, pushes.Publish(ctx, "user-a", map[string]any{}))
	assert.ErrorIs(t, pushes.Publish(ctx, "user-a", map[string]any{}), ErrPushBacklogFull)

	pushes.Start()
	stopWorker(t, pushes)
	assert.ErrorIs(t, pushes.Publish(ctx, "user-a", map[string]any{}), ErrPushWorkerStopped)
}
