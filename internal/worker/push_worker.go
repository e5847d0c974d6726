package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/notify"
)

var (
	ErrPushBacklogFull   = errors.New("push backlog full")
	ErrPushWorkerStopped = errors.New("push worker stopped")
)

type pushJob struct {
	channel string
	message map[string]any
}

// PushWorker delivers pushes in the background so callers only enqueue.
// Each channel always lands on the same lane, which keeps one user's updates in order.
type PushWorker struct {
	next    notify.Publisher
	logger  *zap.Logger
	timeout time.Duration
	lanes   []chan pushJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ notify.Publisher = (*PushWorker)(nil)

// NewPushWorker wraps next with lanes goroutines, each buffering up to buffer pushes.
func NewPushWorker(next notify.Publisher, logger *zap.Logger, lanes, buffer int, timeout time.Duration) *PushWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lanes <= 0 {
		lanes = 1
	}
	if buffer <= 0 {
		buffer = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &PushWorker{next: next, logger: logger, timeout: timeout}
	for i := 0; i < lanes; i++ {
		w.lanes = append(w.lanes, make(chan pushJob, buffer))
	}
	return w
}

// Start launches one delivery goroutine per lane.
func (w *PushWorker) Start() {
	for _, lane := range w.lanes {
		w.wg.Add(1)
		go w.run(lane)
	}
}

// Publish enqueues the push. The caller's context is not used for delivery.
func (w *PushWorker) Publish(_ context.Context, channel string, message map[string]any) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrPushWorkerStopped
	}
	select {
	case w.laneFor(channel) <- pushJob{channel: channel, message: message}:
		return nil
	default:
		return ErrPushBacklogFull
	}
}

// Stop rejects new pushes and waits for the queued ones until ctx is done.
func (w *PushWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		for _, lane := range w.lanes {
			close(lane)
		}
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *PushWorker) laneFor(channel string) chan pushJob {
	h := fnv.New32a()
	_, _ = h.Write([]byte(channel))
	return w.lanes[h.Sum32()%uint32(len(w.lanes))]
}

func (w *PushWorker) run(lane chan pushJob) {
	defer w.wg.Done()
	for job := range lane {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.next.Publish(ctx, job.channel, job.message); err != nil {
			w.logger.Warn("push delivery failed", zap.String("channel", job.channel), zap.Error(err))
		}
		cancel()
	}
}
