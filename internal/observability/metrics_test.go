package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_QueueOperations(t *testing.T) {
	m := NewMetrics()

	m.RecordQueueOperation("join", nil)
	m.RecordQueueOperation("join", nil)
	m.RecordQueueOperation("join", errors.New("full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queueOperations.WithLabelValues("join", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueOperations.WithLabelValues("join", "error")))
}

func TestMetrics_WaitingGauge(t *testing.T) {
	m := NewMetrics()

	m.SetWaiting("q-1", 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.waitingMembers.WithLabelValues("q-1")))

	m.ForgetQueue("q-1")
	assert.Equal(t, 0, testutil.CollectAndCount(m.waitingMembers))
}

func TestMetrics_Requests(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/queues/:id/join", "POST", 200, 15*time.Millisecond)
	m.RecordError("/api/queues/:id/join", "POST", "QUEUE_FULL")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/api/queues/:id/join", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/api/queues/:id/join", "POST", "QUEUE_FULL")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordQueueOperation("join", nil)
		m.RecordServed(3)
		m.SetWaiting("q", 1)
		m.ForgetQueue("q")
	})
}
