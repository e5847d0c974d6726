package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	queueOperations *prometheus.CounterVec
	servedWait      prometheus.Histogram
	waitingMembers  *prometheus.GaugeVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by error code",
		}, []string{"path", "method", "code"}),
		queueOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_operations_total",
			Help: "Queue operations by outcome",
		}, []string{"operation", "result"}),
		servedWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "queue_served_wait_minutes",
			Help:    "Minutes members waited before being called",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120, 240},
		}),
		waitingMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queue_waiting_members",
			Help: "Members currently waiting per queue",
		}, []string{"queue_id"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordQueueOperation counts a join/leave/call_next/... attempt.
func (m *Metrics) RecordQueueOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.queueOperations.WithLabelValues(operation, result).Inc()
}

// RecordServed observes the wait of a called member.
func (m *Metrics) RecordServed(waitMinutes int) {
	if m == nil {
		return
	}
	m.servedWait.Observe(float64(waitMinutes))
}

// SetWaiting sets the current member count for a queue.
func (m *Metrics) SetWaiting(queueID string, count int) {
	if m == nil {
		return
	}
	m.waitingMembers.WithLabelValues(queueID).Set(float64(count))
}

// ForgetQueue drops per-queue series after a delete.
func (m *Metrics) ForgetQueue(queueID string) {
	if m == nil {
		return
	}
	m.waitingMembers.DeleteLabelValues(queueID)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
