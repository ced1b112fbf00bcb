package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artistbooking/notification-service/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	NotificationLatency *prometheus.HistogramVec
	DispatchMode        *prometheus.CounterVec
	PushEndpoints       prometheus.Counter
	PushFulfilled       prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}, []string{"channel"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of permanently failed queued notifications (retries exhausted).",
		}, []string{"channel"}),

		NotificationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_send_seconds",
			Help:    "Provider send latency per delivery attempt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),

		DispatchMode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_total",
			Help: "Dispatched jobs by execution mode (queued or direct).",
		}, []string{"channel", "mode"}),

		PushEndpoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_fanout_endpoints_total",
			Help: "Total push endpoints attempted across all fan-outs.",
		}),
		PushFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_fanout_fulfilled_total",
			Help: "Total push endpoints that accepted a delivery.",
		}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationLatency,
		m.DispatchMode,
		m.PushEndpoints,
		m.PushFulfilled,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so worker.go stays import-free.
func (m *Metrics) WorkerHooks() (
	onSent func(domain.Channel, time.Duration),
	onFailed func(domain.Channel),
) {
	onSent = func(ch domain.Channel, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(string(ch)).Inc()
		m.NotificationLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
	}
	onFailed = func(ch domain.Channel) {
		m.NotificationsFailed.WithLabelValues(string(ch)).Inc()
	}
	return
}

// DispatchHooks returns the callbacks the dispatch engine reports through.
func (m *Metrics) DispatchHooks() (
	onQueued func(domain.Channel),
	onDirect func(domain.Channel, time.Duration, error),
) {
	onQueued = func(ch domain.Channel) {
		m.DispatchMode.WithLabelValues(string(ch), "queued").Inc()
	}
	onDirect = func(ch domain.Channel, latency time.Duration, err error) {
		m.DispatchMode.WithLabelValues(string(ch), "direct").Inc()
		if err == nil {
			m.NotificationsSent.WithLabelValues(string(ch)).Inc()
			m.NotificationLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
		}
	}
	return
}

// ObserveFanout records one push fan-out's aggregate counts.
func (m *Metrics) ObserveFanout(fulfilled, total int) {
	m.PushEndpoints.Add(float64(total))
	m.PushFulfilled.Add(float64(fulfilled))
}
