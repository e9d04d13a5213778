package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
	"github.com/notifyhub/ms-notification-kafka/internal/service"
	"github.com/notifyhub/ms-notification-kafka/internal/stream"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	DispatchesQueued *prometheus.CounterVec
	DispatchesFailed *prometheus.CounterVec
	PublishLatency   *prometheus.HistogramVec
	StreamListeners  prometheus.Gauge
	StreamDropped    prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchesQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatches_queued_total",
			Help: "Total number of messages accepted by the broker.",
		}, []string{"destination"}),

		DispatchesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatches_failed_total",
			Help: "Total number of failed publish attempts by failure reason.",
		}, []string{"destination", "reason"}),

		PublishLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_publish_seconds",
			Help:    "Latency of a single producer publish call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"destination"}),

		StreamListeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stream_listeners",
			Help: "Current number of attached server-push listeners.",
		}),

		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_events_dropped_total",
			Help: "Events dropped because a listener buffer was full.",
		}),
	}

	reg.MustRegister(
		m.DispatchesQueued,
		m.DispatchesFailed,
		m.PublishLatency,
		m.StreamListeners,
		m.StreamDropped,
	)

	return m
}

// GatewayHooks returns the callbacks expected by service.Hooks.
// Centralises the prometheus observation calls so the service stays import-free.
func (m *Metrics) GatewayHooks() service.Hooks {
	return service.Hooks{
		OnQueued: func(d domain.Destination, latency time.Duration) {
			m.DispatchesQueued.WithLabelValues(string(d)).Inc()
			m.PublishLatency.WithLabelValues(string(d)).Observe(latency.Seconds())
		},
		OnFailed: func(d domain.Destination, reason string) {
			m.DispatchesFailed.WithLabelValues(string(d), reason).Inc()
		},
	}
}

// StreamHooks returns the callbacks expected by stream.Hooks.
func (m *Metrics) StreamHooks() stream.Hooks {
	return stream.Hooks{
		OnChange: func(count int) { m.StreamListeners.Set(float64(count)) },
		OnDrop:   func() { m.StreamDropped.Inc() },
	}
}
