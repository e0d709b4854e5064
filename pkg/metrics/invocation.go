package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storelink/storelink/pkg/invocation"
)

// invocationMetrics is the Prometheus implementation of invocation.Metrics.
type invocationMetrics struct {
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
}

// NewInvocationMetrics creates a Prometheus-backed invocation.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the invoker to use its built-in no-op implementation.
func NewInvocationMetrics() invocation.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &invocationMetrics{
		invocationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "storelink_invocations_total",
				Help: "Total number of operation invocations by operation and status",
			},
			[]string{"operation", "status"},
		),
		invocationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "storelink_invocation_duration_seconds",
				Help: "Duration of operation invocations in seconds",
				Buckets: []float64{
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "storelink_invocation_errors_total",
				Help: "Total number of failed invocations by operation",
			},
			[]string{"operation"},
		),
	}
}

func (m *invocationMetrics) ObserveInvocation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(operation).Inc()
	}
	m.invocationsTotal.WithLabelValues(operation, status).Inc()
	m.invocationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
