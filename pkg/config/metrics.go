package config

import (
	"github.com/storelink/storelink/pkg/invocation"
	"github.com/storelink/storelink/pkg/metrics"
)

// MetricsResult contains the metrics components created from configuration.
type MetricsResult struct {
	// Enabled reports whether the Prometheus registry was initialized
	Enabled bool

	// InvocationMetrics is the collector for the invoker (nil when
	// disabled, which makes the invoker fall back to its no-op
	// implementation)
	InvocationMetrics invocation.Metrics

	// HTTPMetrics is the collector for the API server (nil when
	// disabled; its methods are nil-safe)
	HTTPMetrics *metrics.HTTPMetrics
}

// InitializeMetrics creates and initializes metrics components based on
// configuration.
//
// If metrics are enabled:
//   - Initializes the global Prometheus registry
//   - Creates Prometheus-backed metrics instances for the invoker
//
// If metrics are disabled, collectors are nil and components use their
// built-in no-op implementations with zero overhead.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Enabled:           true,
		InvocationMetrics: metrics.NewInvocationMetrics(),
		HTTPMetrics:       metrics.NewHTTPMetrics(),
	}
}
