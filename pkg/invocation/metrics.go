package invocation

import "time"

// Metrics provides observability for invocation dispatch.
//
// Implementations are optional - if nil is provided to NewInvoker, a no-op
// implementation is used.
type Metrics interface {
	// ObserveInvocation records one dispatched invocation with its
	// duration and outcome.
	ObserveInvocation(operation string, duration time.Duration, err error)
}

// noopMetrics is the default no-op metrics implementation.
type noopMetrics struct{}

func (noopMetrics) ObserveInvocation(operation string, duration time.Duration, err error) {}
