package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the engine's metrics sink. The zero value must not be used;
// construct with NewMetrics or NoOpMetrics.
type Metrics struct {
	enabled bool

	activations    *prometheus.CounterVec
	modelRequests  *prometheus.CounterVec
	modelDuration  *prometheus.HistogramVec
	toolExecutions *prometheus.CounterVec
	errors         *prometheus.CounterVec
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		enabled: true,
		activations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callwise",
			Name:      "activations_total",
			Help:      "Callsystem activations by package id and outcome.",
		}, []string{"callsystem", "status"}),
		modelRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callwise",
			Name:      "model_requests_total",
			Help:      "Model provider requests by provider, model and outcome.",
		}, []string{"provider", "model", "status"}),
		modelDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "callwise",
			Name:      "model_request_duration_seconds",
			Help:      "Model provider request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "model"}),
		toolExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callwise",
			Name:      "tool_executions_total",
			Help:      "Integration executions by tool name and outcome.",
		}, []string{"tool", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callwise",
			Name:      "errors_total",
			Help:      "Errors by component and kind.",
		}, []string{"component", "kind"}),
	}
}

// NoOpMetrics returns a sink that records nothing.
func NoOpMetrics() *Metrics {
	return &Metrics{}
}

// RecordActivation counts one callsystem activation outcome.
func (m *Metrics) RecordActivation(callsystem, status string) {
	if !m.enabled {
		return
	}
	m.activations.WithLabelValues(callsystem, status).Inc()
}

// RecordModelCall counts one provider request and observes its latency.
func (m *Metrics) RecordModelCall(provider, model string, dur time.Duration, err error) {
	if !m.enabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.modelRequests.WithLabelValues(provider, model, status).Inc()
	m.modelDuration.WithLabelValues(provider, model).Observe(dur.Seconds())
}

// RecordToolExecution counts one integration execution outcome.
func (m *Metrics) RecordToolExecution(tool string, success bool) {
	if !m.enabled {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.toolExecutions.WithLabelValues(tool, status).Inc()
}

// RecordError counts one component error.
func (m *Metrics) RecordError(component, kind string) {
	if !m.enabled {
		return
	}
	m.errors.WithLabelValues(component, kind).Inc()
}
