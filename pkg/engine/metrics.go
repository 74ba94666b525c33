package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors tracking compile and execution
// activity across an Engine's lifetime.
type Metrics struct {
	compilesTotal     *prometheus.CounterVec
	compileDuration   prometheus.Histogram
	executionsTotal   *prometheus.CounterVec
	executionDuration prometheus.Histogram
	executionErrors   *prometheus.CounterVec

	registry *prometheus.Registry
}

// MetricsConfig namespaces the collectors, mirroring the host
// application's prometheus wiring pattern.
type MetricsConfig struct {
	Namespace string
	Subsystem string
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Namespace: "glint", Subsystem: "engine"}
}

// NewMetrics creates and registers the engine's Prometheus collectors
// against a fresh registry.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config = DefaultMetricsConfig()
	}

	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		compilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "compiles_total",
			Help:      "Total number of compile attempts, by outcome.",
		}, []string{"outcome"}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "compile_duration_seconds",
			Help:      "Time spent compiling source into a CompiledProgram.",
			Buckets:   prometheus.DefBuckets,
		}),
		executionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "executions_total",
			Help:      "Total number of executions, by outcome.",
		}, []string{"outcome"}),
		executionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "execution_duration_seconds",
			Help:      "Time spent executing a compiled program to completion.",
			Buckets:   prometheus.DefBuckets,
		}),
		executionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "execution_errors_total",
			Help:      "Total number of runtime errors raised during execution, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.compilesTotal, m.compileDuration, m.executionsTotal, m.executionDuration, m.executionErrors)

	return m
}

// Registry exposes the underlying Prometheus registry so an embedder can
// serve it via promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCompile records one compile attempt's outcome and duration.
func (m *Metrics) ObserveCompile(ok bool, duration time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.compilesTotal.WithLabelValues(outcome).Inc()
	m.compileDuration.Observe(duration.Seconds())
}

// ObserveExecution records one execution's outcome and duration, plus
// the runtime error kind when the execution failed.
func (m *Metrics) ObserveExecution(ok bool, errKind string, duration time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.executionsTotal.WithLabelValues(outcome).Inc()
	m.executionDuration.Observe(duration.Seconds())
	if !ok {
		m.executionErrors.WithLabelValues(errKind).Inc()
	}
}
