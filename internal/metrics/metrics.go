// Package metrics exposes Prometheus instrumentation for the documentation
// pipeline. All methods are nil-receiver safe so components can run without
// instrumentation in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	tasksTotal       *prometheus.CounterVec
	recoveryAttempts *prometheus.CounterVec
	argumentRepairs  prometheus.Counter
	engineRounds     prometheus.Histogram
}

// New registers pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_tasks_total",
			Help: "Documentation tasks by kind (generate, update) and outcome (success, partial, failed).",
		}, []string{"kind", "outcome"}),
		recoveryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsmith_recovery_attempts_total",
			Help: "Recovery sessions run after a failed required-action gate, by phase.",
		}, []string{"phase"}),
		argumentRepairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "docsmith_argument_repairs_total",
			Help: "Placeholder arguments overwritten with discovered values before publish.",
		}),
		engineRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docsmith_engine_rounds_per_session",
			Help:    "Engine round-trips consumed per reasoning session.",
			Buckets: prometheus.LinearBuckets(1, 1, 16),
		}),
	}
}

// TaskFinished records the outcome of one pipeline run.
func (m *Metrics) TaskFinished(kind, outcome string) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(kind, outcome).Inc()
}

// RecoveryAttempted records one gate-triggered recovery session.
func (m *Metrics) RecoveryAttempted(phase string) {
	if m == nil {
		return
	}
	m.recoveryAttempts.WithLabelValues(phase).Inc()
}

// ArgumentRepaired records one placeholder argument overwrite.
func (m *Metrics) ArgumentRepaired() {
	if m == nil {
		return
	}
	m.argumentRepairs.Inc()
}

// SessionRounds records how many rounds a reasoning session consumed.
func (m *Metrics) SessionRounds(rounds int) {
	if m == nil {
		return
	}
	m.engineRounds.Observe(float64(rounds))
}
