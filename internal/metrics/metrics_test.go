package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskFinishedCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.TaskFinished("generate", "success")
	m.TaskFinished("generate", "success")
	m.TaskFinished("update", "partial")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.tasksTotal.WithLabelValues("generate", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.tasksTotal.WithLabelValues("update", "partial")))
}

func TestRecoveryAndRepairCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecoveryAttempted("publish")
	m.ArgumentRepaired()
	m.ArgumentRepaired()
	m.SessionRounds(4)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.recoveryAttempts.WithLabelValues("publish")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.argumentRepairs))

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["docsmith_engine_rounds_per_session"])
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TaskFinished("generate", "success")
		m.RecoveryAttempted("retrieval")
		m.ArgumentRepaired()
		m.SessionRounds(3)
	})
}
