package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Gate("therapist", "allow")
	m.Gate("therapist", "allow")
	m.Transition("booking", "confirm")
	m.StoreError("appointment.update")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("therapist", "allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkflowTransitions.WithLabelValues("booking", "confirm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("appointment.update")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Gate("supa", "deny")
		m.Transition("approval", "approve")
		m.StoreError("x")
	})
}
