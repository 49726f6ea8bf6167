// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the server's collectors.
type Metrics struct {
	GateDecisions       *prometheus.CounterVec
	WorkflowTransitions *prometheus.CounterVec
	StoreErrors         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "therapy_admin",
				Name:      "gate_decisions_total",
				Help:      "Authorization gate decisions by area and outcome.",
			},
			[]string{"area", "outcome"},
		),
		WorkflowTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "therapy_admin",
				Name:      "workflow_transitions_total",
				Help:      "Completed approval and booking transitions.",
			},
			[]string{"workflow", "transition"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "therapy_admin",
				Name:      "store_errors_total",
				Help:      "Store operations that returned an error.",
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.GateDecisions, m.WorkflowTransitions, m.StoreErrors)
	}
	return m
}

// Gate records one gate decision. Safe on a nil receiver.
func (m *Metrics) Gate(area, outcome string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(area, outcome).Inc()
}

// Transition records a completed workflow transition. Safe on a nil receiver.
func (m *Metrics) Transition(workflow, transition string) {
	if m == nil {
		return
	}
	m.WorkflowTransitions.WithLabelValues(workflow, transition).Inc()
}

// StoreError records a failed store operation. Safe on a nil receiver.
func (m *Metrics) StoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}
