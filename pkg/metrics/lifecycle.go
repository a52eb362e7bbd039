package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics counts asset status transitions and rejected workflow operations.
type LifecycleMetrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewLifecycleMetrics registers the workflow metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_status_transitions_total",
		Help: "Committed asset status transitions by workflow action.",
	}, []string{"action", "from", "to"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_workflow_rejections_total",
		Help: "Workflow operations rejected before commit, by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(transitions, rejections)
	return &LifecycleMetrics{
		transitions: transitions,
		rejections:  rejections,
	}
}

// ObserveTransition records a committed status change.
func (m *LifecycleMetrics) ObserveTransition(action, from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncRejection records an operation that failed with a typed error code.
func (m *LifecycleMetrics) IncRejection(operation, code string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
