package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestLifecycleMetricsCountsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)
	m.ObserveTransition("assigned", "available", "in_use")
	m.ObserveTransition("assigned", "available", "in_use")
	m.IncRejection("checkout", "")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "asset_status_transitions_total", "action", "assigned")
	require.NoError(t, err)
	require.Equal(t, float64(2), got)

	got, err = fetchCounterValue(mfs, "asset_workflow_rejections_total", "code", "unknown")
	require.NoError(t, err)
	require.Equal(t, float64(1), got)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var lifecycle *LifecycleMetrics
	lifecycle.ObserveTransition("a", "b", "c")
	lifecycle.IncRejection("a", "b")

	var outbox *OutboxMetrics
	outbox.IncPublished("x")
	outbox.IncFailed("x")
	outbox.IncDLQ("x", "y")

	NewOutboxMetrics(nil).IncPublished("x")
}

func TestOutboxMetricsCountsDLQ(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.IncDLQ("asset_lifecycle_changed", "max_attempts")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "outbox_dlq_total", "reason", "max_attempts")
	require.NoError(t, err)
	require.Equal(t, float64(1), got)
}
