package metrics

import (
	"testing"

	"github.com/arloliu/pushsub/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")

	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
	require.Equal(t, "pushsub", p.namespace)
}

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "test")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestPrometheusCollector_RecordStateTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordStateTransition(types.StateLoading, types.StateNotSubscribed, 0.25)
	p.RecordStateTransition(types.StateNotSubscribed, types.StateUpdating, 3)
	p.RecordStateTransition(types.StateUpdating, types.StateSubscribed, 0.1)

	require.InDelta(t, 1, testutil.ToFloat64(p.transitions.WithLabelValues("loading", "not-subscribed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.transitions.WithLabelValues("updating", "subscribed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.currentState.WithLabelValues("subscribed")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(p.currentState.WithLabelValues("updating")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(p.currentState.WithLabelValues("not-subscribed")), 0)
	require.Equal(t, 3, testutil.CollectAndCount(p.stateDuration))
}

func TestPrometheusCollector_RecordPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordPublish("publish", true, 0.05)
	p.RecordPublish("publish", false, 0.5)
	p.RecordPublish("unpublish", true, 0.01)
	p.RecordPublish("publish", true, 0.02)

	require.InDelta(t, 2, testutil.ToFloat64(p.publishResults.WithLabelValues("publish", "true")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.publishResults.WithLabelValues("publish", "false")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.publishResults.WithLabelValues("unpublish", "true")), 0)
	require.Equal(t, 2, testutil.CollectAndCount(p.publishLatency))
}

func TestPrometheusCollector_RecordListenerPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordListenerPanic()
	p.RecordListenerPanic()

	require.InDelta(t, 2, testutil.ToFloat64(p.listenerPanics), 0)

	count, err := testutil.GatherAndCount(reg, "test_handler_listener_panics_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
