package metrics

import (
	"testing"

	"github.com/arloliu/pushsub/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_RecordStateTransition(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordStateTransition(types.StateLoading, types.StateNotSubscribed, 1.5)
		metrics.RecordStateTransition(0, 0, 0)
		metrics.RecordStateTransition(types.State(999), types.State(1000), -1.0)
	})
}

func TestNopMetrics_RecordPublish(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordPublish("publish", true, 0.02)
		metrics.RecordPublish("unpublish", false, 0)
		metrics.RecordPublish("", false, -1)
	})
}

func TestNopMetrics_RecordListenerPanic(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, metrics.RecordListenerPanic)
}

func TestNopMetrics_InterfaceCompliance(t *testing.T) {
	var _ types.MetricsCollector = NewNop()
	var _ types.HandlerMetrics = NewNop()
	var _ types.PublisherMetrics = NewNop()
}
