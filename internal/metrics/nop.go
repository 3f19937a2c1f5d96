// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/pushsub/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	metrics := metrics.NewNop()
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithMetrics(metrics))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// HandlerMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State, _ /* duration */ float64) {
	// No-op
}

// RecordListenerPanic discards the listener panic metric.
func (n *NopMetrics) RecordListenerPanic() {
	// No-op
}

// PublisherMetrics implementation

// RecordPublish discards the publish attempt metric.
func (n *NopMetrics) RecordPublish(_ /* operation */ string, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}
