package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called from any goroutine that drives the handler and must be thread-safe.
type MetricsCollector interface {
	HandlerMetrics
	PublisherMetrics
}

// HandlerMetrics defines metrics for the subscription state machine.
type HandlerMetrics interface {
	// RecordStateTransition records a state transition event.
	//
	// Parameters:
	//   - from: State being left
	//   - to: State being entered
	//   - duration: Seconds spent in the state being left
	RecordStateTransition(from, to State, duration float64)

	// RecordListenerPanic records a status listener that panicked during delivery.
	RecordListenerPanic()
}

// PublisherMetrics defines metrics for record synchronization.
type PublisherMetrics interface {
	// RecordPublish records one publish or unpublish attempt.
	//
	// Parameters:
	//   - operation: "publish" or "unpublish"
	//   - success: true if the record owner accepted the change
	//   - duration: Time taken in seconds
	RecordPublish(operation string, success bool, duration float64)
}
