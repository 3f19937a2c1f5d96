// Package testing provides test utilities for the pushsub library.
//
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream for the NATS record publishers
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - Responder: Canned replies for request/reply publishers
//   - StateRecorder: Captures the states a handler broadcasts to a listener
//   - NewTestLogger: types.Logger writing to t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    pushsubtest "github.com/arloliu/pushsub/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := pushsubtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
