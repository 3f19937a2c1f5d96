package types

import "context"

// Hooks defines callbacks for Handler lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so a slow hook never delays state broadcasts. Hooks receive the context the
// handler was created with.
//
// Unlike status listeners, hooks are not ordered relative to each other and
// may observe transitions out of order under load. Use AddListener when the
// exact sequence matters.
//
// Example:
//
//	hooks := &pushsub.Hooks{
//	    OnError: func(ctx context.Context, err error) error {
//	        if types.IsRecordSyncError(err) {
//	            syncFailures.Inc()
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called after every accepted state transition.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnError is called for every failure the handler absorbs, including
	// record synchronization failures that do not change the state.
	OnError func(ctx context.Context, err error) error
}
