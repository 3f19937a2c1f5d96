package testing

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/pushsub/types"
)

// StateRecorder captures every state delivered to a status listener.
//
// Example:
//
//	rec := pushsubtest.NewStateRecorder()
//	h, _ := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithListener(rec.Listener))
//	rec.WaitFor(t, 2*time.Second, types.StateLoading, types.StateNotSubscribed)
type StateRecorder struct {
	mu     sync.Mutex
	states []types.State
}

// NewStateRecorder creates an empty recorder.
func NewStateRecorder() *StateRecorder {
	return &StateRecorder{}
}

// Listener records state. Its signature matches pushsub.Listener.
func (r *StateRecorder) Listener(state types.State) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
}

// States returns a copy of the recorded states in delivery order.
func (r *StateRecorder) States() []types.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.states)
}

// Last returns the most recent state and false when nothing was recorded yet.
func (r *StateRecorder) Last() (types.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.states) == 0 {
		return 0, false
	}

	return r.states[len(r.states)-1], true
}

// Reset discards everything recorded so far.
func (r *StateRecorder) Reset() {
	r.mu.Lock()
	r.states = nil
	r.mu.Unlock()
}

// WaitFor fails the test unless the recorded sequence equals want within timeout.
func (r *StateRecorder) WaitFor(t testing.TB, timeout time.Duration, want ...types.State) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		got := r.States()
		if slices.Equal(got, want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("recorded states %v, want %v", got, want)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
