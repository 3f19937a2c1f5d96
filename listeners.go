package pushsub

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listener receives every state the handler broadcasts.
//
// Listeners are called synchronously, one at a time, in registration order.
// A listener may call back into the handler (including AddListener,
// RemoveListener and the subscription operations); states produced by such
// calls are delivered after the current broadcast completes.
type Listener func(State)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

// listenerEntry is one registered listener.
type listenerEntry struct {
	id      ListenerID
	fn      Listener
	removed atomic.Bool
}

// delivery is one queued broadcast item. A non-nil welcome delivers the last
// broadcast state to a newly added listener and then registers it.
type delivery struct {
	state   State
	welcome *listenerEntry
}

// broadcaster serializes state delivery to listeners.
//
// Items are queued under mu and delivered without holding it by whichever
// goroutine finds the queue idle, so deliveries never overlap and a listener
// that triggers another transition cannot deadlock.
type broadcaster struct {
	mu        sync.Mutex
	listeners []*listenerEntry
	index     map[ListenerID]*listenerEntry
	nextID    ListenerID
	queue     []delivery
	draining  bool
	last      State

	invoke func(e *listenerEntry, state State)
}

func newBroadcaster(initial State, invoke func(e *listenerEntry, state State)) *broadcaster {
	return &broadcaster{
		index:  make(map[ListenerID]*listenerEntry),
		last:   initial,
		invoke: invoke,
	}
}

// enqueue queues a broadcast of state. Callers hold the handler lock so the
// queue order matches the transition order.
func (b *broadcaster) enqueue(state State) {
	b.mu.Lock()
	b.queue = append(b.queue, delivery{state: state})
	b.mu.Unlock()
}

// add queues a new listener and returns its id.
func (b *broadcaster) add(fn Listener) ListenerID {
	b.mu.Lock()
	b.nextID++
	e := &listenerEntry{id: b.nextID, fn: fn}
	b.index[e.id] = e
	b.queue = append(b.queue, delivery{welcome: e})
	b.mu.Unlock()

	return e.id
}

// remove unregisters a listener. Unknown ids are ignored.
func (b *broadcaster) remove(id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.index[id]
	if !ok {
		return false
	}

	e.removed.Store(true)
	delete(b.index, id)
	b.listeners = slices.DeleteFunc(b.listeners, func(l *listenerEntry) bool { return l == e })

	return true
}

// count returns the number of registered listeners, including pending ones.
func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.index)
}

// drain delivers queued items until the queue is empty. It returns
// immediately when another goroutine is already delivering.
func (b *broadcaster) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.queue) > 0 {
		d := b.queue[0]
		b.queue[0] = delivery{}
		b.queue = b.queue[1:]

		if d.welcome != nil {
			e, state := d.welcome, b.last
			b.mu.Unlock()

			if !e.removed.Load() {
				b.invoke(e, state)
			}

			b.mu.Lock()
			if !e.removed.Load() {
				b.listeners = append(b.listeners, e)
			}

			continue
		}

		b.last = d.state
		snapshot := slices.Clone(b.listeners)
		b.mu.Unlock()

		for _, e := range snapshot {
			if e.removed.Load() {
				continue
			}
			b.invoke(e, d.state)
		}

		b.mu.Lock()
	}

	b.queue = nil
	b.draining = false
	b.mu.Unlock()
}

// stateWatcher feeds a Watch channel.
type stateWatcher struct {
	ch       chan State
	listener ListenerID
	mu       sync.Mutex
	closed   bool
}

// trySend delivers state without blocking. A full buffer drops the state;
// the reader sees the next one.
func (w *stateWatcher) trySend(state State) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return true
	}

	select {
	case w.ch <- state:
		return true
	default:
		return false
	}
}

func (w *stateWatcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.ch)
}
