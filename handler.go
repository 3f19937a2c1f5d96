package pushsub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/pushsub/internal/hooks"
	"github.com/arloliu/pushsub/internal/logger"
	"github.com/arloliu/pushsub/internal/metrics"
	"github.com/arloliu/pushsub/publisher"
)

// Record synchronization operation names reported to MetricsCollector.RecordPublish.
const (
	opPublish   = "publish"
	opUnpublish = "unpublish"
)

// Handler manages the push subscription of one device.
//
// The handler owns a single state machine. It probes the host once at
// construction, then moves between states only through Subscribe,
// Unsubscribe, UnsubscribeSilently, Toggle and Refresh. Every accepted state
// change is broadcast to status listeners in order.
//
// All methods are safe for concurrent use. Entry points that start a flow
// claim the state with a compare-and-swap, so a second concurrent call sees
// StateUpdating and returns with a warning.
type Handler struct {
	cfg       Config
	host      Host
	publisher RecordPublisher
	hooks     Hooks
	metrics   MetricsCollector
	logger    Logger

	ctx context.Context //nolint:containedctx // hooks receive the construction context

	mu             sync.Mutex
	state          State
	lastTransition time.Time
	registration   Registration // written once

	bus           *broadcaster
	watchers      *xsync.Map[uint64, *stateWatcher]
	nextWatcherID atomic.Uint64

	probeDone chan struct{}
}

// NewHandler creates a Handler and starts the status probe.
//
// The handler starts in StateLoading. Listeners given with WithListener are
// registered first and observe StateLoading; the probe then runs on its own
// goroutine and settles the state. Use Done or WaitState to wait for it.
//
// Parameters:
//   - ctx: Context passed to hooks and used by the status probe
//   - host: Host environment capabilities (required)
//   - cfg: Configuration (required, defaults applied in place)
//   - opts: Optional publisher, logger, metrics, hooks and listeners
//
// Returns:
//   - *Handler: Running handler
//   - error: ErrInvalidConfig or ErrHostRequired
//
// Example:
//
//	cfg := pushsub.DefaultConfig()
//	cfg.ApplicationServerKey = vapidPublicKey
//	h, err := pushsub.NewHandler(ctx, host, &cfg,
//	    pushsub.WithPublisher(pub),
//	    pushsub.WithLogger(pushsub.NewSlogLogger(nil)),
//	)
//	if err != nil {
//	    return err
//	}
//	<-h.Done()
func NewHandler(ctx context.Context, host Host, cfg *Config, opts ...Option) (*Handler, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if host == nil {
		return nil, ErrHostRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := &handlerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	recordPublisher := options.publisher
	if recordPublisher == nil {
		recordPublisher = publisher.NewNop()
	}

	h := &Handler{
		cfg:            *cfg,
		host:           host,
		publisher:      recordPublisher,
		hooks:          hooks.Fill(options.hooks),
		metrics:        metricsCollector,
		logger:         loggerInstance,
		ctx:            ctx,
		state:          StateLoading,
		lastTransition: time.Now(),
		watchers:       xsync.NewMap[uint64, *stateWatcher](),
		probeDone:      make(chan struct{}),
	}
	h.bus = newBroadcaster(StateLoading, h.invokeListener)

	for _, l := range options.listeners {
		h.bus.add(l)
	}
	h.bus.drain()

	context.AfterFunc(ctx, h.closeWatchers)

	go h.run()

	return h, nil
}

// run performs the construction status probe.
func (h *Handler) run() {
	defer close(h.probeDone)

	state, err := h.probe(h.ctx)
	if err != nil {
		h.logger.Error("status probe failed", "error", err)
		h.reportError(err)
	}

	if !h.compareAndTransition(StateLoading, state) {
		h.logger.Debug("state changed before status probe finished",
			"state", h.State().String(),
			"probe", state.String(),
		)
	}
}

// Done returns a channel that is closed once the construction status probe has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.probeDone
}

// State returns the current state.
//
// Returns:
//   - State: Current handler state
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

// Registration returns the worker registration obtained by the status probe,
// or nil when none was obtained yet.
func (h *Handler) Registration() Registration {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.registration
}

// GetStatus re-runs the status probe and returns its result.
//
// GetStatus is a pure query: the result is never broadcast and the handler
// state does not change. Use Refresh to adopt the probe result.
//
// Parameters:
//   - ctx: Context for the host calls
//
// Returns:
//   - State: Probe result (StateError when the probe failed)
func (h *Handler) GetStatus(ctx context.Context) State {
	state, err := h.probe(ctx)
	if err != nil {
		h.logger.Error("status probe failed", "error", err)
	}

	return state
}

// Subscribe asks for notification permission and creates a push subscription.
//
// Only allowed in StateNotSubscribed; from any other state it logs a warning
// and returns without prompting. The flow passes through StateUpdating and
// ends in StateSubscribed, StateNotSubscribed (prompt dismissed or record
// publish failed), StateDisabled (permission denied) or StateError.
//
// Subscribe blocks until the flow finishes. Failures are reported through
// logging, Hooks.OnError and the resulting state rather than returned.
//
// Parameters:
//   - ctx: Context for the host and publisher calls
func (h *Handler) Subscribe(ctx context.Context) {
	if !h.compareAndTransition(StateNotSubscribed, StateUpdating) {
		h.logger.Warn("subscribe not allowed in current state", "state", h.State().String())
		return
	}

	gate := h.host.PermissionGate()
	if gate == nil {
		h.handleFailure("cannot subscribe without permission gate", ErrPermissionRequest)
		return
	}

	promptCtx, cancel := withTimeout(ctx, h.cfg.PromptTimeout)
	permission, err := gate.RequestPermission(promptCtx)
	cancel()
	if err != nil {
		h.handleFailure("permission request failed", fmt.Errorf("%w: %w", ErrPermissionRequest, err))
		return
	}

	switch permission {
	case PermissionGranted:
	case PermissionDenied:
		h.logger.Info("notification permission denied")
		h.transition(StateDisabled)

		return
	default:
		h.logger.Info("permission prompt dismissed without a decision")
		h.transition(StateNotSubscribed)

		return
	}

	reg := h.Registration()
	if reg == nil {
		h.handleFailure("cannot subscribe without worker registration", ErrNoRegistration)
		return
	}

	opCtx, cancel := withTimeout(ctx, h.cfg.OperationTimeout)
	sub, err := reg.PushManager().Subscribe(opCtx, SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: h.cfg.ApplicationServerKey,
	})
	cancel()
	if err != nil {
		h.handleFailure("failed to subscribe to push service", fmt.Errorf("%w: %w", ErrPushSubscribe, err))
		return
	}
	if sub == nil {
		h.handleFailure("failed to subscribe to push service",
			fmt.Errorf("%w: push manager returned no subscription", ErrPushSubscribe))

		return
	}

	h.updateSubscription(ctx, sub)
}

// Unsubscribe removes the push subscription and unpublishes its record.
//
// Only allowed in StateSubscribed; from any other state it logs a warning and
// returns without touching the worker registration. The flow passes through
// StateUpdating and ends in StateNotSubscribed, even when the record owner
// rejects the unpublish, or StateError when the host fails.
//
// Parameters:
//   - ctx: Context for the host and publisher calls
func (h *Handler) Unsubscribe(ctx context.Context) {
	if !h.compareAndTransition(StateSubscribed, StateUpdating) {
		h.logger.Warn("unsubscribe not allowed in current state", "state", h.State().String())
		return
	}

	h.unsubscribe(ctx)
}

// UnsubscribeSilently tears down the push subscription from any state without
// broadcasting StateUpdating first.
//
// It is the corrective path used after a failed record publish, exported for
// callers that need to force the device back to StateNotSubscribed. When no
// worker registration was ever obtained there is nothing to tear down and the
// call only logs a warning.
//
// Parameters:
//   - ctx: Context for the host and publisher calls
func (h *Handler) UnsubscribeSilently(ctx context.Context) {
	if h.Registration() == nil {
		h.logger.Warn("silent unsubscribe without worker registration", "state", h.State().String())
		return
	}

	h.unsubscribe(ctx)
}

// Toggle calls Unsubscribe in StateSubscribed and Subscribe in
// StateNotSubscribed. Any other state logs a warning.
func (h *Handler) Toggle(ctx context.Context) {
	switch state := h.State(); state {
	case StateSubscribed:
		h.Unsubscribe(ctx)
	case StateNotSubscribed:
		h.Subscribe(ctx)
	default:
		h.logger.Warn("toggle not allowed in current state", "state", state.String())
	}
}

// Refresh re-runs the status probe and adopts its result.
//
// Use Refresh after the permission may have changed outside the handler, for
// example to leave StateDisabled once the user re-enabled notifications in
// the host settings. Refresh only runs from a settled state other than
// StateNotSupported. If another flow changed the state while the probe was
// running, the probe result is discarded.
//
// Parameters:
//   - ctx: Context for the host calls
//
// Returns:
//   - State: The state after the refresh
func (h *Handler) Refresh(ctx context.Context) State {
	from := h.State()
	if !from.IsSettled() || from == StateNotSupported {
		h.logger.Warn("refresh not allowed in current state", "state", from.String())
		return from
	}

	state, err := h.probe(ctx)
	if err != nil {
		h.logger.Error("status probe failed", "error", err)
		h.reportError(err)
	}

	if state == from {
		return from
	}

	if !isValidTransition(from, state) {
		h.logger.Warn("refresh result not reachable from current state",
			"state", from.String(),
			"probe", state.String(),
		)

		return h.State()
	}

	if !h.compareAndTransition(from, state) {
		h.logger.Debug("refresh result discarded",
			"state", h.State().String(),
			"probe", state.String(),
		)
	}

	return h.State()
}

// AddListener registers a status listener.
//
// The listener first receives the current state once, then every following
// state change in order until it is removed. When another goroutine is
// delivering a broadcast at the time of the call, the current state is
// delivered by that goroutine right after the broadcast in flight.
//
// Listeners must not block; a panicking listener is logged and skipped.
//
// Parameters:
//   - l: Listener callback
//
// Returns:
//   - ListenerID: Handle for RemoveListener (0 for a nil listener)
func (h *Handler) AddListener(l Listener) ListenerID {
	if l == nil {
		return 0
	}

	id := h.bus.add(l)
	h.bus.drain()

	return id
}

// RemoveListener unregisters a status listener. Unknown ids are ignored.
//
// Safe to call from within a listener; the removed listener is not invoked
// again, including for the remainder of the broadcast in progress.
func (h *Handler) RemoveListener(id ListenerID) {
	h.bus.remove(id)
}

// Watch returns a channel that receives the current state followed by every
// state change.
//
// The channel is buffered (Config.WatchBuffer). A reader that falls behind
// misses intermediate states but always sees later ones. The channel is
// closed by the returned cancel function or when the handler context ends.
//
// Returns:
//   - <-chan State: State stream
//   - func(): Cancel function, safe to call more than once
//
// Example:
//
//	states, cancel := h.Watch()
//	defer cancel()
//	for s := range states {
//	    render(s)
//	}
func (h *Handler) Watch() (<-chan State, func()) {
	id := h.nextWatcherID.Add(1)
	w := &stateWatcher{ch: make(chan State, h.cfg.WatchBuffer)}

	w.listener = h.AddListener(func(state State) {
		if !w.trySend(state) {
			h.logger.Debug("watcher buffer full, dropping state", "state", state.String())
		}
	})
	h.watchers.Store(id, w)

	cancel := func() { h.removeWatcher(id) }

	// The context may have ended before the watcher was stored.
	if h.ctx.Err() != nil {
		cancel()
	}

	return w.ch, cancel
}

// WaitState waits for the handler to reach the expected state.
//
// Parameters:
//   - expectedState: State to wait for
//   - timeout: Maximum time to wait
//
// Returns:
//   - <-chan error: Receives nil when the state is reached, context.DeadlineExceeded
//     on timeout, or the handler context error when it ends first
//
// Example:
//
//	if err := <-h.WaitState(pushsub.StateSubscribed, 5*time.Second); err != nil {
//	    return err
//	}
func (h *Handler) WaitState(expectedState State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1) // Buffered to prevent goroutine leak

	states, cancel := h.Watch()

	go func() {
		defer close(ch)
		defer cancel()

		if h.State() == expectedState {
			ch <- nil
			return
		}

		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case state, ok := <-states:
				if !ok {
					ch <- h.ctx.Err()
					return
				}
				if state == expectedState || h.State() == expectedState {
					ch <- nil
					return
				}
			case <-timeoutTimer.C:
				if h.State() == expectedState {
					ch <- nil
					return
				}
				ch <- context.DeadlineExceeded

				return
			}
		}
	}()

	return ch
}

// unsubscribe is the shared teardown flow of Unsubscribe and UnsubscribeSilently.
func (h *Handler) unsubscribe(ctx context.Context) {
	reg := h.Registration()
	if reg == nil {
		h.handleFailure("cannot unsubscribe without worker registration", ErrNoRegistration)
		return
	}

	pm := reg.PushManager()

	opCtx, cancel := withTimeout(ctx, h.cfg.OperationTimeout)
	sub, err := pm.GetSubscription(opCtx)
	cancel()
	if err != nil {
		h.handleFailure("failed to query push subscription", fmt.Errorf("%w: %w", ErrSubscriptionQuery, err))
		return
	}

	if sub != nil {
		opCtx, cancel := withTimeout(ctx, h.cfg.OperationTimeout)
		err := sub.Unsubscribe(opCtx)
		cancel()
		if err != nil {
			h.handleFailure("failed to unsubscribe from push service", fmt.Errorf("%w: %w", ErrPushUnsubscribe, err))
			return
		}
	}

	h.updateSubscription(ctx, nil)
}

// updateSubscription synchronizes the record owner with the local subscription.
//
// A nil subscription unpublishes the record; its failure is logged and the
// handler still lands on StateNotSubscribed. A new subscription is published;
// on failure the push subscription is torn down again so the device never
// believes it is subscribed while the record owner does not.
func (h *Handler) updateSubscription(ctx context.Context, sub Subscription) {
	if sub == nil {
		err := h.syncRecord(ctx, opUnpublish, h.publisher.Unpublish)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrUnpublishFailed, err)
			h.logger.Error("failed to unpublish subscription record", "error", err)
			h.reportError(err)
		}

		h.transition(StateNotSubscribed)

		return
	}

	record := sub.Record()
	err := h.syncRecord(ctx, opPublish, func(ctx context.Context) error {
		return h.publisher.Publish(ctx, record)
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPublishFailed, err)
		h.logger.Error("failed to publish subscription record",
			"endpoint", record.Endpoint,
			"error", err,
		)
		h.reportError(err)

		// The teardown must run even when the caller's context ended.
		h.unsubscribe(context.WithoutCancel(ctx))

		return
	}

	h.transition(StateSubscribed)
}

// syncRecord runs one publisher call under PublishTimeout and records its metrics.
// A panicking publisher is reported as a failed call.
func (h *Handler) syncRecord(ctx context.Context, op string, fn func(context.Context) error) (err error) {
	ctx, cancel := withTimeout(ctx, h.cfg.PublishTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
		h.metrics.RecordPublish(op, err == nil, time.Since(start).Seconds())
	}()

	return fn(ctx)
}

// handleFailure logs err, reports it and moves to StateError.
func (h *Handler) handleFailure(msg string, err error) {
	h.logger.Error(msg, "error", err)
	h.reportError(err)
	h.transition(StateError)
}

// reportError passes err to Hooks.OnError in the background.
func (h *Handler) reportError(err error) {
	go func() {
		if hookErr := h.hooks.OnError(h.ctx, err); hookErr != nil {
			h.logger.Error("error hook error", "error", hookErr)
		}
	}()
}

// transition moves to a new state unconditionally and delivers the broadcast.
func (h *Handler) transition(to State) {
	h.mu.Lock()
	h.transitionLocked(h.state, to)
	h.mu.Unlock()

	h.bus.drain()
}

// compareAndTransition moves from one state to another only if the handler is
// still in from. It reports whether the transition happened.
func (h *Handler) compareAndTransition(from, to State) bool {
	h.mu.Lock()
	if h.state != from {
		h.mu.Unlock()
		return false
	}
	ok := h.transitionLocked(from, to)
	h.mu.Unlock()

	h.bus.drain()

	return ok
}

// transitionLocked validates and applies a transition. Callers hold h.mu, so
// broadcasts are queued in transition order.
func (h *Handler) transitionLocked(from, to State) bool {
	if !isValidTransition(from, to) {
		h.logger.Error("invalid state transition attempted",
			"from", from.String(),
			"to", to.String(),
		)

		return false
	}

	now := time.Now()
	duration := now.Sub(h.lastTransition).Seconds()
	h.state = to
	h.lastTransition = now

	h.logger.Info("state transition",
		"from", from.String(),
		"to", to.String(),
	)

	// Record metrics (always non-nil, defaults to nopMetrics)
	h.metrics.RecordStateTransition(from, to, duration)

	// Run hook in background to avoid blocking the state machine
	go func() {
		if err := h.hooks.OnStateChanged(h.ctx, from, to); err != nil {
			h.logger.Error("state change hook error", "from", from.String(), "to", to.String(), "error", err)
		}
	}()

	h.bus.enqueue(to)

	return true
}

// validTransitions lists the states reachable from each state.
var validTransitions = map[State][]State{
	StateLoading:       {StateNotSupported, StateDisabled, StateNotSubscribed, StateSubscribed, StateError},
	StateUpdating:      {StateDisabled, StateNotSubscribed, StateSubscribed, StateError},
	StateNotSubscribed: {StateUpdating, StateNotSubscribed, StateSubscribed, StateDisabled, StateError},
	StateSubscribed:    {StateUpdating, StateNotSubscribed, StateDisabled, StateError},
	StateDisabled:      {StateNotSubscribed, StateSubscribed, StateError},
	StateError:         {StateNotSubscribed, StateSubscribed, StateDisabled, StateError},
	StateNotSupported:  {}, // Terminal for the session
}

// isValidTransition validates that a state transition is allowed.
//
// Returns:
//   - bool: true if transition is valid, false otherwise
func isValidTransition(from, to State) bool {
	allowedStates, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return true
		}
	}

	return false
}

// invokeListener calls one listener, isolating panics.
func (h *Handler) invokeListener(e *listenerEntry, state State) {
	defer func() {
		if r := recover(); r != nil {
			h.metrics.RecordListenerPanic()
			h.logger.Error("status listener panicked",
				"listener", uint64(e.id),
				"state", state.String(),
				"panic", r,
			)
		}
	}()

	e.fn(state)
}

// removeWatcher stops and closes one Watch channel.
func (h *Handler) removeWatcher(id uint64) {
	if w, ok := h.watchers.LoadAndDelete(id); ok {
		h.bus.remove(w.listener)
		w.close()
	}
}

// closeWatchers closes every Watch channel once the handler context ends.
func (h *Handler) closeWatchers() {
	h.watchers.Range(func(id uint64, _ *stateWatcher) bool {
		h.removeWatcher(id)
		return true
	})
}

// withTimeout bounds ctx by d. A non-positive d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
