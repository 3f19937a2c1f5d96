package pushsub

import (
	"context"
	"fmt"
)

// probe determines the current state from the host without changing the
// push subscription.
//
// The only side effect is storing the worker registration the first time
// one is obtained. A non-nil error always comes with StateError.
func (h *Handler) probe(ctx context.Context) (State, error) {
	registry := h.host.WorkerRegistry()
	gate := h.host.PermissionGate()
	if registry == nil || gate == nil || !h.host.PushSupported() {
		h.logger.Debug("push subscriptions not supported by host",
			"workerRegistry", registry != nil,
			"permissionGate", gate != nil,
		)

		return StateNotSupported, nil
	}

	if gate.Permission() == PermissionDenied {
		return StateDisabled, nil
	}

	reg, err := h.ensureRegistration(ctx, registry)
	if err != nil {
		return StateError, err
	}

	opCtx, cancel := withTimeout(ctx, h.cfg.OperationTimeout)
	defer cancel()

	sub, err := reg.PushManager().GetSubscription(opCtx)
	if err != nil {
		return StateError, fmt.Errorf("%w: %w", ErrSubscriptionQuery, err)
	}
	if sub == nil {
		return StateNotSubscribed, nil
	}

	return StateSubscribed, nil
}

// ensureRegistration returns the stored worker registration, waiting for the
// registry when none was stored yet. The first registration obtained is kept
// for the lifetime of the handler.
func (h *Handler) ensureRegistration(ctx context.Context, registry WorkerRegistry) (Registration, error) {
	if reg := h.Registration(); reg != nil {
		return reg, nil
	}

	readyCtx, cancel := withTimeout(ctx, h.cfg.OperationTimeout)
	defer cancel()

	reg, err := registry.Ready(readyCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registry returned no registration", ErrRegistryUnavailable)
	}

	h.mu.Lock()
	if h.registration == nil {
		h.registration = reg
		h.logger.Debug("worker registration ready", "scope", reg.Scope())
	}
	reg = h.registration
	h.mu.Unlock()

	return reg, nil
}
