package types

import "context"

// Host exposes the capabilities of the environment a handler runs in.
//
// A host that returns a nil WorkerRegistry, a nil PermissionGate, or reports no
// push support is treated as not supporting push subscriptions at all.
type Host interface {
	// WorkerRegistry returns the background worker registry, or nil when the host has none.
	WorkerRegistry() WorkerRegistry

	// PushSupported reports whether the host exposes a push messaging capability.
	PushSupported() bool

	// PermissionGate returns the notification consent facility, or nil when the host has none.
	PermissionGate() PermissionGate
}

// WorkerRegistry resolves the background worker registration that receives push events.
type WorkerRegistry interface {
	// Ready blocks until a worker registration is active and returns it.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//
	// Returns:
	//   - Registration: The active registration
	//   - error: Registry failure or context cancellation
	Ready(ctx context.Context) (Registration, error)
}

// Registration is an active background worker registration.
type Registration interface {
	// Scope identifies the registration (for logging only).
	Scope() string

	// PushManager returns the push subscription manager bound to this registration.
	PushManager() PushManager
}

// SubscribeOptions are passed to PushManager.Subscribe.
type SubscribeOptions struct {
	// UserVisibleOnly promises that every push message results in a user visible notification.
	UserVisibleOnly bool

	// ApplicationServerKey is the push service public key, forwarded verbatim from configuration.
	// Empty means no key was configured.
	ApplicationServerKey string
}

// PushManager manages the push subscription of a registration.
type PushManager interface {
	// GetSubscription returns the current subscription, or (nil, nil) when there is none.
	GetSubscription(ctx context.Context) (Subscription, error)

	// Subscribe creates (or returns the existing) push subscription.
	Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error)
}

// Subscription is the opaque token a push service issues for one endpoint registration.
type Subscription interface {
	// Record returns the serializable form of the subscription.
	Record() SubscriptionRecord

	// Unsubscribe removes the subscription from the push service.
	Unsubscribe(ctx context.Context) error
}

// PermissionGate mediates user consent for notification delivery.
type PermissionGate interface {
	// Permission returns the current consent without prompting.
	Permission() Permission

	// RequestPermission prompts the user and blocks until they respond or ctx ends.
	RequestPermission(ctx context.Context) (Permission, error)
}
