package types

import "errors"

// Sentinel errors for the pushsub library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Components wrap host and backend errors with the matching sentinel using
// fmt.Errorf("%w: %w", ErrX, err) so callers can classify failures.
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Handler, Host, Publisher, etc.)
//   - Use consistent messages across similar error types

// Handler errors - Public API errors returned by the Handler component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrHostRequired is returned when the host environment is nil.
	ErrHostRequired = errors.New("host environment is required")

	// ErrNoRegistration is reported when an operation needs the worker registration before the probe stored one.
	ErrNoRegistration = errors.New("worker registration not available")

	// ErrInvalidApplicationServerKey is returned when the application server key cannot be decoded.
	ErrInvalidApplicationServerKey = errors.New("invalid application server key")
)

// Host errors - Failures raised by the worker registry, permission gate or push capability.
var (
	// ErrRegistryUnavailable wraps failures resolving the worker registration.
	ErrRegistryUnavailable = errors.New("worker registry unavailable")

	// ErrSubscriptionQuery wraps failures reading the current push subscription.
	ErrSubscriptionQuery = errors.New("push subscription query failed")

	// ErrPermissionRequest wraps failures of the permission prompt.
	ErrPermissionRequest = errors.New("permission request failed")

	// ErrPushSubscribe wraps failures creating a push subscription.
	ErrPushSubscribe = errors.New("push subscribe failed")

	// ErrPushUnsubscribe wraps failures removing a push subscription.
	ErrPushUnsubscribe = errors.New("push unsubscribe failed")
)

// Publisher errors - Record synchronization failures.
var (
	// ErrPublishFailed wraps failures recording a subscription with the owner of record.
	ErrPublishFailed = errors.New("failed to publish subscription record")

	// ErrUnpublishFailed wraps failures removing a subscription record.
	ErrUnpublishFailed = errors.New("failed to unpublish subscription record")

	// ErrPublisherConfig is returned when a record publisher is misconfigured.
	ErrPublisherConfig = errors.New("invalid publisher configuration")

	// ErrConnectivity indicates a transport level failure talking to the record owner.
	// Used to distinguish network failures from rejections by the backend.
	ErrConnectivity = errors.New("connectivity issue")
)

// Common errors - Shared errors used across multiple components.
var (
	// ErrUnknownState is returned when parsing an unrecognized state name.
	ErrUnknownState = errors.New("unknown subscription state")

	// ErrUnknownPermission is returned when parsing an unrecognized permission name.
	ErrUnknownPermission = errors.New("unknown permission")
)

// IsRecordSyncError reports whether err came from synchronizing with the owner of record.
//
// Record synchronization errors never move the handler to the error state; they are
// reported through Hooks.OnError only.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if err wraps ErrPublishFailed or ErrUnpublishFailed
func IsRecordSyncError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrPublishFailed) || errors.Is(err, ErrUnpublishFailed)
}
