package pushsub

import "github.com/arloliu/pushsub/types"

// Sentinel errors re-exported from the types package.
//
// Operations never return these; they appear wrapped in log fields and in the
// errors passed to Hooks.OnError, where errors.Is classifies them.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrHostRequired is returned when NewHandler receives a nil host.
	ErrHostRequired = types.ErrHostRequired

	// ErrNoRegistration is reported when an operation needs the worker registration before it was obtained.
	ErrNoRegistration = types.ErrNoRegistration

	// ErrInvalidApplicationServerKey is returned when the application server key cannot be decoded.
	ErrInvalidApplicationServerKey = types.ErrInvalidApplicationServerKey

	// ErrRegistryUnavailable wraps worker registry failures.
	ErrRegistryUnavailable = types.ErrRegistryUnavailable

	// ErrSubscriptionQuery wraps failures reading the current push subscription.
	ErrSubscriptionQuery = types.ErrSubscriptionQuery

	// ErrPermissionRequest wraps permission prompt failures.
	ErrPermissionRequest = types.ErrPermissionRequest

	// ErrPushSubscribe wraps push subscribe failures.
	ErrPushSubscribe = types.ErrPushSubscribe

	// ErrPushUnsubscribe wraps push unsubscribe failures.
	ErrPushUnsubscribe = types.ErrPushUnsubscribe

	// ErrPublishFailed wraps record publish failures.
	ErrPublishFailed = types.ErrPublishFailed

	// ErrUnpublishFailed wraps record unpublish failures.
	ErrUnpublishFailed = types.ErrUnpublishFailed

	// ErrConnectivity marks transport failures talking to the owner of record.
	ErrConnectivity = types.ErrConnectivity

	// ErrPublisherConfig is returned when a record publisher is misconfigured.
	ErrPublisherConfig = types.ErrPublisherConfig

	// ErrUnknownState is returned when parsing an unrecognized state name.
	ErrUnknownState = types.ErrUnknownState

	// ErrUnknownPermission is returned when parsing an unrecognized permission name.
	ErrUnknownPermission = types.ErrUnknownPermission
)

// IsRecordSyncError reports whether err came from synchronizing with the owner of record.
func IsRecordSyncError(err error) bool {
	return types.IsRecordSyncError(err)
}
