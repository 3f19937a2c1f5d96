package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrPushSubscribe, ErrPushSubscribe))
		require.False(t, errors.Is(ErrPushSubscribe, ErrPushUnsubscribe))

		// Wrapped errors keep both identities
		wrapped := fmt.Errorf("%w: %w", ErrPushSubscribe, errors.New("AbortError"))
		require.True(t, errors.Is(wrapped, ErrPushSubscribe))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			// Handler errors
			ErrInvalidConfig,
			ErrHostRequired,
			ErrNoRegistration,
			ErrInvalidApplicationServerKey,
			// Host errors
			ErrRegistryUnavailable,
			ErrSubscriptionQuery,
			ErrPermissionRequest,
			ErrPushSubscribe,
			ErrPushUnsubscribe,
			// Publisher errors
			ErrPublishFailed,
			ErrUnpublishFailed,
			ErrPublisherConfig,
			ErrConnectivity,
			// Common errors
			ErrUnknownState,
			ErrUnknownPermission,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}

func TestIsRecordSyncError(t *testing.T) {
	t.Run("returns false for nil error", func(t *testing.T) {
		require.False(t, IsRecordSyncError(nil))
	})

	t.Run("returns true for wrapped publish failure", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", ErrPublishFailed, errors.New("503 service unavailable"))
		require.True(t, IsRecordSyncError(err))
	})

	t.Run("returns true for joined unpublish failure", func(t *testing.T) {
		require.True(t, IsRecordSyncError(errors.Join(ErrUnpublishFailed, ErrConnectivity)))
	})

	t.Run("returns false for host errors", func(t *testing.T) {
		require.False(t, IsRecordSyncError(ErrPushSubscribe))
		require.False(t, IsRecordSyncError(errors.New("some other error")))
	})
}
