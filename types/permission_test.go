package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionString(t *testing.T) {
	require.Equal(t, "default", PermissionDefault.String())
	require.Equal(t, "granted", PermissionGranted.String())
	require.Equal(t, "denied", PermissionDenied.String())
	require.Equal(t, "unknown", Permission(7).String())
}

func TestParsePermission(t *testing.T) {
	for _, p := range []Permission{PermissionDefault, PermissionGranted, PermissionDenied} {
		parsed, err := ParsePermission(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}

	_, err := ParsePermission("prompt")
	require.ErrorIs(t, err, ErrUnknownPermission)
}
