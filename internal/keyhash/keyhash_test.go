package keyhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey_Stable(t *testing.T) {
	a := Key("sub", "user@example.com")
	b := Key("sub", "user@example.com")

	require.Equal(t, a, b)
	require.True(t, strings.HasPrefix(a, "sub."))
	require.Len(t, a, len("sub.")+16)
}

func TestKey_DistinctIdentities(t *testing.T) {
	seen := make(map[string]string)
	for _, id := range []string{"device-1", "device-2", "https://push.example/1", "", "ü ñ spaces"} {
		key := Key("sub", id)
		prev, dup := seen[key]
		require.False(t, dup, "collision between %q and %q", prev, id)
		seen[key] = id
		require.True(t, ValidPrefix(key), "key %q must be KV-safe", key)
	}
}

func TestKey_NoPrefix(t *testing.T) {
	key := Key("", "device-1")
	require.Len(t, key, 16)
	require.NotContains(t, key, ".")
}

func TestHash_Seed(t *testing.T) {
	require.Equal(t, Hash("device-1", 0), Hash("device-1", 0))
	require.NotEqual(t, Hash("device-1", 0), Hash("device-1", 42))
}

func TestValidPrefix(t *testing.T) {
	require.True(t, ValidPrefix(""))
	require.True(t, ValidPrefix("push.subs"))
	require.True(t, ValidPrefix("a-b_c/d=e"))
	require.False(t, ValidPrefix("has space"))
	require.False(t, ValidPrefix("star*"))
}

func BenchmarkKey(b *testing.B) {
	for b.Loop() {
		_ = Key("sub", "https://fcm.googleapis.com/fcm/send/abc123")
	}
}
