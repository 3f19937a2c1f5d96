package vapid

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pushsub/types"
)

func TestGenerateKeyPair_RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	require.NotContains(t, kp.PublicKey, "=")

	raw, err := DecodePublicKey(kp.PublicKey)
	require.NoError(t, err)
	require.Len(t, raw, PublicKeyLength)
	require.Equal(t, byte(0x04), raw[0])

	priv, err := DecodeBase64URL(kp.PrivateKey)
	require.NoError(t, err)
	require.Len(t, priv, 32)
}

func TestDecodePublicKey_PaddingAndAlphabet(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	raw, err := DecodePublicKey(kp.PublicKey)
	require.NoError(t, err)

	padded := base64.URLEncoding.EncodeToString(raw)
	std := base64.StdEncoding.EncodeToString(raw)

	for _, key := range []string{padded, std, "  " + kp.PublicKey + "\n"} {
		got, err := DecodePublicKey(key)
		require.NoError(t, err, "key %q", key)
		require.Equal(t, raw, got)
	}
}

func TestDecodePublicKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"not base64", "!!not-base64!!"},
		{"too short", base64.RawURLEncoding.EncodeToString([]byte{0x04, 1, 2, 3})},
		{"compressed prefix", base64.RawURLEncoding.EncodeToString(append([]byte{0x02}, make([]byte, 64)...))},
		{"not on curve", base64.RawURLEncoding.EncodeToString(append([]byte{0x04}, make([]byte, 64)...))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePublicKey(tt.key)
			require.ErrorIs(t, err, types.ErrInvalidApplicationServerKey)
			require.Error(t, ValidatePublicKey(tt.key))
		})
	}
}

func TestDecodeBase64URL(t *testing.T) {
	got, err := DecodeBase64URL("aGVsbG8")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	got, err = DecodeBase64URL("aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	_, err = DecodeBase64URL(strings.Repeat("*", 8))
	require.Error(t, err)
}
