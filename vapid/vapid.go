// Package vapid decodes and generates application server (VAPID) keys.
//
// Push services identify the application server that may send to a
// subscription by its public key: an uncompressed P-256 point, usually
// shipped to clients as unpadded base64url text.
package vapid

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/arloliu/pushsub/types"
)

// PublicKeyLength is the length of an uncompressed P-256 point.
const PublicKeyLength = 65

// KeyPair is an application server key pair in its base64url text form.
type KeyPair struct {
	// PublicKey is the uncompressed P-256 point, unpadded base64url.
	PublicKey string `json:"publicKey" yaml:"publicKey"`

	// PrivateKey is the 32-byte private scalar, unpadded base64url.
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
}

// DecodeBase64URL decodes url-safe base64 text, with or without padding.
//
// Standard alphabet characters ('+' and '/') are accepted too, so keys copied
// from tools that emit either alphabet decode the same way.
func DecodeBase64URL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)

	return base64.RawURLEncoding.DecodeString(s)
}

// DecodePublicKey decodes an application server key into its raw point bytes.
//
// Parameters:
//   - key: base64url encoded uncompressed P-256 public key
//
// Returns:
//   - []byte: 65 bytes starting with 0x04
//   - error: Wrapped types.ErrInvalidApplicationServerKey if the key is malformed
//
// Example:
//
//	raw, err := vapid.DecodePublicKey(cfg.ApplicationServerKey)
//	if errors.Is(err, types.ErrInvalidApplicationServerKey) {
//	    // reject configuration
//	}
func DecodePublicKey(key string) ([]byte, error) {
	raw, err := DecodeBase64URL(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidApplicationServerKey, err)
	}

	if len(raw) != PublicKeyLength || raw[0] != 0x04 {
		return nil, fmt.Errorf("%w: expected %d byte uncompressed point, got %d bytes",
			types.ErrInvalidApplicationServerKey, PublicKeyLength, len(raw))
	}

	if _, err := ecdh.P256().NewPublicKey(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidApplicationServerKey, err)
	}

	return raw, nil
}

// ValidatePublicKey reports whether key decodes to a valid P-256 public key.
func ValidatePublicKey(key string) error {
	_, err := DecodePublicKey(key)
	return err
}

// GenerateKeyPair creates a fresh application server key pair.
//
// Returns:
//   - KeyPair: base64url encoded key pair
//   - error: Random source failure
func GenerateKeyPair() (KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate P-256 key: %w", err)
	}

	return KeyPair{
		PublicKey:  base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		PrivateKey: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
	}, nil
}
