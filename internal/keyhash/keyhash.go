// Package keyhash derives stable JetStream KV keys from arbitrary identities.
//
// Device ids, user ids or endpoint URLs may contain characters that are not
// valid in KV keys. Key hashes the identity with XXH3 so any identity maps to
// a short, valid and stable key.
package keyhash

import (
	"fmt"
	"regexp"

	"github.com/zeebo/xxh3"
)

var validPrefix = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

// Hash returns the 64-bit XXH3 hash of identity, seeded when seed is non-zero.
func Hash(identity string, seed uint64) uint64 {
	if seed != 0 {
		return xxh3.HashStringSeed(identity, seed)
	}

	return xxh3.HashString(identity)
}

// Key returns "<prefix>.<16 hex digits>" for identity.
//
// Parameters:
//   - prefix: Key prefix, must satisfy ValidPrefix (empty means no prefix)
//   - identity: Arbitrary owner identity
//
// Returns:
//   - string: KV-safe key, identical for identical inputs across processes
//
// Example:
//
//	key := keyhash.Key("sub", "user@example.com") // "sub.3f1b..."
func Key(prefix, identity string) string {
	sum := fmt.Sprintf("%016x", Hash(identity, 0))
	if prefix == "" {
		return sum
	}

	return prefix + "." + sum
}

// ValidPrefix reports whether prefix may be used in a KV key.
func ValidPrefix(prefix string) bool {
	return prefix == "" || validPrefix.MatchString(prefix)
}
