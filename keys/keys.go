// Package keys provides cheap hashed string identities for asset and
// animation keys. A Key carries its xxhash alongside the string so map
// lookups and comparisons in per-frame hot paths stay O(1) regardless of
// key length.
package keys

import "github.com/cespare/xxhash/v2"

// Key is a hashed string identity. The zero value is the empty key.
type Key struct {
	str  string
	hash uint64
}

// New builds a key from a raw string.
func New(s string) Key {
	if s == "" {
		return Key{}
	}
	return Key{str: s, hash: xxhash.Sum64String(s)}
}

// String returns the raw key string.
func (k Key) String() string { return k.str }

// Hash returns the precomputed xxhash of the key string.
func (k Key) Hash() uint64 { return k.hash }

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool { return k.str == "" }
