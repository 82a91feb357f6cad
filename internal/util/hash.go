// Package util contains internal helpers (key hashing, power-of-two math,
// worker heuristics).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeyOf maps a trace token to a 64-bit key.
// Decimal and 0x-prefixed hexadecimal tokens are taken at face value, so
// address traces keep their identity; any other token is hashed with
// xxHash64. Collisions between hashed tokens merge their histories.
func KeyOf(token string) uint64 {
	if v, ok := ParseNumeric(token); ok {
		return v
	}
	return xxhash.Sum64String(token)
}

// ParseNumeric parses a decimal or 0x/0X hexadecimal unsigned integer.
func ParseNumeric(token string) (uint64, bool) {
	if token == "" {
		return 0, false
	}
	if hex, ok := strings.CutPrefix(strings.ToLower(token), "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(token, 10, 64)
	return v, err == nil
}
