// Package fingerprint computes the 64-bit content fingerprint used as
// the cache and file-identity key throughout the engine (spec §3).
package fingerprint

import "github.com/cespare/xxhash/v2"

// Of returns the 64-bit fingerprint of content.
func Of(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// OfString is a convenience wrapper for string content.
func OfString(s string) uint64 {
	return xxhash.Sum64String(s)
}
