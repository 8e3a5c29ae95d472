// Package hash wraps xxHash64 for record-set keys and metadata checksums.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a variable name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum computes the xxHash64 of a metadata payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
