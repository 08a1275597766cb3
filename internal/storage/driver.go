package storage

import "math/bits"

// bitCount backs the bit_count SQL function used by similarity scoring.
// Masks are stored as signed 64-bit integers so the sign bit counts too.
func bitCount(v int64) int64 {
	return int64(bits.OnesCount64(uint64(v)))
}
