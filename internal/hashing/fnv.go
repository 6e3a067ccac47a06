// Package hashing maps keys onto table buckets.
package hashing

const (
	offset32 uint32 = 0x811c9dc5
	prime32  uint32 = 0x01000193
)

// FNV1a hashes key with 32-bit FNV-1a and reduces it into [0, capacity).
// capacity must be positive.
func FNV1a(key string, capacity int) int {
	return int(Sum32(key) % uint32(capacity))
}

// Sum32 returns the unreduced 32-bit FNV-1a digest of the bytes of key.
// It runs on every probe and does not allocate.
func Sum32(key string) uint32 {
	h := offset32
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime32
	}
	return h
}
