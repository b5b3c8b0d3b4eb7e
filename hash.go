package foundation

import "github.com/zeebo/xxh3"

// FNV-1a 64-bit parameters.
const (
	FNV1_64_INIT uint64 = 0xcbf29ce484222325
	FNV_64_PRIME uint64 = 0x100000001b3
)

// HashFn hashes a table key.
type HashFn func(string) uint64

// FNV1a is the default table hash. It is stable across processes and platforms.
func FNV1a(str string) uint64 {
	return FNV1aSeed(str, FNV1_64_INIT)
}

// FNV1aSeed hashes str starting from seed, one byte at a time.
func FNV1aSeed(str string, seed uint64) uint64 {
	h := seed
	for i := 0; i < len(str); i++ {
		h ^= uint64(str[i])
		h *= FNV_64_PRIME
	}
	return h
}

// XXH3 is a faster HashFn for long keys. It is also stable across processes.
func XXH3(str string) uint64 {
	return xxh3.HashString(str)
}
