package foundation

import (
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// PointerSize is the native pointer size, the default alignment of every allocation.
const PointerSize = unsafe.Sizeof(uintptr(0))

// IsPowerOfTwo reports whether v has at most one bit set.
// Zero is reported as a power of two.
func IsPowerOfTwo[T constraints.Unsigned](v T) bool {
	return v&(v-1) == 0
}

// RoundUp rounds value up to a multiple of multiple.
// It returns 0 when multiple is not a power of two.
//
// Example:
//
//	RoundUp(1, 4096)    = 4096
//	RoundUp(4096, 4096) = 4096
//	RoundUp(4097, 4096) = 8192
//	RoundUp(10, 12)     = 0
func RoundUp[T constraints.Unsigned](value, multiple T) T {
	if !IsPowerOfTwo(multiple) {
		return 0
	}
	return (value + multiple - 1) &^ (multiple - 1)
}

// RoundDown rounds value down to a multiple of multiple.
// It returns 0 when multiple is not a power of two.
func RoundDown[T constraints.Unsigned](value, multiple T) T {
	if !IsPowerOfTwo(multiple) {
		return 0
	}
	return value &^ (multiple - 1)
}

// IsAligned reports whether addr is a multiple of the pointer size.
func IsAligned(addr uintptr) bool {
	return addr&(PointerSize-1) == 0
}

// AlignAddress rounds addr up to the next multiple of the pointer size.
func AlignAddress(addr uintptr) uintptr {
	return RoundUp(addr, PointerSize)
}

// AlignPadding returns the number of bytes needed to bring addr up to align.
func AlignPadding(addr, align uintptr) uintptr {
	if align == 0 || !IsPowerOfTwo(align) {
		return 0
	}
	return RoundUp(addr, align) - addr
}

// AddressDistance returns b - a. The caller guarantees b >= a.
func AddressDistance(a, b uintptr) uintptr {
	return b - a
}

// IsStraddlingBoundary reports whether [addr, addr+size) crosses the next page
// boundary after addr.
func IsStraddlingBoundary(addr, size, pageSize uintptr) bool {
	boundary := RoundUp(addr, pageSize)
	if boundary == addr {
		boundary += pageSize
	}
	return addr+size > boundary
}

// NextPowerOfTwo returns the smallest power of two >= v. It returns 1 for 0.
func NextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len64(v-1)
}
