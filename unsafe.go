package foundation

import "unsafe"

// b2s is bytes convert to string unsafe.
// The string must not outlive a mutation of buf.
func b2s(buf []byte) string {
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

// sliceBase returns the address of the first byte of b, valid for empty slices too.
func sliceBase(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
