package foundation

import "math"

// Marker is a saved stack top.
// +------------------------------------------------+----------------+
// |                   offset(48)                   |   depth(16)    |
// +------------------------------------------------+----------------+
type Marker uint64

const (
	depthBits       = 16
	depthMask       = 1<<depthBits - 1
	maxMarkerOffset = math.MaxUint64 >> depthBits
	maxStackDepth   = math.MaxUint16
)

func newMarker(offset uintptr, depth uint16) Marker {
	if uint64(offset) > maxMarkerOffset {
		panic("offset overflows the limit of marker")
	}
	return Marker(uint64(offset)<<depthBits | uint64(depth))
}

// Offset returns the top offset the marker rewinds to.
func (m Marker) Offset() uintptr {
	return uintptr(m >> depthBits)
}

// Depth returns the number of allocations below the marker.
func (m Marker) Depth() uint16 {
	return uint16(m & depthMask)
}
