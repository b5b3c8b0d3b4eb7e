package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func TestMarker(t *testing.T) {
	assert := assert.New(t)

	t.Run("marker", func(t *testing.T) {
		for i := 0; i < 1e6; i++ {
			off := uintptr(rand.Uint64() >> depthBits)
			depth := uint16(rand.Uint32())
			m := newMarker(off, depth)

			if m.Offset() != off {
				t.Fatalf("%v != %v", m.Offset(), off)
			}
			if m.Depth() != depth {
				t.Fatalf("%v != %v", m.Depth(), depth)
			}
		}
	})

	t.Run("zero", func(t *testing.T) {
		m := newMarker(0, 0)
		assert.Equal(Marker(0), m)
		assert.Equal(uintptr(0), m.Offset())
	})

	t.Run("panic-offset", func(t *testing.T) {
		if uint64(^uintptr(0)) <= maxMarkerOffset {
			t.Skip("every offset fits on this platform")
		}
		assert.Panics(func() {
			newMarker(^uintptr(0), 0)
		})
	})
}
