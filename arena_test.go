package foundation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsTake(t *testing.T) {
	assert := assert.New(t)

	var l levels
	n, ok := l.take(1)
	assert.False(ok)
	assert.Equal(node{}, n)

	// free 16
	_, ok = l.put(node{0x86, 16})
	assert.False(ok)

	// take > 16
	for i := uint32(32); i > 16; i-- {
		n, ok := l.take(i)
		assert.False(ok)
		assert.Equal(node{}, n)
	}

	// take 16
	n, ok = l.take(16)
	assert.True(ok)
	assert.Equal(node{0x86, 16}, n)
	assert.Equal(0, l.len())

	// runs are not split by the levels.
	l.put(node{10, 15})
	n, ok = l.take(11)
	assert.True(ok)
	assert.Equal(node{10, 15}, n)

	// smallest fitting run first.
	l.put(node{100, 7})
	l.put(node{200, 5})
	l.put(node{300, 6})
	n, _ = l.take(5)
	assert.Equal(node{200, 5}, n)
	n, _ = l.take(5)
	assert.Equal(node{300, 6}, n)
	n, _ = l.take(1)
	assert.Equal(node{100, 7}, n)
	assert.Equal(0, l.len())
}

func TestLevelsEvict(t *testing.T) {
	assert := assert.New(t)
	var l levels

	for i := uint32(0); i < LEVEL_SIZE; i++ {
		_, ok := l.put(node{i, 1})
		assert.False(ok)
	}
	assert.Equal(LEVEL_SIZE, l.len())

	// a full level drops runs no larger than its smallest.
	evicted, ok := l.put(node{99, 1})
	assert.True(ok)
	assert.Equal(node{99, 1}, evicted)

	// a larger run evicts the smallest one.
	for i := uint32(0); i < LEVEL_SIZE; i++ {
		l.put(node{100 + i, 4 + i%4})
	}
	evicted, ok = l.put(node{200, 7})
	assert.True(ok)
	assert.Equal(uint32(4), evicted.pages)

	slots := l.mt[toLevel(4)]
	for i := 1; i < LEVEL_SIZE; i++ {
		assert.LessOrEqual(slots[i-1].pages, slots[i].pages)
	}

	l.clear()
	assert.Equal(0, l.len())
}

func TestLevelsError(t *testing.T) {
	assert := assert.New(t)

	var l levels
	n, ok := l.take(math.MaxUint32)
	assert.Equal(node{}, n)
	assert.False(ok)

	// too large for any level.
	evicted, ok := l.put(node{0, math.MaxUint32})
	assert.True(ok)
	assert.Equal(node{0, math.MaxUint32}, evicted)

	_, ok = l.put(node{5, 0})
	assert.False(ok)
	assert.Equal(0, l.len())
}

func TestLevelsRemove(t *testing.T) {
	assert := assert.New(t)

	var l levels
	l.put(node{0, 3})
	l.put(node{10, 2})
	l.put(node{20, 3})

	assert.False(l.remove(node{0, 2}))
	assert.False(l.remove(node{1 << 20, math.MaxUint32}))
	assert.True(l.remove(node{0, 3}))
	assert.False(l.remove(node{0, 3}))
	assert.Equal(2, l.len())

	n, ok := l.take(3)
	assert.True(ok)
	assert.Equal(node{20, 3}, n)
	n, ok = l.take(2)
	assert.True(ok)
	assert.Equal(node{10, 2}, n)
	assert.Equal(0, l.len())
}
