package foundation

import (
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func TestTable(t *testing.T) {
	assert := assert.New(t)

	tb := NewTable[int](0)
	assert.Equal(16, tb.Cap())
	assert.Equal(0, tb.Len())

	_, ok := tb.Search("none")
	assert.False(ok)

	tb.Insert("alpha", 1)
	tb.Insert("beta", 2)
	v, ok := tb.Search("alpha")
	assert.True(ok)
	assert.Equal(1, v)

	// overwrite keeps the length.
	tb.Insert("alpha", 10)
	v, _ = tb.Search("alpha")
	assert.Equal(10, v)
	assert.Equal(2, tb.Len())

	v, ok = tb.SearchBytes([]byte("beta"))
	assert.True(ok)
	assert.Equal(2, v)

	assert.True(tb.Delete("alpha"))
	assert.False(tb.Delete("alpha"))
	_, ok = tb.Search("alpha")
	assert.False(ok)
	assert.Equal(1, tb.Len())

	key, ok := tb.KeyAt(0)
	assert.True(ok)
	assert.Equal("beta", key)
	_, ok = tb.KeyAt(1)
	assert.False(ok)
	_, _, ok = tb.EntryAt(-1)
	assert.False(ok)
}

func TestTableScenario(t *testing.T) {
	assert := assert.New(t)

	tb := NewTable[string](16)
	tb.Insert("1", "First")
	tb.Insert("2", "Second")
	assert.Equal(2, tb.Len())

	v, ok := tb.Search("1")
	assert.True(ok)
	assert.Equal("First", v)
	_, ok = tb.Search("3")
	assert.False(ok)
}

func TestTableZeroValue(t *testing.T) {
	assert := assert.New(t)

	var tb Table[int]
	_, ok := tb.Search("a")
	assert.False(ok)
	assert.False(tb.Delete("a"))

	tb.Insert("a", 1)
	tb.Insert("b", 2)
	assert.Equal(defaultTableCapacity, tb.Cap())
	v, ok := tb.Search("b")
	assert.True(ok)
	assert.Equal(2, v)
	assert.True(tb.Delete("a"))
	assert.Equal(1, tb.Len())
}

func TestTableCapacity(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(16, NewTable[int](-1).Cap())
	assert.Equal(1, NewTable[int](1).Cap())
	assert.Equal(128, NewTable[int](100).Cap())

	tb := NewTable[int](16)
	for i := 0; i < 8; i++ {
		tb.Insert(strconv.Itoa(i), i)
	}
	assert.Equal(16, tb.Cap())

	// half full, the next insert doubles first.
	tb.Insert("8", 8)
	assert.Equal(32, tb.Cap())
	assert.Equal(9, tb.Len())

	for i := 0; i < 9; i++ {
		v, ok := tb.Search(strconv.Itoa(i))
		assert.True(ok)
		assert.Equal(i, v)
	}

	// a table of one slot grows before its first insert.
	one := NewTable[int](1)
	one.Insert("x", 1)
	assert.Equal(16, one.Cap())
}

func TestTableOwnsKeys(t *testing.T) {
	assert := assert.New(t)
	tb := NewTable[int](0)

	buf := []byte("mutable")
	stored := tb.Insert(b2s(buf), 1)
	buf[0] = 'M'

	assert.Equal("mutable", stored)
	_, ok := tb.Search("mutable")
	assert.True(ok)

	// the first stored key survives an overwrite.
	assert.Equal("mutable", tb.Insert("mutable", 2))
}

func TestTableCollisions(t *testing.T) {
	assert := assert.New(t)

	// every key probes from the same slot.
	tb := NewTableHash[int](16, func(string) uint64 { return 3 })
	for i := 0; i < 6; i++ {
		tb.Insert(strconv.Itoa(i), i)
	}
	assert.True(tb.Delete("0"))
	assert.True(tb.Delete("3"))
	for i := 0; i < 6; i++ {
		v, ok := tb.Search(strconv.Itoa(i))
		if i == 0 || i == 3 {
			assert.False(ok)
			continue
		}
		assert.True(ok)
		assert.Equal(i, v)
	}

	// chains that wrap around the end of the slots.
	wrap := NewTableHash[int](16, func(s string) uint64 { return uint64(14 + len(s)%2) })
	keys := []string{"a", "bb", "c", "dd", "e", "ff", "g"}
	for i, k := range keys {
		wrap.Insert(k, i)
	}
	for _, k := range []string{"bb", "a", "e"} {
		assert.True(wrap.Delete(k))
	}
	for i, k := range keys {
		v, ok := wrap.Search(k)
		if k == "bb" || k == "a" || k == "e" {
			assert.False(ok, k)
			continue
		}
		assert.True(ok, k)
		assert.Equal(i, v)
	}
}

func TestTableRandom(t *testing.T) {
	assert := assert.New(t)

	tb := NewTable[string](0)
	m := map[string]string{}

	for i := 0; i < 100000; i++ {
		key := strconv.Itoa(rand.Intn(5000))
		switch rand.Intn(3) {
		case 0, 1:
			val := gofakeit.Word()
			tb.Insert(key, val)
			m[key] = val
		case 2:
			_, exist := m[key]
			assert.Equal(exist, tb.Delete(key))
			delete(m, key)
		}
	}
	assert.Equal(len(m), tb.Len())
	for k, v := range m {
		res, ok := tb.Search(k)
		assert.True(ok)
		assert.Equal(v, res)
	}

	var count int
	tb.All(func(k, v string) bool {
		assert.Equal(m[k], v)
		count++
		return true
	})
	assert.Equal(len(m), count)
	assert.True(IsPowerOfTwo(uint64(tb.Cap())))
	assert.LessOrEqual(tb.Len()*2, tb.Cap())
}

func TestTableDestroy(t *testing.T) {
	assert := assert.New(t)

	tb := NewTableHash[int](4, XXH3)
	tb.Insert("a", 1)
	tb.Destroy()
	assert.Equal(0, tb.Len())
	assert.Equal(0, tb.Cap())

	_, ok := tb.Search("a")
	assert.False(ok)
	assert.False(tb.Delete("a"))

	tb.Insert("b", 2)
	assert.Equal(16, tb.Cap())
	v, _ := tb.Search("b")
	assert.Equal(2, v)
}

func FuzzTable(f *testing.F) {
	m1 := make(map[string]int)
	m2 := NewTable[int](0)

	f.Fuzz(func(t *testing.T, key string, val int, n byte) {
		assert := assert.New(t)

		// set
		m1[key] = val
		m2.Insert(key, val)

		if n%2 == 0 {
			// delete
			for k := range m1 {
				delete(m1, k)
				assert.True(m2.Delete(k))
				break
			}

		} else {
			// check length
			var count int
			for k, v := range m1 {
				res, ok := m2.Search(k)
				assert.Equal(v, res)
				assert.True(ok)

				count++
				if count > 100 {
					break
				}
			}
			assert.Equal(len(m1), m2.Len())
		}
	})
}
