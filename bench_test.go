package foundation

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/swiss"
	"github.com/tidwall/hashmap"
)

var (
	num = 10 * 10000
	str = []byte("Hello World")
)

func getStdmap() map[string][]byte {
	m := map[string][]byte{}
	for i := 0; i < num; i++ {
		m[strconv.Itoa(i)] = str
	}
	return m
}

func getTable() *Table[[]byte] {
	m := NewTable[[]byte](0)
	for i := 0; i < num; i++ {
		m.Insert(strconv.Itoa(i), str)
	}
	return m
}

func BenchmarkSet(b *testing.B) {
	b.Run("stdmap", func(b *testing.B) {
		m := map[string][]byte{}
		for i := 0; i < b.N; i++ {
			m[strconv.Itoa(i)] = str
		}
	})

	b.Run("swiss", func(b *testing.B) {
		m := swiss.New[string, []byte](8)
		for i := 0; i < b.N; i++ {
			m.Put(strconv.Itoa(i), str)
		}
	})

	b.Run("hashmap", func(b *testing.B) {
		m := hashmap.New[string, []byte](8)
		for i := 0; i < b.N; i++ {
			m.Set(strconv.Itoa(i), str)
		}
	})

	b.Run("table", func(b *testing.B) {
		m := NewTable[[]byte](0)
		for i := 0; i < b.N; i++ {
			m.Insert(strconv.Itoa(i), str)
		}
	})

	b.Run("table-xxh3", func(b *testing.B) {
		m := NewTableHash[[]byte](0, XXH3)
		for i := 0; i < b.N; i++ {
			m.Insert(strconv.Itoa(i), str)
		}
	})
}

func BenchmarkGet(b *testing.B) {
	m1 := getStdmap()
	b.Run("stdmap", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = m1[strconv.Itoa(i)]
		}
	})

	m2 := swiss.New[string, []byte](8)
	for i := 0; i < num; i++ {
		m2.Put(strconv.Itoa(i), str)
	}
	b.Run("swiss", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			m2.Get(strconv.Itoa(i))
		}
	})

	m3 := hashmap.New[string, []byte](8)
	for i := 0; i < num; i++ {
		m3.Set(strconv.Itoa(i), str)
	}
	b.Run("hashmap", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			m3.Get(strconv.Itoa(i))
		}
	})

	m4 := getTable()
	b.Run("table", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			m4.Search(strconv.Itoa(i))
		}
	})
}

func BenchmarkIter(b *testing.B) {
	b.Run("stdmap", func(b *testing.B) {
		m := getStdmap()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for k, v := range m {
				_, _ = k, v
			}
		}
	})

	b.Run("table", func(b *testing.B) {
		m := getTable()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			m.All(func(k string, v []byte) bool {
				return true
			})
		}
	})
}

func BenchmarkDelete(b *testing.B) {
	b.Run("stdmap", func(b *testing.B) {
		m := getStdmap()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			delete(m, strconv.Itoa(i))
		}
	})

	b.Run("table", func(b *testing.B) {
		m := getTable()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			m.Delete(strconv.Itoa(i))
		}
	})
}

func BenchmarkAlloc(b *testing.B) {
	b.Run("make", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = make([]byte, 64)
		}
	})

	f, _ := New(Options{Memory: NewFakeMemory(4096, 64<<10)})
	defer f.Close()

	b.Run("linear", func(b *testing.B) {
		l, _ := NewLinear(f, "bench-linear", 64<<20)
		defer l.Destroy()
		for i := 0; i < b.N; i++ {
			if _, err := l.Alloc(64); err != nil {
				l.Reset()
			}
		}
	})

	b.Run("stack", func(b *testing.B) {
		s, _ := NewStack(f, "bench-stack", 1<<20)
		defer s.Destroy()
		for i := 0; i < b.N; i++ {
			_, m, _ := s.Alloc(64, 16)
			s.Free(m)
		}
	})

	b.Run("heap", func(b *testing.B) {
		h, _ := NewHeap(f, "bench-heap", 1<<20)
		defer h.Destroy()
		for i := 0; i < b.N; i++ {
			blk, _ := h.Alloc(64)
			h.Free(blk)
		}
	})
}
