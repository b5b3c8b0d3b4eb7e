package foundation

import "strings"

const defaultTableCapacity = 16

type entry[V any] struct {
	key  string
	used bool
	val  V
}

// Table is a string-keyed open-addressing hash table with linear probing.
//
//	hash(key) & (cap-1)
//	       |
//	       v
//	+-----+-----+-----+-----+-----+-----+
//	|     | k1  | k2  | k3  |     | ... |
//	+-----+-----+-----+-----+-----+-----+
//	        probe ----------> first empty slot ends a search
//
// The capacity is always a power of two. The table doubles before an insert
// once it is half full. Keys are owned by the table; values are stored as given.
//
// The zero value is an empty table hashing with FNV1a.
// Table is not safe for concurrent use.
type Table[V any] struct {
	entries []entry[V]
	length  int
	hashFn  HashFn
}

// NewTable returns a table using FNV1a. A capacity of 0 means 16; other
// capacities are rounded up to a power of two.
func NewTable[V any](capacity int) *Table[V] {
	return NewTableHash[V](capacity, FNV1a)
}

// NewTableHash is like NewTable with a custom hash function.
func NewTableHash[V any](capacity int, fn HashFn) *Table[V] {
	if capacity <= 0 {
		capacity = defaultTableCapacity
	}
	if fn == nil {
		fn = FNV1a
	}
	return &Table[V]{
		entries: make([]entry[V], NextPowerOfTwo(uint64(capacity))),
		hashFn:  fn,
	}
}

// Len returns the number of keys.
func (t *Table[V]) Len() int {
	return t.length
}

// Cap returns the number of slots.
func (t *Table[V]) Cap() int {
	return len(t.entries)
}

func (t *Table[V]) index(key string) uint64 {
	if t.hashFn == nil {
		t.hashFn = FNV1a
	}
	return t.hashFn(key) & uint64(len(t.entries)-1)
}

// Insert stores val under key and returns the key as stored by the table.
// An existing key keeps its stored string and gets the new value.
func (t *Table[V]) Insert(key string, val V) string {
	if t.length >= len(t.entries)/2 {
		t.expand()
	}
	return t.set(key, val, true)
}

func (t *Table[V]) set(key string, val V, clone bool) string {
	mask := uint64(len(t.entries) - 1)
	for i := t.index(key); ; i = (i + 1) & mask {
		e := &t.entries[i]
		if !e.used {
			if clone {
				key = strings.Clone(key)
			}
			*e = entry[V]{key: key, used: true, val: val}
			t.length++
			return key
		}
		if e.key == key {
			e.val = val
			return e.key
		}
	}
}

// expand doubles the slots and re-probes every key.
func (t *Table[V]) expand() {
	old := t.entries
	t.entries = make([]entry[V], max(len(old)*2, defaultTableCapacity))
	t.length = 0
	for _, e := range old {
		if e.used {
			t.set(e.key, e.val, false)
		}
	}
}

func (t *Table[V]) find(key string) (uint64, bool) {
	if t.length == 0 {
		return 0, false
	}
	mask := uint64(len(t.entries) - 1)
	for i := t.index(key); ; i = (i + 1) & mask {
		e := &t.entries[i]
		if !e.used {
			return 0, false
		}
		if e.key == key {
			return i, true
		}
	}
}

// Search returns the value stored under key.
func (t *Table[V]) Search(key string) (v V, ok bool) {
	i, ok := t.find(key)
	if !ok {
		return v, false
	}
	return t.entries[i].val, true
}

// SearchBytes is Search without converting key to a string.
func (t *Table[V]) SearchBytes(key []byte) (V, bool) {
	return t.Search(b2s(key))
}

// Delete removes key. Entries after the hole are shifted back so that no
// tombstones are needed and every probe chain stays unbroken.
func (t *Table[V]) Delete(key string) bool {
	i, ok := t.find(key)
	if !ok {
		return false
	}
	mask := uint64(len(t.entries) - 1)
	for j := (i + 1) & mask; t.entries[j].used; j = (j + 1) & mask {
		// natural slot of the entry at j; it may move into the hole at i
		// only if that slot is not cyclically inside (i, j].
		k := t.index(t.entries[j].key)
		if i <= j {
			if i < k && k <= j {
				continue
			}
		} else if i < k || k <= j {
			continue
		}
		t.entries[i] = t.entries[j]
		i = j
	}
	t.entries[i] = entry[V]{}
	t.length--
	return true
}

// EntryAt returns the n-th populated entry in slot order.
// It scans the slots, so iterating with it is O(n*cap); use All instead.
func (t *Table[V]) EntryAt(n int) (key string, v V, ok bool) {
	if n < 0 || n >= t.length {
		return "", v, false
	}
	for _, e := range t.entries {
		if !e.used {
			continue
		}
		if n == 0 {
			return e.key, e.val, true
		}
		n--
	}
	return "", v, false
}

// KeyAt returns the key of the n-th populated entry.
func (t *Table[V]) KeyAt(n int) (string, bool) {
	key, _, ok := t.EntryAt(n)
	return key, ok
}

// All calls f for every entry in slot order until f returns false.
// The table must not be modified during the walk.
func (t *Table[V]) All(f func(key string, v V) bool) {
	for _, e := range t.entries {
		if e.used && !f(e.key, e.val) {
			return
		}
	}
}

// Destroy drops every key and the slots. Inserting afterwards starts over
// with the default capacity.
func (t *Table[V]) Destroy() {
	t.entries = nil
	t.length = 0
}
