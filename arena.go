package foundation

import "math/bits"

const (
	MAX_LEVEL  = 16
	LEVEL_SIZE = 8
)

// levels is the segregated free list of the heap allocator.
// Level l holds page runs of [2^(l-1), 2^l) pages, each level sorted by size
// with empty slots first.
type levels struct {
	mt [MAX_LEVEL][LEVEL_SIZE]node
}

// node is a run of pages, counted in pages from the start of the region.
type node struct {
	start, pages uint32
}

func (n node) end() uint32 {
	return n.start + n.pages
}

// take removes and returns the smallest run of at least want pages,
// searching from want's level upwards.
func (l *levels) take(want uint32) (node, bool) {
	for level := toLevel(want); level < MAX_LEVEL; level++ {
		slots := &l.mt[level]
		for i, n := range slots {
			if n.pages >= want {
				// shift the smaller runs up to keep empty slots first.
				copy(slots[1:i+1], slots[:i])
				slots[0] = node{}
				return n, true
			}
		}
	}
	return node{}, false
}

// put stores a run. When the level is full and the run is larger than its
// smallest one, the smallest is evicted; otherwise the run itself is.
func (l *levels) put(n node) (evicted node, ok bool) {
	if n.pages == 0 {
		return node{}, false
	}
	level := toLevel(n.pages)
	if level >= MAX_LEVEL {
		return n, true
	}
	slots := &l.mt[level]
	if n.pages <= slots[0].pages {
		return n, true
	}
	evicted = slots[0]

	// insert in order, the slot at 0 is replaced.
	i := 1
	for ; i < LEVEL_SIZE && slots[i].pages < n.pages; i++ {
		slots[i-1] = slots[i]
	}
	slots[i-1] = n
	return evicted, evicted.pages > 0
}

// remove drops the run n if the level holds it.
func (l *levels) remove(n node) bool {
	level := toLevel(n.pages)
	if level >= MAX_LEVEL {
		return false
	}
	slots := &l.mt[level]
	for i, o := range slots {
		if o == n {
			copy(slots[1:i+1], slots[:i])
			slots[0] = node{}
			return true
		}
	}
	return false
}

// len returns the number of runs held.
func (l *levels) len() (count int) {
	for level := range l.mt {
		for _, n := range l.mt[level] {
			if n.pages > 0 {
				count++
			}
		}
	}
	return
}

// Clear
func (l *levels) clear() {
	l.mt = [MAX_LEVEL][LEVEL_SIZE]node{}
}

// toLevel returns the number of bits needed for pages.
func toLevel(pages uint32) int {
	return bits.Len32(pages)
}
