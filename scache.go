package foundation

import "math"

// spaceCache keeps free page runs that are too large for the heap levels.
// It retains large spaces and discards small ones, to bound its own size.
type spaceCache struct {
	key []uint32 // pages, 0 means empty
	val []uint32 // first page
}

// newSpaceCache return a cache with fixed length.
func newSpaceCache(size int) spaceCache {
	return spaceCache{
		key: make([]uint32, size),
		val: make([]uint32, size),
	}
}

// put passes in a free run; if it is larger than the smallest one in the cache,
// it replaces it and the replaced run is returned.
func (s *spaceCache) put(pages, start uint32) (evicted node, ok bool) {
	if pages == 0 {
		return node{}, false
	}
	// find min and pos in slice.
	min, pos := minAbove(s.key, 0)

	if pages <= min {
		return node{start: start, pages: pages}, true
	}
	evicted = node{start: s.val[pos], pages: s.key[pos]}
	s.key[pos] = pages
	s.val[pos] = start
	return evicted, evicted.pages > 0
}

// fetchGreat removes and returns the smallest run with at least want pages.
func (s *spaceCache) fetchGreat(want uint32) (node, bool) {
	if want == 0 {
		return node{}, false
	}
	_, pos := minAbove(s.key, want)

	if pos >= 0 {
		n := node{start: s.val[pos], pages: s.key[pos]}
		s.key[pos] = 0
		s.val[pos] = 0
		return n, true
	}
	return node{}, false
}

// remove drops the run n if it is cached.
func (s *spaceCache) remove(n node) bool {
	for i, k := range s.key {
		if k == n.pages && s.val[i] == n.start && k > 0 {
			s.key[i] = 0
			s.val[i] = 0
			return true
		}
	}
	return false
}

// len returns the number of cached runs.
func (s *spaceCache) len() (n int) {
	for _, k := range s.key {
		if k > 0 {
			n++
		}
	}
	return
}

func (s *spaceCache) clear() {
	clear(s.key)
	clear(s.val)
}

// minAbove find minumum value not less than target in slice.
func minAbove(s []uint32, target uint32) (min uint32, pos int) {
	min = math.MaxUint32
	pos = -1

	for i, v := range s {
		if v < min && v >= target {
			min = v
			pos = i
		}
	}
	return
}
