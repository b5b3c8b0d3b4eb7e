package foundation

import (
	"math"

	"github.com/cockroachdb/errors"
)

const spaceCacheSize = 16

// Heap hands out page-granular blocks that can be freed one by one.
//
// Blocks come from the segregated free levels, then from the cache of large
// runs, and finally from the never-used part of the reservation. A freed block
// is merged with the free runs next to it. A run ending at the frontier moves
// the frontier back; other runs go to the levels. When a level is full the
// smallest run moves to the space cache, and a run the space cache does not
// keep is lost until a neighbour is freed or the heap is Reset.
//
// With Options.DecommitOnFree, freed blocks are decommitted and committed
// again when reused.
type Heap struct {
	reservation
	free     levels
	spaces   spaceCache
	live     []uint32 // pages of the live block starting at each page, 0 if none
	runAt    []uint32 // pages of the free run starting at each page, 0 if none
	runEnd   []uint32 // 1 + first page of the free run ending at each page, 0 if none
	frontier uint32   // first page above every handed out block
	high     uint32   // first page never committed, unless decommit is set
	lost     uint64   // pages dropped by full free lists
	decommit bool
	zero     bool
}

// NewHeap reserves maxSize bytes, rounded up to the allocation granularity,
// and registers the allocator under name.
func NewHeap(f *Foundation, name string, maxSize uintptr) (*Heap, error) {
	h := &Heap{}
	if err := h.init(f, KindHeap, name, maxSize); err != nil {
		return nil, err
	}
	if h.info.pagesReserved > math.MaxUint32 {
		_ = h.Destroy()
		return nil, errors.Wrapf(ErrReserveFailed, "heap %q exceeds %d pages", name, uint32(math.MaxUint32))
	}
	h.spaces = newSpaceCache(spaceCacheSize)
	h.live = make([]uint32, h.info.pagesReserved)
	h.runAt = make([]uint32, h.info.pagesReserved)
	h.runEnd = make([]uint32, h.info.pagesReserved)
	h.decommit = f.options.DecommitOnFree
	h.zero = f.options.ZeroOnAlloc
	if err := f.track(h); err != nil {
		_ = h.Destroy()
		return nil, err
	}
	return h, nil
}

// Info returns the allocator metadata.
func (h *Heap) Info() *AllocatorInfo {
	if h == nil {
		return nil
	}
	return &h.info
}

// Lost returns the number of freed pages no free list could keep.
func (h *Heap) Lost() uint64 {
	if h == nil {
		return 0
	}
	h.info.mu.Lock()
	defer h.info.mu.Unlock()
	return h.lost
}

// FreeRuns returns the number of free runs available for reuse.
func (h *Heap) FreeRuns() int {
	if h == nil {
		return 0
	}
	h.info.mu.Lock()
	defer h.info.mu.Unlock()
	return h.free.len() + h.spaces.len()
}

// Alloc returns a block of size bytes; its capacity is the page-rounded size.
func (h *Heap) Alloc(size uintptr) ([]byte, error) {
	return h.AllocAt(size, "", 0)
}

// AllocAt is Alloc with the caller's file and line recorded on commit records.
func (h *Heap) AllocAt(size uintptr, file string, line int) ([]byte, error) {
	if h == nil {
		return nil, ErrNilAllocator
	}
	h.info.mu.Lock()
	defer h.info.mu.Unlock()

	if h.region == nil {
		return nil, ErrDestroyed
	}
	info := &h.info
	page := info.pageSize

	rounded := RoundUp(max(size, 1), page)
	if rounded < size || rounded/page > info.pagesReserved {
		return nil, errors.Wrapf(ErrOutOfSpace, "alloc %d bytes in %q", size, info.name)
	}
	want := uint32(rounded / page)

	n, reused := h.takeRun(want)
	if !reused {
		if uintptr(h.frontier)+uintptr(want) > info.pagesReserved {
			h.log.Warn("out of reserved space", "size", size, "allocated", info.bytesAllocated)
			return nil, errors.Wrapf(ErrOutOfSpace, "alloc %d bytes in %q", size, info.name)
		}
		n = node{start: h.frontier, pages: want}
		h.frontier += want
	}

	off := uintptr(n.start) * page
	// without decommit, pages below high stay committed and may hold old data.
	stale := !h.decommit && n.start < h.high
	from, to := n.start, n.end()
	if !h.decommit {
		from = max(from, h.high)
	}
	if from < to {
		coff, csize := uintptr(from)*page, uintptr(to-from)*page
		if err := h.mem.Commit(h.region, coff, csize); err != nil {
			h.giveBack(n)
			h.log.Warn("commit failed", "offset", coff, "bytes", csize, "error", err)
			return nil, errors.Mark(errors.Wrapf(err, "commit %d bytes at offset %d", csize, coff), ErrCommitFailed)
		}
		info.recordCommit(coff, csize, file, line)
		if !h.decommit {
			h.high = to
		}
	}

	h.live[n.start] = n.pages
	info.bytesAllocated += rounded
	info.numAllocs++

	b := h.block(off, size, rounded)
	if h.zero || stale {
		clear(b[:cap(b)])
	}
	return b, nil
}

// Free returns a block handed out by Alloc. The block's capacity must be unchanged.
func (h *Heap) Free(b []byte) error {
	if h == nil {
		return ErrNilAllocator
	}
	h.info.mu.Lock()
	defer h.info.mu.Unlock()

	if h.region == nil {
		return ErrDestroyed
	}
	info := &h.info
	page := info.pageSize

	addr := sliceBase(b)
	size := uintptr(cap(b))
	if addr < info.baseAddress || size == 0 || size%page != 0 {
		return errors.Wrapf(ErrBadBlock, "block at %#x of %d bytes", addr, size)
	}
	off := addr - info.baseAddress
	if off%page != 0 || off/page >= uintptr(h.frontier) || off/page+size/page > uintptr(h.frontier) {
		return errors.Wrapf(ErrBadBlock, "block at offset %d of %d bytes", off, size)
	}
	n := node{start: uint32(off / page), pages: uint32(size / page)}
	if h.live[n.start] != n.pages {
		return errors.Wrapf(ErrBadBlock, "block at offset %d of %d pages is not live", off, n.pages)
	}

	if h.decommit {
		if err := h.mem.Decommit(h.region, off, size); err != nil {
			return errors.Wrapf(err, "decommit %d bytes at offset %d", size, off)
		}
		info.bytesCommitted -= size
		info.pagesCommitted = info.bytesCommitted / page
	}
	h.live[n.start] = 0
	info.bytesAllocated -= size
	h.giveBack(n)
	return nil
}

// Reset frees every block at once and forgets the free lists.
func (h *Heap) Reset() error {
	if h == nil {
		return ErrNilAllocator
	}
	h.info.mu.Lock()
	defer h.info.mu.Unlock()

	if h.region == nil {
		return ErrDestroyed
	}
	if used := uintptr(max(h.frontier, h.high)) * h.info.pageSize; used > 0 {
		if err := h.mem.Decommit(h.region, 0, used); err != nil {
			return errors.Wrapf(err, "decommit %q", h.info.name)
		}
	}
	h.info.resetUsage()
	h.free.clear()
	h.spaces.clear()
	clear(h.live)
	clear(h.runAt)
	clear(h.runEnd)
	h.frontier = 0
	h.high = 0
	h.lost = 0
	return nil
}

// Destroy releases the reservation and unregisters the allocator.
func (h *Heap) Destroy() error {
	if h == nil {
		return ErrNilAllocator
	}
	h.info.mu.Lock()
	if h.region == nil {
		h.info.mu.Unlock()
		return ErrDestroyed
	}
	err := h.release()
	h.free.clear()
	h.spaces.clear()
	h.live, h.runAt, h.runEnd = nil, nil, nil
	h.frontier, h.high, h.lost = 0, 0, 0
	h.info.mu.Unlock()

	h.f.untrack(h)
	return err
}

// takeRun finds a free run of at least want pages and splits off the rest.
func (h *Heap) takeRun(want uint32) (node, bool) {
	n, ok := h.free.take(want)
	if !ok {
		n, ok = h.spaces.fetchGreat(want)
	}
	if !ok {
		return node{}, false
	}
	h.unmark(n)
	if n.pages > want {
		h.giveBack(node{start: n.start + want, pages: n.pages - want})
		n.pages = want
	}
	return n, true
}

// giveBack merges a free run with the free runs around it, then returns it to
// the frontier or the free lists.
func (h *Heap) giveBack(n node) {
	if n.start > 0 {
		if s := h.runEnd[n.start-1]; s > 0 {
			left := node{start: s - 1, pages: h.runAt[s-1]}
			h.unfile(left)
			n = node{start: left.start, pages: left.pages + n.pages}
		}
	}
	if end := n.end(); end < h.frontier {
		if p := h.runAt[end]; p > 0 {
			right := node{start: end, pages: p}
			h.unfile(right)
			n.pages += right.pages
		}
	}
	if n.end() == h.frontier {
		h.frontier = n.start
		return
	}

	h.runAt[n.start] = n.pages
	h.runEnd[n.end()-1] = n.start + 1
	evicted, ok := h.free.put(n)
	if !ok {
		return
	}
	if evicted, ok = h.spaces.put(evicted.pages, evicted.start); ok {
		h.lost += uint64(evicted.pages)
	}
}

// unfile takes a free run out of whichever list holds it.
// A run held by none was lost.
func (h *Heap) unfile(n node) {
	h.unmark(n)
	if !h.free.remove(n) && !h.spaces.remove(n) {
		h.lost -= uint64(n.pages)
	}
}

func (h *Heap) unmark(n node) {
	h.runAt[n.start] = 0
	h.runEnd[n.end()-1] = 0
}
