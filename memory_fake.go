package foundation

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// FakeMemory is an in-process Memory for tests and tooling. It backs every
// reservation with a heap slice and tracks which pages are committed.
//
// Touching an uncommitted page is not detected by the hardware, so tests use
// IsCommitted and CommittedBytes to check allocator invariants instead.
type FakeMemory struct {
	mu          sync.Mutex
	pageSize    uintptr
	granularity uintptr

	// reserveLimit caps the total bytes reserved, 0 means unlimited.
	reserveLimit uintptr
	reserved     uintptr

	// commitsLeft counts successful commits before failures start, -1 never fails.
	commitsLeft int

	pages map[*Region][]bool
}

// NewFakeMemory returns a fake backend. Both sizes must be powers of two and
// granularity a multiple of pageSize.
func NewFakeMemory(pageSize, granularity uintptr) *FakeMemory {
	if pageSize == 0 || !IsPowerOfTwo(pageSize) || granularity < pageSize || !IsPowerOfTwo(granularity) {
		panic("foundation: fake memory needs power of two page size and granularity")
	}
	return &FakeMemory{
		pageSize:    pageSize,
		granularity: granularity,
		commitsLeft: -1,
		pages:       make(map[*Region][]bool),
	}
}

// SetReserveLimit caps the total reserved bytes across all regions.
func (m *FakeMemory) SetReserveLimit(limit uintptr) {
	m.mu.Lock()
	m.reserveLimit = limit
	m.mu.Unlock()
}

// FailCommitAfter lets n more commits succeed and fails every one after.
// A negative n disables failures.
func (m *FakeMemory) FailCommitAfter(n int) {
	m.mu.Lock()
	m.commitsLeft = n
	m.mu.Unlock()
}

func (m *FakeMemory) PageSize() uintptr    { return m.pageSize }
func (m *FakeMemory) Granularity() uintptr { return m.granularity }

func (m *FakeMemory) Reserve(size uintptr) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if size == 0 || size%m.pageSize != 0 {
		return nil, errors.Wrapf(ErrBadRange, "reserve size %d", size)
	}
	if m.reserveLimit > 0 && m.reserved+size > m.reserveLimit {
		return nil, errors.Newf("fake memory: reserve limit %d exceeded", m.reserveLimit)
	}
	r := &Region{data: make([]byte, size)}
	m.pages[r] = make([]bool, size/m.pageSize)
	m.reserved += size
	return r, nil
}

func (m *FakeMemory) Commit(r *Region, off, size uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pages, err := m.lookup(r, off, size)
	if err != nil {
		return err
	}
	if m.commitsLeft == 0 {
		return errors.New("fake memory: commit refused")
	}
	if m.commitsLeft > 0 {
		m.commitsLeft--
	}
	for i := range pages {
		pages[i] = true
	}
	return nil
}

func (m *FakeMemory) Decommit(r *Region, off, size uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pages, err := m.lookup(r, off, size)
	if err != nil {
		return err
	}
	for i := range pages {
		pages[i] = false
	}
	clear(r.data[off : off+size])
	return nil
}

func (m *FakeMemory) Release(r *Region) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[r]; !ok {
		return nil
	}
	delete(m.pages, r)
	m.reserved -= r.Size()
	r.data = nil
	return nil
}

func (m *FakeMemory) lookup(r *Region, off, size uintptr) ([]bool, error) {
	pages, ok := m.pages[r]
	if !ok {
		return nil, errors.Wrap(ErrBadRange, "unknown region")
	}
	if _, err := r.span(off, size, m.pageSize); err != nil {
		return nil, err
	}
	return pages[off/m.pageSize : (off+size)/m.pageSize], nil
}

// IsCommitted reports whether the page holding off is committed.
func (m *FakeMemory) IsCommitted(r *Region, off uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pages, ok := m.pages[r]
	if !ok || off >= r.Size() {
		return false
	}
	return pages[off/m.pageSize]
}

// CommittedBytes returns the committed bytes of r.
func (m *FakeMemory) CommittedBytes(r *Region) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n uintptr
	for _, c := range m.pages[r] {
		if c {
			n += m.pageSize
		}
	}
	return n
}

// Reserved returns the bytes reserved across live regions.
func (m *FakeMemory) Reserved() uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserved
}
