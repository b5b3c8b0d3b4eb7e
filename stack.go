package foundation

import (
	"github.com/cockroachdb/errors"
)

// Stack is a LIFO arena. Every Alloc returns the Marker of the top before the
// allocation; Free rewinds to a marker and releases everything allocated after it.
//
//	m1 := stack.Top()
//	a, m2, _ := stack.Alloc(64, 16)
//	b, _, _ := stack.Alloc(128, 0)
//	stack.Free(m2) // releases a and b
//	stack.Free(m1) // no-op, already there
//
// With Options.DecommitOnFree, whole pages above the new top are decommitted.
type Stack struct {
	reservation
	tops     Array[uintptr] // top before each live allocation, by depth
	depth    uint16
	decommit bool
	zero     bool
}

// NewStack reserves maxSize bytes, rounded up to the allocation granularity,
// and registers the allocator under name.
func NewStack(f *Foundation, name string, maxSize uintptr) (*Stack, error) {
	s := &Stack{}
	if err := s.init(f, KindStack, name, maxSize); err != nil {
		return nil, err
	}
	s.decommit = f.options.DecommitOnFree
	s.zero = f.options.ZeroOnAlloc
	if err := f.track(s); err != nil {
		_ = s.Destroy()
		return nil, err
	}
	return s, nil
}

// Info returns the allocator metadata.
func (s *Stack) Info() *AllocatorInfo {
	if s == nil {
		return nil
	}
	return &s.info
}

// Alloc returns size bytes aligned to alignment, and the marker to free them.
// An alignment of 0 means pointer alignment.
func (s *Stack) Alloc(size, alignment uintptr) ([]byte, Marker, error) {
	return s.AllocAt(size, alignment, "", 0)
}

// AllocAt is Alloc with the caller's file and line recorded on commit records.
func (s *Stack) AllocAt(size, alignment uintptr, file string, line int) ([]byte, Marker, error) {
	if s == nil {
		return nil, 0, ErrNilAllocator
	}
	if alignment == 0 {
		alignment = PointerSize
	}
	if !IsPowerOfTwo(alignment) {
		return nil, 0, errors.Wrapf(ErrBadAlignment, "alignment %d", alignment)
	}
	s.info.mu.Lock()
	defer s.info.mu.Unlock()

	if s.region == nil {
		return nil, 0, ErrDestroyed
	}
	if s.depth == maxStackDepth {
		return nil, 0, ErrStackTooDeep
	}
	info := &s.info

	padding := AlignPadding(info.baseAddress+info.bytesAllocated, alignment)
	if !s.fits(padding, size) {
		s.log.Warn("out of reserved space", "size", size, "allocated", info.bytesAllocated)
		return nil, 0, errors.Wrapf(ErrOutOfSpace, "alloc %d bytes in %q", size, info.name)
	}

	mark := newMarker(info.bytesAllocated, s.depth)
	start := info.bytesAllocated + padding
	end := start + size
	if err := s.ensureCommitted(end, file, line); err != nil {
		return nil, 0, err
	}

	b := s.block(start, size, size)
	s.tops.PushBack(info.bytesAllocated)
	info.bytesAllocated = end
	info.numAllocs++
	s.depth++

	if s.zero {
		clear(b)
	}
	return b, mark, nil
}

// Top returns a marker for the current top.
func (s *Stack) Top() Marker {
	if s == nil {
		return 0
	}
	s.info.mu.Lock()
	defer s.info.mu.Unlock()
	return newMarker(s.info.bytesAllocated, s.depth)
}

// Free rewinds the top to m. A marker is valid while the allocation it was
// returned for is live, or when it is the current top. Any other marker is
// stale, including one whose allocation was freed and whose depth was reused.
func (s *Stack) Free(m Marker) error {
	if s == nil {
		return ErrNilAllocator
	}
	s.info.mu.Lock()
	defer s.info.mu.Unlock()

	if s.region == nil {
		return ErrDestroyed
	}
	if !s.valid(m) {
		return errors.Wrapf(ErrStaleMarker, "marker at %d depth %d, top at %d depth %d",
			m.Offset(), m.Depth(), s.info.bytesAllocated, s.depth)
	}
	return s.rewind(m)
}

// Reset rewinds the stack to empty.
func (s *Stack) Reset() error {
	if s == nil {
		return ErrNilAllocator
	}
	s.info.mu.Lock()
	defer s.info.mu.Unlock()

	if s.region == nil {
		return ErrDestroyed
	}
	return s.rewind(0)
}

func (s *Stack) valid(m Marker) bool {
	if m.Depth() == s.depth {
		return m.Offset() == s.info.bytesAllocated
	}
	return m.Depth() < s.depth && s.tops.At(int(m.Depth())) == m.Offset()
}

func (s *Stack) rewind(m Marker) error {
	s.info.bytesAllocated = m.Offset()
	s.depth = m.Depth()
	s.tops.Resize(int(m.Depth()))
	if s.decommit {
		return s.decommitAbove(s.info.bytesAllocated)
	}
	return nil
}

// Destroy releases the reservation and unregisters the allocator.
func (s *Stack) Destroy() error {
	if s == nil {
		return ErrNilAllocator
	}
	s.info.mu.Lock()
	if s.region == nil {
		s.info.mu.Unlock()
		return ErrDestroyed
	}
	err := s.release()
	s.depth = 0
	s.tops.Free()
	s.info.mu.Unlock()

	s.f.untrack(s)
	return err
}
