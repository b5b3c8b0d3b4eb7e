package foundation

import (
	"github.com/cockroachdb/errors"
)

// Linear is an arena allocator over one reserved address range.
// Physical pages are committed lazily as allocations reach them, and memory
// is only given back in bulk by Free, Reset or Destroy.
//
//	base                    allocated     committed              reserved
//	 |<------- in use -------->|<- backed ->|<------ address only ------>|
//	 +-------------------------+------------+----------------------------+
//
// Linear is not safe for concurrent use unless the Foundation was created
// with Options.Synchronized.
type Linear struct {
	reservation
	zero bool
}

// NewLinear reserves maxSize bytes, rounded up to the allocation granularity,
// and registers the allocator under name.
func NewLinear(f *Foundation, name string, maxSize uintptr) (*Linear, error) {
	l := &Linear{}
	if err := l.init(f, KindLinear, name, maxSize); err != nil {
		return nil, err
	}
	l.zero = f.options.ZeroOnAlloc
	if err := f.track(l); err != nil {
		_ = l.Destroy()
		return nil, err
	}
	return l, nil
}

// Info returns the allocator metadata.
func (l *Linear) Info() *AllocatorInfo {
	if l == nil {
		return nil
	}
	return &l.info
}

// Base returns the first address of the arena.
func (l *Linear) Base() uintptr {
	return l.Info().BaseAddress()
}

// Alloc returns size bytes from the arena.
func (l *Linear) Alloc(size uintptr) ([]byte, error) {
	return l.AllocAt(size, "", 0)
}

// AllocAt is Alloc with the caller's file and line recorded on the commit
// records it causes.
//
// The block starts at the top on entry. The padding that would bring that top
// to pointer alignment is charged in the same update as size, so it trails the
// block. Callers that need aligned blocks use a Stack with an alignment.
func (l *Linear) AllocAt(size uintptr, file string, line int) ([]byte, error) {
	if l == nil {
		return nil, ErrNilAllocator
	}
	l.info.mu.Lock()
	defer l.info.mu.Unlock()

	if l.region == nil {
		return nil, ErrDestroyed
	}
	info := &l.info

	padding := AlignPadding(info.baseAddress+info.bytesAllocated, PointerSize)
	if !l.fits(padding, size) {
		l.log.Warn("out of reserved space", "size", size, "allocated", info.bytesAllocated)
		return nil, errors.Wrapf(ErrOutOfSpace, "alloc %d bytes in %q", size, info.name)
	}

	start := info.bytesAllocated
	end := start + size + padding
	if err := l.ensureCommitted(end, file, line); err != nil {
		return nil, err
	}

	b := l.block(start, size, size)
	info.bytesAllocated = end
	info.numAllocs++

	if l.zero {
		clear(b)
	}
	return b, nil
}

// Reset rewinds the arena to empty and keeps the committed pages.
func (l *Linear) Reset() error {
	if l == nil {
		return ErrNilAllocator
	}
	l.info.mu.Lock()
	defer l.info.mu.Unlock()

	if l.region == nil {
		return ErrDestroyed
	}
	l.info.bytesAllocated = 0
	return nil
}

// Free decommits the whole arena and zeroes the usage metadata.
// The reservation is kept, so the allocator can be used again.
func (l *Linear) Free() error {
	if l == nil {
		return ErrNilAllocator
	}
	l.info.mu.Lock()
	defer l.info.mu.Unlock()

	if l.region == nil {
		return ErrDestroyed
	}
	if n := l.info.bytesCommitted; n > 0 {
		if err := l.mem.Decommit(l.region, 0, n); err != nil {
			return errors.Wrapf(err, "decommit %q", l.info.name)
		}
	}
	l.info.resetUsage()
	l.log.Debug("freed")
	return nil
}

// Destroy releases the reservation and unregisters the allocator.
// The allocator is unusable afterwards.
func (l *Linear) Destroy() error {
	if l == nil {
		return ErrNilAllocator
	}
	l.info.mu.Lock()
	if l.region == nil {
		l.info.mu.Unlock()
		return ErrDestroyed
	}
	err := l.release()
	l.info.mu.Unlock()

	l.f.untrack(l)
	return err
}
