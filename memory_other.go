//go:build !unix && !windows

package foundation

import "github.com/cockroachdb/errors"

type systemMemory struct{}

// NewSystemMemory returns a heap-backed backend when virtual memory is not available.
// Reserve allocates the whole range up front; Commit and Decommit only check bounds.
func NewSystemMemory() Memory {
	return systemMemory{}
}

func (systemMemory) PageSize() uintptr    { return 4096 }
func (systemMemory) Granularity() uintptr { return defaultGranularity }

func (m systemMemory) Reserve(size uintptr) (*Region, error) {
	if size == 0 || size%m.PageSize() != 0 {
		return nil, errors.Wrapf(ErrBadRange, "reserve size %d", size)
	}
	return &Region{data: make([]byte, size)}, nil
}

func (m systemMemory) Commit(r *Region, off, size uintptr) error {
	_, err := r.span(off, size, m.PageSize())
	return err
}

func (m systemMemory) Decommit(r *Region, off, size uintptr) error {
	b, err := r.span(off, size, m.PageSize())
	if err != nil {
		return err
	}
	clear(b)
	return nil
}

func (systemMemory) Release(r *Region) error {
	if r != nil {
		r.data = nil
	}
	return nil
}
