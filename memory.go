package foundation

import (
	"github.com/cockroachdb/errors"
)

// defaultGranularity is the reservation granularity used where the OS does not
// report one. It matches the Windows allocation granularity.
const defaultGranularity = 64 << 10

// Memory is the virtual-memory backend of the allocators.
//
// Reserve takes address space without physical backing, Commit backs a
// page-aligned sub-range, Decommit drops the backing but keeps the
// reservation, and Release returns the whole range to the OS.
type Memory interface {
	PageSize() uintptr
	Granularity() uintptr
	Reserve(size uintptr) (*Region, error)
	Commit(r *Region, off, size uintptr) error
	Decommit(r *Region, off, size uintptr) error
	Release(r *Region) error
}

// Region is a reserved address range. Only committed pages may be touched.
type Region struct {
	data []byte
}

// Base returns the first address of the region.
func (r *Region) Base() uintptr {
	if r == nil {
		return 0
	}
	return sliceBase(r.data)
}

// Size returns the reserved size in bytes.
func (r *Region) Size() uintptr {
	if r == nil {
		return 0
	}
	return uintptr(len(r.data))
}

// Bytes returns the whole reserved range.
func (r *Region) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.data
}

// span returns the bytes of [off, off+size) after checking page alignment and bounds.
func (r *Region) span(off, size, pageSize uintptr) ([]byte, error) {
	if r == nil || r.data == nil {
		return nil, errors.Wrap(ErrBadRange, "released region")
	}
	if off%pageSize != 0 || size%pageSize != 0 {
		return nil, errors.Wrapf(ErrBadRange, "unaligned range off=%d size=%d page=%d", off, size, pageSize)
	}
	if off > r.Size() || size > r.Size()-off {
		return nil, errors.Wrapf(ErrBadRange, "range off=%d size=%d exceeds region of %d bytes", off, size, r.Size())
	}
	return r.data[off : off+size], nil
}
