//go:build unix

package foundation

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

type systemMemory struct {
	pageSize    uintptr
	granularity uintptr
}

// NewSystemMemory returns the OS backend: anonymous PROT_NONE mappings,
// mprotect to commit and madvise to decommit.
func NewSystemMemory() Memory {
	page := uintptr(unix.Getpagesize())
	return &systemMemory{
		pageSize:    page,
		granularity: max(page, defaultGranularity),
	}
}

func (m *systemMemory) PageSize() uintptr    { return m.pageSize }
func (m *systemMemory) Granularity() uintptr { return m.granularity }

func (m *systemMemory) Reserve(size uintptr) (*Region, error) {
	if size == 0 || size%m.pageSize != 0 {
		return nil, errors.Wrapf(ErrBadRange, "reserve size %d", size)
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	return &Region{data: data}, nil
}

func (m *systemMemory) Commit(r *Region, off, size uintptr) error {
	b, err := r.span(off, size, m.pageSize)
	if err != nil || size == 0 {
		return err
	}
	return errors.Wrapf(unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE), "mprotect off=%d size=%d", off, size)
}

func (m *systemMemory) Decommit(r *Region, off, size uintptr) error {
	b, err := r.span(off, size, m.pageSize)
	if err != nil || size == 0 {
		return err
	}
	if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return errors.Wrapf(err, "madvise off=%d size=%d", off, size)
	}
	return errors.Wrapf(unix.Mprotect(b, unix.PROT_NONE), "mprotect off=%d size=%d", off, size)
}

func (m *systemMemory) Release(r *Region) error {
	if r == nil || r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	if errors.Is(err, unix.EINVAL) {
		// double release
		err = nil
	}
	r.data = nil
	return err
}
