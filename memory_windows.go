//go:build windows

package foundation

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

type systemMemory struct {
	pageSize    uintptr
	granularity uintptr
}

// NewSystemMemory returns the OS backend built on VirtualAlloc and VirtualFree.
func NewSystemMemory() Memory {
	return &systemMemory{
		pageSize:    uintptr(windows.Getpagesize()),
		granularity: defaultGranularity,
	}
}

func (m *systemMemory) PageSize() uintptr    { return m.pageSize }
func (m *systemMemory) Granularity() uintptr { return m.granularity }

func (m *systemMemory) Reserve(size uintptr) (*Region, error) {
	if size == 0 || size%m.pageSize != 0 {
		return nil, errors.Wrapf(ErrBadRange, "reserve size %d", size)
	}
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, errors.Wrapf(err, "VirtualAlloc reserve %d bytes", size)
	}
	return &Region{data: unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)}, nil
}

func (m *systemMemory) Commit(r *Region, off, size uintptr) error {
	b, err := r.span(off, size, m.pageSize)
	if err != nil || size == 0 {
		return err
	}
	_, err = windows.VirtualAlloc(sliceBase(b), size, windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return errors.Wrapf(err, "VirtualAlloc commit off=%d size=%d", off, size)
}

func (m *systemMemory) Decommit(r *Region, off, size uintptr) error {
	b, err := r.span(off, size, m.pageSize)
	if err != nil || size == 0 {
		return err
	}
	return errors.Wrapf(windows.VirtualFree(sliceBase(b), size, windows.MEM_DECOMMIT), "VirtualFree decommit off=%d size=%d", off, size)
}

func (m *systemMemory) Release(r *Region) error {
	if r == nil || r.data == nil {
		return nil
	}
	err := windows.VirtualFree(r.Base(), 0, windows.MEM_RELEASE)
	r.data = nil
	return errors.Wrap(err, "VirtualFree release")
}
