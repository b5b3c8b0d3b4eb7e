package foundation

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// reservation is the part shared by every allocator: one reserved region,
// the metadata registered under the allocator's name, and the page commit
// bookkeeping for a committed prefix [0, BytesCommitted).
type reservation struct {
	f      *Foundation
	mem    Memory
	region *Region
	info   AllocatorInfo
	log    *slog.Logger
}

// init reserves maxSize rounded up to the allocation granularity and registers
// the metadata. Nothing is committed yet.
func (r *reservation) init(f *Foundation, kind Kind, name string, maxSize uintptr) error {
	if f == nil {
		return ErrNilFoundation
	}
	if f.isClosed() {
		return ErrClosed
	}
	mem := f.memory
	page, gran := mem.PageSize(), mem.Granularity()

	size := RoundUp(maxSize, gran)
	if size == 0 || size < maxSize {
		return errors.Wrapf(ErrReserveFailed, "cannot reserve %d bytes for %q", maxSize, name)
	}
	region, err := mem.Reserve(size)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "reserve %d bytes for %q", size, name), ErrReserveFailed)
	}

	r.f = f
	r.mem = mem
	r.region = region
	r.info = AllocatorInfo{
		name:          truncateName(name),
		kind:          kind,
		baseAddress:   region.Base(),
		pageSize:      page,
		granularity:   gran,
		bytesReserved: size,
		pagesReserved: size / page,
		mu:            f.newLocker(),
	}
	r.log = f.logger.With("allocator", r.info.name, "kind", kind.String())

	if err := f.registry.Register(&r.info); err != nil {
		_ = mem.Release(region)
		r.region = nil
		return err
	}
	r.log.Debug("reserved", "base", r.info.baseAddress, "bytes", size, "pages", r.info.pagesReserved)
	return nil
}

// fits reports whether size bytes, rounded up to whole pages, fit after the
// current top plus padding.
func (r *reservation) fits(padding, size uintptr) bool {
	info := &r.info
	rounded := RoundUp(size, info.pageSize)
	if rounded < size {
		return false
	}
	used := info.bytesAllocated + padding
	if used > info.bytesReserved {
		return false
	}
	return info.bytesReserved-used >= rounded
}

// ensureCommitted commits whole pages so that [0, end) is backed.
func (r *reservation) ensureCommitted(end uintptr, file string, line int) error {
	info := &r.info
	if end <= info.bytesCommitted {
		return nil
	}
	off := info.bytesCommitted
	size := RoundUp(end-off, info.pageSize)
	if err := r.mem.Commit(r.region, off, size); err != nil {
		r.log.Warn("commit failed", "offset", off, "bytes", size, "error", err)
		return errors.Mark(errors.Wrapf(err, "commit %d bytes at offset %d", size, off), ErrCommitFailed)
	}
	info.recordCommit(off, size, file, line)
	r.log.Debug("committed", "offset", off, "bytes", size, "pages", info.pagesCommitted)
	return nil
}

// decommitAbove returns the whole pages above top to the OS.
func (r *reservation) decommitAbove(top uintptr) error {
	info := &r.info
	keep := RoundUp(top, info.pageSize)
	if keep >= info.bytesCommitted {
		return nil
	}
	size := info.bytesCommitted - keep
	if err := r.mem.Decommit(r.region, keep, size); err != nil {
		return errors.Wrapf(err, "decommit %d bytes at offset %d", size, keep)
	}
	info.bytesCommitted = keep
	info.pagesCommitted = keep / info.pageSize
	r.log.Debug("decommitted", "offset", keep, "bytes", size)
	return nil
}

// release returns the region to the OS, unregisters and zeroes the metadata.
// The caller holds the info lock.
func (r *reservation) release() error {
	err := r.mem.Release(r.region)
	r.f.registry.Unregister(&r.info)
	r.log.Debug("released", "bytes", r.info.bytesReserved)

	r.info = AllocatorInfo{mu: r.info.mu}
	r.region = nil
	return errors.Wrap(err, "release")
}

// block returns the bytes of [off, off+size) with capacity capped at limit.
func (r *reservation) block(off, size, limit uintptr) []byte {
	return r.region.data[off : off+size : off+limit]
}
