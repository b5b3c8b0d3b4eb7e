package foundation

import "github.com/cockroachdb/errors"

var (
	// ErrNilAllocator is returned when a method is called on a nil allocator.
	ErrNilAllocator = errors.New("foundation: nil allocator")

	// ErrNilFoundation is returned when an allocator is created without a Foundation.
	ErrNilFoundation = errors.New("foundation: nil foundation")

	// ErrOutOfSpace indicates the reserved address range cannot hold the request.
	ErrOutOfSpace = errors.New("foundation: out of reserved space")

	// ErrReserveFailed indicates the address range could not be reserved.
	ErrReserveFailed = errors.New("foundation: reserve failed")

	// ErrCommitFailed indicates physical pages could not be committed.
	ErrCommitFailed = errors.New("foundation: commit failed")

	// ErrDestroyed is returned by allocators after Destroy.
	ErrDestroyed = errors.New("foundation: allocator destroyed")

	// ErrStaleMarker indicates a stack marker above the current top.
	ErrStaleMarker = errors.New("foundation: stale stack marker")

	// ErrStackTooDeep indicates the stack ran out of marker depth.
	ErrStackTooDeep = errors.New("foundation: stack too deep")

	// ErrBadAlignment indicates an alignment that is not a power of two.
	ErrBadAlignment = errors.New("foundation: alignment must be a power of two")

	// ErrBadBlock indicates a block that was not handed out by the allocator.
	ErrBadBlock = errors.New("foundation: bad block")

	// ErrBadRange indicates an offset or size outside of a reserved region.
	ErrBadRange = errors.New("foundation: range outside region")

	// ErrInvalidOptions indicates invalid Options.
	ErrInvalidOptions = errors.New("foundation: invalid options")

	// ErrNotFound indicates a missing registry entry.
	ErrNotFound = errors.New("foundation: not found")

	// ErrClosed is returned once the Foundation has been closed.
	ErrClosed = errors.New("foundation: closed")
)
