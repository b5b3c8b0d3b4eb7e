package foundation

import "sync"

// MaxNameLength is the longest allocator name kept; longer names are truncated.
const MaxNameLength = 63

// Kind is the allocator family of an AllocatorInfo.
type Kind uint8

const (
	KindLinear Kind = iota + 1
	KindStack
	KindHeap
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindStack:
		return "stack"
	case KindHeap:
		return "heap"
	}
	return "unknown"
}

// AllocationRecord describes one page-commit event, not a user allocation.
// File and Line carry the provenance of the Alloc call that caused the commit.
type AllocationRecord struct {
	Address uintptr `json:"address"`
	Size    uintptr `json:"size"`
	File    string  `json:"file,omitempty"`
	Line    int     `json:"line,omitempty"`
}

// AllocatorInfo is the metadata of one allocator. It is owned by the allocator
// and only referenced by the Registry.
//
// BytesAllocated <= BytesCommitted <= BytesReserved holds after every call.
//
// The accessors are nil-safe and do not lock; use Stat for a consistent copy
// of an allocator that is used concurrently.
type AllocatorInfo struct {
	name        string
	kind        Kind
	baseAddress uintptr

	pageSize    uintptr
	granularity uintptr

	bytesReserved  uintptr
	bytesCommitted uintptr
	bytesAllocated uintptr
	pagesReserved  uintptr
	pagesCommitted uintptr
	numAllocs      uint64

	allocationData Array[AllocationRecord]

	mu sync.Locker
}

func truncateName(name string) string {
	if len(name) > MaxNameLength {
		return name[:MaxNameLength]
	}
	return name
}

// Name returns the allocator name, or "NULL" for a nil info.
func (i *AllocatorInfo) Name() string {
	if i == nil {
		return "NULL"
	}
	return i.name
}

// Kind returns the allocator family.
func (i *AllocatorInfo) Kind() Kind {
	if i == nil {
		return 0
	}
	return i.kind
}

// BaseAddress returns the first address of the arena.
func (i *AllocatorInfo) BaseAddress() uintptr {
	if i == nil {
		return 0
	}
	return i.baseAddress
}

// PageSize returns the OS page size seen at creation.
func (i *AllocatorInfo) PageSize() uintptr {
	if i == nil {
		return 0
	}
	return i.pageSize
}

// AllocationGranularity returns the OS reservation granularity seen at creation.
func (i *AllocatorInfo) AllocationGranularity() uintptr {
	if i == nil {
		return 0
	}
	return i.granularity
}

func (i *AllocatorInfo) BytesReserved() uintptr {
	if i == nil {
		return 0
	}
	return i.bytesReserved
}

func (i *AllocatorInfo) BytesCommitted() uintptr {
	if i == nil {
		return 0
	}
	return i.bytesCommitted
}

func (i *AllocatorInfo) BytesAllocated() uintptr {
	if i == nil {
		return 0
	}
	return i.bytesAllocated
}

func (i *AllocatorInfo) PagesReserved() uintptr {
	if i == nil {
		return 0
	}
	return i.pagesReserved
}

func (i *AllocatorInfo) PagesCommitted() uintptr {
	if i == nil {
		return 0
	}
	return i.pagesCommitted
}

// NumAllocs counts Alloc calls; it is never decremented by frees.
func (i *AllocatorInfo) NumAllocs() uint64 {
	if i == nil {
		return 0
	}
	return i.numAllocs
}

// AllocationData returns the commit records. The slice is shared with the
// allocator and is invalidated by its next commit.
func (i *AllocatorInfo) AllocationData() []AllocationRecord {
	if i == nil {
		return nil
	}
	return i.allocationData.Slice()
}

// Stat returns a copy of the metadata taken under the allocator lock.
func (i *AllocatorInfo) Stat() AllocatorStat {
	if i == nil {
		return AllocatorStat{Name: "NULL"}
	}
	if i.mu != nil {
		i.mu.Lock()
		defer i.mu.Unlock()
	}
	records := make([]AllocationRecord, i.allocationData.Size())
	copy(records, i.allocationData.Slice())

	return AllocatorStat{
		Name:           i.name,
		Kind:           i.kind.String(),
		BaseAddress:    uint64(i.baseAddress),
		PageSize:       uint64(i.pageSize),
		Granularity:    uint64(i.granularity),
		BytesReserved:  uint64(i.bytesReserved),
		BytesCommitted: uint64(i.bytesCommitted),
		BytesAllocated: uint64(i.bytesAllocated),
		PagesReserved:  uint64(i.pagesReserved),
		PagesCommitted: uint64(i.pagesCommitted),
		NumAllocs:      i.numAllocs,
		AllocationData: records,
	}
}

// recordCommit updates the committed counters and logs the commit event.
func (i *AllocatorInfo) recordCommit(off, size uintptr, file string, line int) {
	i.bytesCommitted += size
	i.pagesCommitted = i.bytesCommitted / i.pageSize
	i.allocationData.PushBack(AllocationRecord{
		Address: i.baseAddress + off,
		Size:    size,
		File:    file,
		Line:    line,
	})
}

// resetUsage zeroes the usage counters and keeps the identity of the arena.
func (i *AllocatorInfo) resetUsage() {
	i.bytesCommitted = 0
	i.bytesAllocated = 0
	i.pagesCommitted = 0
	i.numAllocs = 0
	i.allocationData.Free()
}
