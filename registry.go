package foundation

import (
	"sync"

	"github.com/bytedance/sonic"
)

// Registry is a name-keyed directory of live allocator metadata.
// It holds non-owning pointers: an allocator unregisters itself on Destroy.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	table *Table[*AllocatorInfo]
}

// NewRegistry returns an empty registry.
func NewRegistry(capacity int) *Registry {
	return &Registry{table: NewTable[*AllocatorInfo](capacity)}
}

// Register adds info under its name. A second info with the same name
// replaces the first one's entry.
func (r *Registry) Register(info *AllocatorInfo) error {
	if info == nil {
		return ErrNilAllocator
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table == nil {
		return ErrClosed
	}
	r.table.Insert(info.name, info)
	return nil
}

// Unregister removes the entry for info's name if it still points at info.
func (r *Registry) Unregister(info *AllocatorInfo) bool {
	if info == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table == nil {
		return false
	}
	if cur, ok := r.table.Search(info.name); !ok || cur != info {
		return false
	}
	return r.table.Delete(info.name)
}

// Len returns the number of registered allocators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return 0
	}
	return r.table.Len()
}

// ByName returns the info registered under name, or nil.
func (r *Registry) ByName(name string) *AllocatorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return nil
	}
	info, _ := r.table.Search(name)
	return info
}

// ByIndex returns the i-th registered info in table order, or nil.
// It scans the table; use All to visit every entry.
func (r *Registry) ByIndex(i int) *AllocatorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return nil
	}
	_, info, _ := r.table.EntryAt(i)
	return info
}

// All calls f for every registered info until f returns false.
// f must not call back into the registry.
func (r *Registry) All(f func(*AllocatorInfo) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return
	}
	r.table.All(func(_ string, info *AllocatorInfo) bool {
		return f(info)
	})
}

// Snapshot returns a copy of every registered allocator's metadata.
func (r *Registry) Snapshot() []AllocatorStat {
	var infos Array[*AllocatorInfo]
	r.All(func(info *AllocatorInfo) bool {
		infos.PushBack(info)
		return true
	})

	// allocators lock their info and then the registry on Destroy,
	// so Stat runs outside of the registry lock.
	stats := make([]AllocatorStat, 0, infos.Size())
	infos.All(func(_ int, info *AllocatorInfo) bool {
		stats = append(stats, info.Stat())
		return true
	})
	return stats
}

// MarshalJSON encodes the snapshot.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(r.Snapshot())
}

// Close drops every entry. Later registrations fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table != nil {
		r.table.Destroy()
		r.table = nil
	}
}
