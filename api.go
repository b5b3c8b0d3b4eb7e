package foundation

import (
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

// Names of the APIs every Foundation publishes.
const (
	LinearAllocatorAPI = "foundation.linear_allocator"
	StackAllocatorAPI  = "foundation.stack_allocator"
	HeapAllocatorAPI   = "foundation.heap_allocator"
	RegistryAPI        = "foundation.allocator_registry"

	apiVersion = "1.0.0"
)

// LinearAllocator is the published interface of the linear allocator kind.
type LinearAllocator struct {
	Create func(name string, maxSize uintptr) (*Linear, error)
}

// StackAllocator is the published interface of the stack allocator kind.
type StackAllocator struct {
	Create func(name string, maxSize uintptr) (*Stack, error)
}

// HeapAllocator is the published interface of the heap allocator kind.
type HeapAllocator struct {
	Create func(name string, maxSize uintptr) (*Heap, error)
}

// API is one published implementation.
type API struct {
	Name    string
	Version *semver.Version
	Impl    any
}

// APIRegistry maps API names to versioned implementations.
// A name holds one version at a time; Set replaces it.
//
// APIRegistry is safe for concurrent use.
type APIRegistry struct {
	mu    sync.RWMutex
	table *Table[*API]
}

// NewAPIRegistry returns an empty registry.
func NewAPIRegistry(capacity int) *APIRegistry {
	return &APIRegistry{table: NewTable[*API](capacity)}
}

// Set publishes impl under name with a semantic version.
func (r *APIRegistry) Set(name, version string, impl any) error {
	if name == "" || impl == nil {
		return errors.Wrapf(ErrInvalidOptions, "api %q", name)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "api %q version", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table == nil {
		return ErrClosed
	}
	r.table.Insert(name, &API{Name: strings.Clone(name), Version: v, Impl: impl})
	return nil
}

// Lookup returns the API published under name.
func (r *APIRegistry) Lookup(name string) (*API, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return nil, false
	}
	return r.table.Search(name)
}

// Get returns the implementation under name if its version satisfies
// constraint. An empty constraint accepts any version.
func (r *APIRegistry) Get(name, constraint string) (any, error) {
	api, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "api %q", name)
	}
	if constraint == "" {
		return api.Impl, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.Wrapf(err, "api %q constraint", name)
	}
	if !c.Check(api.Version) {
		return nil, errors.Wrapf(ErrNotFound, "api %q %s does not satisfy %q", name, api.Version, constraint)
	}
	return api.Impl, nil
}

// Remove unpublishes name.
func (r *APIRegistry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table == nil {
		return false
	}
	return r.table.Delete(name)
}

// Len returns the number of published APIs.
func (r *APIRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return 0
	}
	return r.table.Len()
}

// Close drops every API.
func (r *APIRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table != nil {
		r.table.Destroy()
		r.table = nil
	}
}

// GetAPI is Get with the implementation asserted to T.
func GetAPI[T any](r *APIRegistry, name, constraint string) (T, error) {
	var zero T
	impl, err := r.Get(name, constraint)
	if err != nil {
		return zero, err
	}
	t, ok := impl.(T)
	if !ok {
		return zero, errors.Wrapf(ErrNotFound, "api %q is %T", name, impl)
	}
	return t, nil
}

// publish registers the allocator kinds and the registry bound to f.
func (f *Foundation) publish() error {
	apis := []API{
		{Name: LinearAllocatorAPI, Impl: &LinearAllocator{
			Create: func(name string, maxSize uintptr) (*Linear, error) { return NewLinear(f, name, maxSize) },
		}},
		{Name: StackAllocatorAPI, Impl: &StackAllocator{
			Create: func(name string, maxSize uintptr) (*Stack, error) { return NewStack(f, name, maxSize) },
		}},
		{Name: HeapAllocatorAPI, Impl: &HeapAllocator{
			Create: func(name string, maxSize uintptr) (*Heap, error) { return NewHeap(f, name, maxSize) },
		}},
		{Name: RegistryAPI, Impl: f.registry},
	}
	for _, api := range apis {
		if err := f.apis.Set(api.Name, apiVersion, api.Impl); err != nil {
			return err
		}
	}
	return nil
}
