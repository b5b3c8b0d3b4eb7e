package foundation

import (
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
)

// destroyer is an allocator owned by a Foundation.
type destroyer interface {
	Info() *AllocatorInfo
	Destroy() error
}

// Foundation is the memory context of an application. It owns the virtual
// memory backend, the registry of live allocators and the API registry the
// allocator kinds publish themselves into.
//
// Allocators are created against a Foundation and destroyed by Close if the
// caller has not destroyed them already.
type Foundation struct {
	mu       sync.Mutex
	options  Options
	memory   Memory
	logger   *slog.Logger
	registry *Registry
	apis     *APIRegistry
	owned    Array[destroyer]
	closed   bool
}

// New creates a Foundation.
func New(options Options) (*Foundation, error) {
	if err := checkOptions(options); err != nil {
		return nil, err
	}
	if options.Memory == nil {
		options.Memory = NewSystemMemory()
	}
	if options.Logger == nil {
		options.Logger = newNopLogger()
	}

	f := &Foundation{
		options:  options,
		memory:   options.Memory,
		logger:   options.Logger,
		registry: NewRegistry(options.RegistryCapacity),
		apis:     NewAPIRegistry(options.RegistryCapacity),
	}
	if err := f.publish(); err != nil {
		return nil, err
	}
	f.logger.Debug("foundation created",
		"page_size", f.memory.PageSize(),
		"granularity", f.memory.Granularity(),
		"synchronized", options.Synchronized)
	return f, nil
}

// Registry returns the registry of live allocators.
func (f *Foundation) Registry() *Registry { return f.registry }

// APIs returns the API registry.
func (f *Foundation) APIs() *APIRegistry { return f.apis }

// Memory returns the virtual memory backend.
func (f *Foundation) Memory() Memory { return f.memory }

// Logger returns the logger.
func (f *Foundation) Logger() *slog.Logger { return f.logger }

func (f *Foundation) newLocker() sync.Locker {
	if f.options.Synchronized {
		return &sync.Mutex{}
	}
	return nopLocker{}
}

func (f *Foundation) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Foundation) track(d destroyer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	f.owned.PushBack(d)
	return nil
}

func (f *Foundation) untrack(d destroyer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, o := range f.owned.Slice() {
		if o == d {
			f.owned.Erase(i)
			return
		}
	}
}

// Close destroys every allocator still alive, newest first, and closes both
// registries. The Foundation cannot create allocators afterwards.
func (f *Foundation) Close() error {
	if f == nil {
		return ErrNilFoundation
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.closed = true
	owned := f.owned.Slice()
	f.owned = Array[destroyer]{}
	f.mu.Unlock()

	var err error
	for i := len(owned) - 1; i >= 0; i-- {
		d := owned[i]
		name := d.Info().Name()
		if e := d.Destroy(); e != nil && !errors.Is(e, ErrDestroyed) {
			err = errors.CombineErrors(err, errors.Wrapf(e, "destroy %q", name))
		}
	}
	f.registry.Close()
	f.apis.Close()
	f.logger.Debug("foundation closed", "destroyed", len(owned))
	return err
}
