package foundation

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Options is the configuration of a Foundation.
type Options struct {
	// Memory is the virtual-memory backend. Nil selects NewSystemMemory.
	Memory Memory

	// Logger receives debug and warn records. Nil disables logging.
	//
	// Levels used:
	//   - slog.LevelDebug: reserve, commit, decommit, release
	//   - slog.LevelWarn: exhausted reservations and failed commits
	Logger *slog.Logger

	// Initial capacity of the allocator and API registries.
	RegistryCapacity int

	// DecommitOnFree returns pages above the new top to the OS when a stack
	// is rewound, and decommits freed heap blocks.
	DecommitOnFree bool

	// Synchronized guards every allocator with its own mutex.
	// Without it an allocator must stay confined to one goroutine.
	Synchronized bool

	// ZeroOnAlloc clears blocks that may hold data from before a Reset.
	ZeroOnAlloc bool
}

// DefaultOptions
var DefaultOptions = Options{
	RegistryCapacity: 64,
	DecommitOnFree:   true,
}

func checkOptions(options Options) error {
	if options.RegistryCapacity < 0 {
		return errors.Wrapf(ErrInvalidOptions, "registry capacity %d", options.RegistryCapacity)
	}
	if m := options.Memory; m != nil {
		page, gran := m.PageSize(), m.Granularity()
		if page == 0 || !IsPowerOfTwo(page) || gran < page || !IsPowerOfTwo(gran) {
			return errors.Wrapf(ErrInvalidOptions, "page size %d, granularity %d", page, gran)
		}
	}
	return nil
}
