package buffer

// Allocator is the external graphics-memory collaborator: the thing
// that actually reserves device memory, maps it into this process,
// and keeps CPU/device views of it coherent. The queue and surface
// packages never talk to a real allocator directly — they hold an
// Allocator and go through this package.
//
// A production Allocator talks to a display HAL or a DMA-BUF/gralloc
// style service; tests substitute an in-memory fake.
type Allocator interface {
	// Alloc reserves memory for cfg and returns the resulting Handle.
	// previous, if non-nil, is the buffer being replaced (e.g. when
	// RequestBuffer reallocates a free slot for a different config); an
	// Allocator may use it as a hint but must not assume its memory can
	// be reused in place.
	Alloc(cfg Config, previous *Handle) (Handle, error)
	// Free releases h. Called once a buffer is permanently retired.
	Free(h Handle) error
	// Map establishes a CPU mapping for h, updating h.VirtAddr.
	Map(h *Handle) error
	// Unmap tears down the CPU mapping established by Map.
	Unmap(h *Handle) error
	// FlushCache pushes CPU writes out to the memory the device reads.
	FlushCache(h Handle) error
	// InvalidateCache discards any stale CPU cache lines so a
	// subsequent read observes what the device last wrote.
	InvalidateCache(h Handle) error
}
