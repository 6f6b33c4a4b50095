// Package seq implements two process-wide identifier generators: the
// per-buffer sequence number (a wrapping 16-bit counter paired with a
// process-unique high part) and the 64-bit unique queue id (pid high,
// per-process counter low).
package seq

import (
	"os"
	"sync"

	"code.hybscloud.com/atomix"
)

// processID is computed once and reused by both generators below.
// Using the real OS pid keeps ids stable and distinguishable across
// processes sharing a single queue's remote transport, matching how
// the unique queue id is meant to be used as an external handle.
var processID = uint32(os.Getpid())

// Generator produces SurfaceBuffer sequence numbers: the low 16 bits
// are a per-process counter that wraps, the high 16 bits are a
// constant that makes sequences distinguishable across processes
// sharing a trace or dump file.
type Generator struct {
	high    uint16 // process-unique upper half, constant after construction
	counter atomix.Uint32

	mu    sync.Mutex
	inUse seqBitset // indexed by the low 16 bits of a sequence
}

// NewGenerator creates a Generator. high identifies the owning
// process in the upper 16 bits of every sequence it produces; a
// buffer package typically passes a value derived from processID.
func NewGenerator(high uint16) *Generator {
	return &Generator{high: high}
}

// Next returns a new, currently-unused sequence number. It wraps
// around the 16-bit counter; if every low-16 value is already
// marked in use (65536 live buffers in one process), it panics,
// since that indicates a leak rather than a condition callers can
// meaningfully recover from.
func (g *Generator) Next() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	for tries := 0; tries < 1<<16; tries++ {
		low := uint16(g.counter.AddAcqRel(1))
		if !g.inUse.isSet(low) {
			g.inUse.set(low)
			return uint32(g.high)<<16 | uint32(low)
		}
	}
	panic("seq: Generator exhausted all 65536 sequence numbers")
}

// Release marks seq's low-16 value as free for reuse. Callers must
// call this when a SurfaceBuffer built from seq is destroyed, so its
// low-16 value becomes available to a later Next call.
func (g *Generator) Release(seq uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inUse.unset(uint16(seq))
}

// InUse reports whether seq's low-16 value is currently allocated by
// g, so callers can check whether a given sequence is still live
// before acting on it.
func (g *Generator) InUse(seq uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inUse.isSet(uint16(seq))
}
