package queue

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
)

// SlotState is a buffer slot's position in the state machine spec
// §4.3 defines: RELEASED -> REQUESTED -> FLUSHED -> ACQUIRED ->
// RELEASED, with AttachBuffer able to drop any slot straight into
// ATTACHED.
type SlotState int

const (
	Released SlotState = iota
	Requested
	Flushed
	Acquired
	Attached
)

func (s SlotState) String() string {
	switch s {
	case Released:
		return "RELEASED"
	case Requested:
		return "REQUESTED"
	case Flushed:
		return "FLUSHED"
	case Acquired:
		return "ACQUIRED"
	case Attached:
		return "ATTACHED"
	default:
		return "UNKNOWN"
	}
}

// Rect is a damage/crop rectangle in buffer pixel coordinates.
type Rect struct {
	X, Y, W, H int32
}

// Valid reports whether r has non-negative width and height, the
// only shape FlushBuffer accepts for a damage rectangle.
func (r Rect) Valid() bool { return r.W >= 0 && r.H >= 0 }

// slot is one entry in a BufferQueue's cache, keyed by sequence
// number in BufferQueue.slots.
type slot struct {
	buf   *buffer.SurfaceBuffer
	state SlotState

	// fence is the slot's last associated sync fence: the release
	// fence while RELEASED/REQUESTED, the acquire fence while
	// FLUSHED/ACQUIRED.
	fence fence.Fence

	flushTimestamp   int64
	presentTimestamp int64 // desired present time; 0 means "not set"
	damages          []Rect

	scalingMode buffer.ScalingMode
	extra       *extradata.ExtraData
	tunnel      []byte

	cfg        buffer.Config
	isDeleting bool
}
