package queue

import (
	"time"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// oneSecondNanos is the drop-old-frames threshold: a dirty entry more
// than one second behind expectPresentTs is dropped rather than
// acquired.
const oneSecondNanos = int64(time.Second)

// AcquireResult is AcquireBuffer's output.
type AcquireResult struct {
	Seq       uint32
	Buf       *buffer.SurfaceBuffer
	Fence     fence.Fence
	Timestamp int64
	Damages   []Rect
	Extra     *extradata.ExtraData
}

// AcquireBuffer pops the dirty-list head, moves it to Acquired, and
// returns its fence/timestamp/damages.
func (q *BufferQueue) AcquireBuffer() (AcquireResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.dirty) == 0 {
		return AcquireResult{}, surferr.NoBufferErr("AcquireBuffer")
	}
	s := q.dirty[0]
	q.dirty = q.dirty[1:]
	return q.acquireSlotLocked(s), nil
}

func (q *BufferQueue) acquireSlotLocked(s uint32) AcquireResult {
	sl := q.slots[s]
	sl.state = Acquired
	return AcquireResult{
		Seq: s, Buf: sl.buf, Fence: sl.fence,
		Timestamp: sl.flushTimestamp, Damages: sl.damages, Extra: sl.extra,
	}
}

// AcquireBufferWithPresentTimestamp implements the timestamp-aware,
// drop-old-frames variant of AcquireBuffer: dirty entries whose
// desired present time is more than one second behind expectPresentTs
// are dropped — released as if by ReleaseBuffer, with their acquire
// fence becoming the release fence — until one that is due (its
// desired present time is at or before expectPresentTs, or it has no
// desired present time at all) is found and acquired. An entry whose
// desired present time is still in the future is left queued rather
// than acquired or dropped, and the scan stops there. If every
// remaining entry is either dropped as expired or left queued as not
// yet due, NO_BUFFER is returned.
func (q *BufferQueue) AcquireBufferWithPresentTimestamp(expectPresentTs int64) (AcquireResult, error) {
	q.mu.Lock()

	type droppedSlot struct {
		seq   uint32
		fence fence.Fence
	}
	var dropped []droppedSlot
	var deleted []uint32
	var result *AcquireResult
	for len(q.dirty) > 0 {
		s := q.dirty[0]
		sl := q.slots[s]
		if sl.presentTimestamp != 0 && expectPresentTs-sl.presentTimestamp > oneSecondNanos {
			q.dirty = q.dirty[1:]
			releaseFence := sl.fence
			q.dropFlushedSlotLocked(s, &deleted)
			dropped = append(dropped, droppedSlot{seq: s, fence: releaseFence})
			continue
		}
		if sl.presentTimestamp != 0 && sl.presentTimestamp > expectPresentTs {
			// Not yet due; leave it at the head of the dirty list for a
			// later Acquire and report NO_BUFFER for now.
			break
		}
		q.dirty = q.dirty[1:]
		r := q.acquireSlotLocked(s)
		result = &r
		break
	}
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	for _, d := range dropped {
		q.fireRelease(d.seq, d.fence)
	}

	if result == nil {
		return AcquireResult{}, surferr.NoBufferErr("AcquireBuffer")
	}
	return *result, nil
}

// dropFlushedSlotLocked treats a dropped dirty-list entry as if
// ReleaseBuffer had been called on it with its own acquire fence
// standing in as the release fence. q.mu must be held; any resulting
// delete is appended to *deleted for the caller to fire once q.mu is
// released.
func (q *BufferQueue) dropFlushedSlotLocked(s uint32, deleted *[]uint32) {
	sl := q.slots[s]
	sl.state = Released
	if sl.isDeleting {
		q.deleteSlotLocked(s, deleted)
		return
	}
	q.free = append(q.free, s)
	q.wakeReq()
	q.wakeAttach()
}
