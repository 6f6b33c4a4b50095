package queue

import "github.com/neo3gfx/graphicsurface/fence"

// ReleaseBuffer moves an acquired or attached slot back to Released,
// carrying releaseFence forward as its new fence, and either rejoins
// the free list or, if marked for deletion, is destroyed outright.
func (q *BufferQueue) ReleaseBuffer(s uint32, releaseFence fence.Fence) error {
	q.mu.Lock()

	sl, ok := q.slots[s]
	if !ok {
		q.mu.Unlock()
		return errNoEntry("ReleaseBuffer")
	}
	if sl.state != Acquired && sl.state != Attached {
		q.mu.Unlock()
		return errInvalidOp("ReleaseBuffer")
	}

	sl.state = Released
	sl.fence = releaseFence
	var deleted []uint32
	if sl.isDeleting {
		q.deleteSlotLocked(s, &deleted)
	} else {
		q.free = append(q.free, s)
	}
	q.wakeReq()
	q.wakeAttach()
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	q.fireRelease(s, releaseFence)
	return nil
}

// CancelBuffer returns a requested or attached slot without ever
// flushing it: it returns to Released and rejoins the free list
// immediately (no fence is attached — the producer never wrote
// anything worth waiting on).
func (q *BufferQueue) CancelBuffer(s uint32) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sl, ok := q.slots[s]
	if !ok {
		return errNoEntry("CancelBuffer")
	}
	if sl.state != Requested && sl.state != Attached {
		return errInvalidOp("CancelBuffer")
	}
	sl.state = Released
	q.free = append(q.free, s)
	q.wakeReq()
	q.wakeAttach()
	return nil
}
