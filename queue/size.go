package queue

// SetQueueSize changes the queue's slot-count limit. n must be in
// [1, SurfaceMaxQueueSize]; a shared queue is pinned to n=1. Shrinking
// deletes the excess slots (free-list heads first, then dirty-list
// heads, then marking still-held slots isDeleting so they are deleted
// on their next ReleaseBuffer/DetachBuffer); growing simply raises the
// limit and wakes request waiters.
func (q *BufferQueue) SetQueueSize(n int) error {
	if n < 1 || n > SurfaceMaxQueueSize {
		return errInvalidArg("SetQueueSize")
	}

	q.mu.Lock()

	if q.shared && n != 1 {
		q.mu.Unlock()
		return errInvalidArg("SetQueueSize")
	}

	old := q.queueSize
	q.queueSize = n
	var deleted []uint32
	if n < old {
		q.deleteBuffersLocked(old-n, &deleted)
	} else if n > old {
		q.wakeReq()
	}
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	return nil
}

// deleteBuffersLocked destroys up to n slots, preferring free-list
// heads, then dirty-list heads, and finally marking any remaining
// still-held slots isDeleting so a later ReleaseBuffer or DetachBuffer
// destroys them instead of returning them to circulation. q.mu must
// be held. Deleted sequences are appended to *deleted for the caller
// to fire delete callbacks with once q.mu is released.
func (q *BufferQueue) deleteBuffersLocked(n int, deleted *[]uint32) {
	for n > 0 && len(q.free) > 0 {
		s := q.free[0]
		q.free = q.free[1:]
		q.deleteSlotLocked(s, deleted)
		n--
	}
	for n > 0 && len(q.dirty) > 0 {
		s := q.dirty[0]
		q.dirty = q.dirty[1:]
		q.deleteSlotLocked(s, deleted)
		n--
	}
	for n > 0 {
		marked := false
		for s, sl := range q.slots {
			if sl.isDeleting {
				continue
			}
			switch sl.state {
			case Requested, Acquired, Attached:
				sl.isDeleting = true
				marked = true
				n--
			}
			_ = s
			if marked {
				break
			}
		}
		if !marked {
			return
		}
	}
}
