package queue

// clearAllLocked empties every slot and every list, appending each
// cleared sequence to *deleted so the caller can fire delete callbacks
// once q.mu is released. q.mu must be held.
func (q *BufferQueue) clearAllLocked(deleted *[]uint32) {
	for s := range q.slots {
		delete(q.slots, s)
		q.gen.Release(s)
		*deleted = append(*deleted, s)
	}
	q.free = nil
	q.dirty = nil
	q.deleting = nil
	q.producerCacheClean = nil
	q.hasLastFlush = false
	q.lastFlushHold = 0
}

// CleanCache destroys every cached slot (firing delete callbacks for
// each), clears the producer-cache marker, and wakes waiters so a
// subsequent RequestBuffer reallocates from scratch. When cleanAll is
// true the queue's default dimensions (the ones Dump reports) are
// reset to zero as well.
func (q *BufferQueue) CleanCache(cleanAll bool) error {
	q.mu.Lock()
	var deleted []uint32
	q.clearAllLocked(&deleted)
	if cleanAll {
		q.defaultWidth = 0
		q.defaultHeight = 0
	}
	q.wakeReq()
	q.wakeAttach()
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	q.cleanCacheMu.Lock()
	l := q.cleanCache
	q.cleanCacheMu.Unlock()
	if l != nil {
		l.OnCleanCache()
	}
	return nil
}

// GoBackground tears the cache down the same way CleanCache does, but
// fires the go-background listener instead of the clean-cache one.
// Used when a surface's consumer moves out of the foreground and its
// buffer cache should be released under memory pressure.
func (q *BufferQueue) GoBackground() error {
	q.mu.Lock()
	var deleted []uint32
	q.clearAllLocked(&deleted)
	q.wakeReq()
	q.wakeAttach()
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	q.goBackgroundMu.Lock()
	l := q.goBackground
	q.goBackgroundMu.Unlock()
	if l != nil {
		l.OnGoBackground()
	}
	return nil
}

// OnConsumerDied tears the cache down the same way GoBackground/
// CleanCache do, plus marking the queue invalid so every pending and
// future RequestBuffer/AttachBuffer observes NO_CONSUMER instead of
// hanging. No listener is fired: a dead consumer has nothing left to
// hear it.
func (q *BufferQueue) OnConsumerDied() {
	q.mu.Lock()
	var deleted []uint32
	q.clearAllLocked(&deleted)
	q.valid = false
	q.wakeReq()
	q.wakeAttach()
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
}
