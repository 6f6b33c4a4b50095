package queue

import (
	"time"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
)

// Invoker distinguishes which side of the protocol called
// DetachBuffer, since the slot state it requires differs: a producer
// detaches a Requested slot, a consumer an Acquired one. An Attached
// slot satisfies either side, since it is treated as belonging to
// whichever side invoked AttachBuffer on it.
type Invoker int

const (
	ProducerInvoker Invoker = iota
	ConsumerInvoker
)

// AttachBuffer hands an externally-owned buffer over to the queue.
// buf's own sequence number (buf.Seq()) identifies the slot: if it
// already exists in cache this waits for it to become Released and
// takes it over; otherwise a brand-new entry is inserted directly
// into Attached, synthesizing a Config from the buffer's own
// dimensions.
func (q *BufferQueue) AttachBuffer(buf *buffer.SurfaceBuffer, timeoutMs int32) error {
	s := buf.Seq()
	var deleted []uint32

	q.mu.Lock()
	if !q.valid {
		q.mu.Unlock()
		return errNoConsumer("AttachBuffer")
	}

	if sl, ok := q.slots[s]; ok {
		for sl.state != Released {
			if timeoutMs <= 0 {
				q.mu.Unlock()
				return errInvalidOp("AttachBuffer")
			}
			if !q.waitOn(q.attachWake, time.Duration(timeoutMs)*time.Millisecond) {
				q.mu.Unlock()
				return errInvalidOp("AttachBuffer")
			}
			if !q.valid {
				q.mu.Unlock()
				return errNoConsumer("AttachBuffer")
			}
			sl, ok = q.slots[s]
			if !ok {
				q.mu.Unlock()
				return errNoEntry("AttachBuffer")
			}
		}
		sl.state = Attached
		q.free = removeFirst(q.free, s)
		q.mu.Unlock()
		return nil
	}

	h := buf.Handle()
	cfg := buffer.Config{Width: h.Width, Height: h.Height, Format: h.Format, Usage: h.Usage}

	if need := cacheCount(q) + 1 - q.queueSize; need > 0 {
		if len(q.free)+len(q.dirty) < need {
			q.mu.Unlock()
			return errOutOfRange("AttachBuffer")
		}
		q.deleteBuffersLocked(need, &deleted)
	}

	q.slots[s] = &slot{buf: buf, state: Attached, cfg: cfg, extra: extradata.New(), fence: fence.Invalid}
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	return nil
}

// DetachBuffer erases a slot's cache entry, fires delete callbacks,
// and appends the sequence to the deleting list so the next
// RequestBuffer reports it to the caller.
func (q *BufferQueue) DetachBuffer(s uint32, invoker Invoker) error {
	q.mu.Lock()

	sl, ok := q.slots[s]
	if !ok {
		q.mu.Unlock()
		return errNoEntry("DetachBuffer")
	}

	var ok2 bool
	switch invoker {
	case ProducerInvoker:
		ok2 = sl.state == Requested || sl.state == Attached
	case ConsumerInvoker:
		ok2 = sl.state == Acquired || sl.state == Attached
	}
	if !ok2 {
		q.mu.Unlock()
		return errInvalidOp("DetachBuffer")
	}

	var deleted []uint32
	q.deleteSlotLocked(s, &deleted)
	q.mu.Unlock()

	for _, ds := range deleted {
		q.fireDelete(ds)
	}
	return nil
}
