package queue

import (
	"fmt"
	"os"

	"github.com/agilira/go-timecache"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
)

// dumpSentinelPath is the file whose presence, combined with
// EnableDump(true), triggers FlushBuffer's raw memory dump.
const dumpSentinelPath = "/data/bq_dump"

// FlushConfig carries the per-flush parameters passed alongside the
// acquire fence: the damage rectangles, the desired present timestamp
// used by the timestamp-aware AcquireBuffer variant, and the scaling
// mode for this frame.
type FlushConfig struct {
	Damages          []Rect
	DesiredPresentTs int64
	ScalingMode      buffer.ScalingMode
}

// FlushBuffer moves seq from Requested/Attached to Flushed, appends
// it to the dirty list, and wakes the consumer-available listener.
func (q *BufferQueue) FlushBuffer(s uint32, extra *extradata.ExtraData, acquireFence fence.Fence, cfg FlushConfig) error {
	for _, d := range cfg.Damages {
		if !d.Valid() {
			return errInvalidArg("FlushBuffer")
		}
	}

	q.mu.Lock()
	if !q.valid {
		q.mu.Unlock()
		return errNoConsumer("FlushBuffer")
	}
	sl, ok := q.slots[s]
	if !ok || (sl.state != Requested && sl.state != Attached) {
		q.mu.Unlock()
		return errNoEntry("FlushBuffer")
	}

	if sl.isDeleting {
		var deleted []uint32
		q.deleteSlotLocked(s, &deleted)
		q.mu.Unlock()
		for _, ds := range deleted {
			q.fireDelete(ds)
		}
		return nil
	}

	now := timecache.DefaultCache().CachedTime().UnixNano()
	sl.state = Flushed
	sl.fence = acquireFence
	sl.flushTimestamp = now
	sl.presentTimestamp = cfg.DesiredPresentTs
	sl.damages = cfg.Damages
	sl.scalingMode = cfg.ScalingMode
	if extra != nil {
		sl.extra = extra
	}
	q.dirty = append(q.dirty, s)
	q.lastFlushed = s
	q.hasLastFlush = true

	needsFlushCache := sl.buf.Handle().Usage.Has(buffer.UsageCPUWrite)
	dumpNow := q.dumpEnabled
	buf := sl.buf
	name := q.name
	q.mu.Unlock()

	if needsFlushCache {
		if err := buf.FlushCache(q.allocator); err != nil {
			return err
		}
	}

	if dumpNow {
		maybeDumpBuffer(name, buf, now)
	}

	q.fireConsumerAvailable()
	return nil
}

// deleteSlotLocked erases a slot's cache entry, appends it to the
// deleting list so the next RequestBuffer reports it, and releases
// its sequence number back to the generator. q.mu must be held. The
// deleted sequence is appended to *deleted rather than firing the
// delete-buffer callback directly — callers must drop q.mu first and
// then fire it themselves; user-supplied callbacks must never run
// under the primary queue lock.
func (q *BufferQueue) deleteSlotLocked(s uint32, deleted *[]uint32) {
	delete(q.slots, s)
	q.free = removeFirst(q.free, s)
	q.dirty = removeFirst(q.dirty, s)
	q.deleting = append(q.deleting, s)
	q.gen.Release(s)
	*deleted = append(*deleted, s)
}

func maybeDumpBuffer(name string, buf *buffer.SurfaceBuffer, nowNanos int64) {
	if _, err := os.Stat(dumpSentinelPath); err != nil {
		return
	}
	h := buf.Handle()
	if !h.Mapped() {
		return
	}
	fn := fmt.Sprintf("bq_%d_%s_%d_%dx%d.raw", os.Getpid(), name, nowNanos/1000, h.Width, h.Height)
	f, err := os.Create(fn)
	if err != nil {
		return
	}
	defer f.Close()
	data := unsafeBytesFromVirtAddr(h.VirtAddr, int(h.Size))
	f.Write(data)
}
