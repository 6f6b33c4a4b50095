package queue

import (
	"time"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// cpuUsageMask and hwUsageMask are the usage bits that make a
// buffer's access type ambiguous: hardware usage alone gets a
// compressed, hardware-only layout, but asking for CPU access too
// forces a choice between the two.
const (
	cpuUsageMask = buffer.UsageCPURead | buffer.UsageCPUWrite
	hwUsageMask  = buffer.UsageHWTexture | buffer.UsageHWRender | buffer.UsageHWComposer
)

// tagAccessTypeLocked sets buf's KeyAccessType metadata whenever its
// usage asks for both CPU and hardware access, so the allocator knows
// which mapping strategy to use. q.mu is held on entry.
func (q *BufferQueue) tagAccessTypeLocked(buf *buffer.SurfaceBuffer, usage buffer.Usage) {
	if !usage.Any(cpuUsageMask) || !usage.Any(hwUsageMask) {
		return
	}
	t := metadata.AccessHWOnly
	if q.cpuAccessible {
		t = metadata.AccessCPU
	}
	buf.SetMetadata(metadata.KeyAccessType, []byte{byte(t)}, true)
}

// RequestResult is RequestBuffer's output: the slot handed to the
// caller, its release fence (so the producer can defer CPU writes
// until any prior consumer read has finished), the deleting-buffers
// list accumulated since the caller's last RequestBuffer, and whether
// the queue currently has a connected consumer.
type RequestResult struct {
	Seq             uint32
	ReleaseFence    fence.Fence
	DeletingBuffers []uint32
	IsConnected     bool
}

// RequestBuffer hands the caller a slot in state Requested,
// allocating, reusing, or blocking as described by
// popFromFreeList/reuseBufferLocked/allocBufferLocked.
func (q *BufferQueue) RequestBuffer(cfg buffer.Config) (RequestResult, error) {
	if err := validateConfig(cfg); err != nil {
		return RequestResult{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if !q.valid {
			return RequestResult{}, errNoConsumer("RequestBuffer")
		}
		if q.strictDisconnect {
			return RequestResult{}, errDisconnected("RequestBuffer")
		}
		q.consumerMu.Lock()
		hasConsumer := q.consumer != nil
		q.consumerMu.Unlock()
		if !hasConsumer {
			return RequestResult{}, errNoConsumer("RequestBuffer")
		}

		s, hit, needWait, err := q.popFromFreeList(cfg)
		if err != nil {
			return RequestResult{}, err
		}
		if needWait {
			if cfg.Timeout == 0 {
				return RequestResult{}, surferr.NoBufferErr("RequestBuffer")
			}
			timeout := time.Duration(-1)
			if cfg.Timeout > 0 {
				timeout = time.Duration(cfg.Timeout) * time.Millisecond
			}
			ch := q.reqWake
			if !q.waitOn(ch, timeout) {
				return RequestResult{}, surferr.NoBufferErr("RequestBuffer")
			}
			continue
		}

		if hit {
			return q.reuseBufferLocked(s, cfg)
		}
		return q.allocBufferLocked(cfg)
	}
}

// popFromFreeList finds a slot to hand back without blocking, or
// reports that the caller must wait. Returns (seq, hit, needWait, err).
// hit==false && needWait==false means "allocate a new slot" (the
// cache has room).
func (q *BufferQueue) popFromFreeList(cfg buffer.Config) (uint32, bool, bool, error) {
	if q.shared {
		for s := range q.slots {
			q.free = removeFirst(q.free, s)
			return s, true, false, nil
		}
	}

	for i, s := range q.free {
		if sl, ok := q.slots[s]; ok && sl.cfg.Equal(cfg) {
			q.free = append(q.free[:i], q.free[i+1:]...)
			return s, true, false, nil
		}
	}

	if cacheCount(q) < q.queueSize {
		return 0, false, false, nil
	}

	if len(q.free) > 0 {
		s := q.free[0]
		q.free = q.free[1:]
		return s, true, false, nil
	}

	return 0, false, true, nil
}

// reuseBufferLocked hands a free-list hit back to the caller,
// reallocating the slot's buffer in place first if the requested
// config no longer matches the one it was last allocated with. q.mu
// is held on entry and exit.
func (q *BufferQueue) reuseBufferLocked(s uint32, cfg buffer.Config) (RequestResult, error) {
	sl := q.slots[s]
	if !sl.cfg.Equal(cfg) {
		nb, err := buffer.Alloc(q.allocator, s, cfg, sl.buf)
		if err != nil {
			return RequestResult{}, err
		}
		sl.buf = nb
		sl.cfg = cfg
	}
	sl.buf.SetColorGamut(cfg.ColorGamut)
	sl.buf.SetTransform(cfg.Transform)
	q.tagAccessTypeLocked(sl.buf, cfg.Usage)

	releaseFence := sl.fence
	sl.state = Requested

	deleting := q.deleting
	q.deleting = nil

	return RequestResult{
		Seq: s, ReleaseFence: releaseFence, DeletingBuffers: deleting, IsConnected: true,
	}, nil
}

// allocBufferLocked allocates a brand-new slot for a cache miss with
// room to grow. q.mu is held on entry and exit.
func (q *BufferQueue) allocBufferLocked(cfg buffer.Config) (RequestResult, error) {
	s := q.gen.Next()
	nb, err := buffer.Alloc(q.allocator, s, cfg, nil)
	if err != nil {
		q.gen.Release(s)
		return RequestResult{}, err
	}
	q.tagAccessTypeLocked(nb, cfg.Usage)
	q.slots[s] = &slot{
		buf:   nb,
		state: Requested,
		cfg:   cfg,
		extra: extradata.New(),
		fence: fence.Invalid,
	}
	return RequestResult{Seq: s, ReleaseFence: fence.Invalid, IsConnected: true}, nil
}
