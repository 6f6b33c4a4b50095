package surface

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/producer"
	"github.com/neo3gfx/graphicsurface/queue"
)

// ConsumerSurface is the consumer-side façade: a thin wrapper around
// a local BufferQueue that forwards
// acquire/release/attach/detach and listener registration, and mints
// a BufferQueueProducer any number of producers can be handed (in
// process directly, or across IPC via a Transport built on top of
// it) to talk to the same queue.
type ConsumerSurface struct {
	Queue *queue.BufferQueue
}

// NewConsumerSurface wraps an already-constructed BufferQueue. The
// queue is built with queue.New exactly as today; ConsumerSurface
// adds no state of its own beyond the pointer.
func NewConsumerSurface(q *queue.BufferQueue) *ConsumerSurface {
	return &ConsumerSurface{Queue: q}
}

// Producer mints a server-side producer endpoint bound to this
// surface's queue and drv. Handing the same ConsumerSurface's Queue
// to two BufferQueueProducers (e.g. one per connected client) is
// fine; each BufferQueueProducer tracks its own per-connection
// RequestBuffer cache state independently.
func (c *ConsumerSurface) Producer(drv fence.Driver) *producer.BufferQueueProducer {
	return producer.NewBufferQueueProducer(c.Queue, drv)
}

// AcquireBuffer and AcquireBufferWithPresentTimestamp forward
// directly to the queue.
func (c *ConsumerSurface) AcquireBuffer() (queue.AcquireResult, error) {
	return c.Queue.AcquireBuffer()
}

func (c *ConsumerSurface) AcquireBufferWithPresentTimestamp(expectPresentTs int64) (queue.AcquireResult, error) {
	return c.Queue.AcquireBufferWithPresentTimestamp(expectPresentTs)
}

// ReleaseBuffer hands an acquired slot back to the free list.
func (c *ConsumerSurface) ReleaseBuffer(s uint32, f fence.Fence) error {
	return c.Queue.ReleaseBuffer(s, f)
}

// AttachBuffer and DetachBuffer let the consumer itself hold a buffer
// outside the normal producer request/flush cycle: tunneled-buffer
// and ExtraData-only flows route through here.
func (c *ConsumerSurface) AttachBuffer(buf *buffer.SurfaceBuffer, timeoutMs int32) error {
	return c.Queue.AttachBuffer(buf, timeoutMs)
}

func (c *ConsumerSurface) DetachBuffer(s uint32) error {
	return c.Queue.DetachBuffer(s, queue.ConsumerInvoker)
}

// RegisterConsumerListener, RegisterDeleteListener and
// RegisterGoBackgroundListener wire the consumer-facing notifications:
// a newly flushed buffer becoming available, a slot being torn down
// (main queue and, separately, the hardware-composer client), and the
// queue dropping into background (reduced-allocation) mode.
func (c *ConsumerSurface) RegisterConsumerListener(l queue.ConsumerListener) {
	c.Queue.RegisterConsumerListener(l)
}

func (c *ConsumerSurface) RegisterDeleteListener(main, hw queue.DeleteListener) {
	c.Queue.RegisterDeleteListener(main, hw)
}

func (c *ConsumerSurface) RegisterGoBackgroundListener(l queue.GoBackgroundListener) {
	c.Queue.RegisterGoBackgroundListener(l)
}

// Dump returns the human-readable queue snapshot cmd/bqdump renders,
// forwarded unchanged from the underlying queue.
func (c *ConsumerSurface) Dump() string {
	return c.Queue.Dump()
}
