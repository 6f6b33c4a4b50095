// Package queue implements BufferQueue, the authoritative per-surface
// coordinator that owns a bounded set of buffer slots and mediates
// producer/consumer exchange of them: the four-state slot machine,
// the free/dirty/deleting/producer-cache-clean lists, and the
// request/flush/acquire/release/attach/detach protocol.
package queue

import (
	"log"
	"sync"
	"time"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/seq"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// SurfaceMaxQueueSize bounds SetQueueSize's n.
const SurfaceMaxQueueSize = 16

// BufferQueue is the authoritative per-queue state: the slot cache,
// the three lists, queue size, default dimensions/usage, transform,
// status, and the listener registries, each behind its own lock so
// firing a listener never risks deadlocking against a caller already
// holding the primary lock.
type BufferQueue struct {
	mu sync.Mutex

	name     string
	uniqueID seq.QueueID
	shared   bool

	allocator buffer.Allocator
	gen       *seq.Generator

	slots    map[uint32]*slot
	free     []uint32
	dirty    []uint32
	deleting []uint32

	queueSize     int
	defaultWidth  int32
	defaultHeight int32
	defaultUsage  buffer.Usage
	transform     buffer.Transform
	transformHint buffer.Transform
	defaultScalingMode buffer.ScalingMode

	valid            bool
	strictDisconnect bool

	// cpuAccessible records whether this queue currently hands out
	// buffers in a CPU-readable layout rather than a compressed,
	// hardware-only one; RequestBuffer consults it only for buffers
	// whose usage asks for both CPU and hardware access.
	cpuAccessible bool

	lastFlushed   uint32
	hasLastFlush  bool
	lastFlushHold int // outstanding AcquireLastFlushedBuffer holds

	producerCacheClean []uint32

	// reqWake and attachWake implement the blocking waits RequestBuffer
	// and AttachBuffer need: closing the channel wakes every current
	// waiter, and a fresh channel is installed so future waiters block
	// again. This is the same "close, then recreate" broadcast idiom
	// used for WaitForCommand elsewhere in the ecosystem, adopted here
	// because sync.Cond has no timeout variant and both suspension
	// points in this package (RequestBuffer, AttachBuffer) take a
	// timeout.
	reqWake    chan struct{}
	attachWake chan struct{}

	consumerMu sync.Mutex
	consumer   ConsumerListener

	releaseMu       sync.Mutex
	release         ReleaseListener
	releaseFence    ReleaseListenerWithFence
	releaseBackup   ReleaseListener

	deleteMu   sync.Mutex
	deleteMain DeleteListener
	deleteHW   DeleteListener

	goBackgroundMu sync.Mutex
	goBackground   GoBackgroundListener

	cleanCacheMu sync.Mutex
	cleanCache   CleanCacheListener

	userDataMu        sync.Mutex
	userData          map[string]string
	userDataListeners map[string]UserDataListener

	dumpEnabled bool
}

// New creates an empty, valid BufferQueue with the given name,
// default dimensions/usage, and initial queue size. allocator and gen
// are the external collaborators used to create and number buffers.
func New(name string, allocator buffer.Allocator, gen *seq.Generator, queueSize int, width, height int32, usage buffer.Usage) *BufferQueue {
	q := &BufferQueue{
		name:              name,
		uniqueID:          seq.NextQueueID(),
		allocator:         allocator,
		gen:               gen,
		slots:             make(map[uint32]*slot),
		queueSize:         queueSize,
		defaultWidth:      width,
		defaultHeight:     height,
		defaultUsage:      usage,
		valid:             true,
		cpuAccessible:     true,
		reqWake:           make(chan struct{}),
		attachWake:        make(chan struct{}),
		userData:          make(map[string]string),
		userDataListeners: make(map[string]UserDataListener),
	}
	return q
}

// Name returns the queue's name, used in dump output and dump-file
// names.
func (q *BufferQueue) Name() string { return q.name }

// UniqueID returns the queue's stable 64-bit external handle.
func (q *BufferQueue) UniqueID() seq.QueueID { return q.uniqueID }

func (q *BufferQueue) wakeReq() {
	close(q.reqWake)
	q.reqWake = make(chan struct{})
}

func (q *BufferQueue) wakeAttach() {
	close(q.attachWake)
	q.attachWake = make(chan struct{})
}

// waitOn blocks on ch (either q.reqWake or q.attachWake, captured
// before unlocking) for up to timeout, or indefinitely if timeout is
// negative. It re-acquires q.mu before returning. The boolean result
// is false if the wait timed out.
func (q *BufferQueue) waitOn(ch chan struct{}, timeout time.Duration) bool {
	q.mu.Unlock()
	defer q.mu.Lock()
	if timeout < 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// SetStatus invalidates or revalidates the queue. Setting it false
// wakes every waiter so they observe NO_CONSUMER on their next
// predicate check.
func (q *BufferQueue) SetStatus(valid bool) {
	q.mu.Lock()
	q.valid = valid
	q.wakeReq()
	q.wakeAttach()
	q.mu.Unlock()
	log.Printf("queue %s: status set to valid=%v", q.name, valid)
}

// DisconnectStrictly puts the queue into strict-disconnect mode: every
// subsequent RequestBuffer fails with CONSUMER_DISCONNECTED until a
// matching ConnectStrictly, independent of which process calls it.
func (q *BufferQueue) DisconnectStrictly() {
	q.mu.Lock()
	q.strictDisconnect = true
	q.wakeReq()
	q.mu.Unlock()
}

// ConnectStrictly clears strict-disconnect mode.
func (q *BufferQueue) ConnectStrictly() {
	q.mu.Lock()
	q.strictDisconnect = false
	q.mu.Unlock()
}

// RegisterConsumerListener installs the sole consumer-available
// listener, replacing any previous one.
func (q *BufferQueue) RegisterConsumerListener(l ConsumerListener) {
	q.consumerMu.Lock()
	q.consumer = l
	q.consumerMu.Unlock()
}

func (q *BufferQueue) fireConsumerAvailable() {
	q.consumerMu.Lock()
	l := q.consumer
	q.consumerMu.Unlock()
	if l != nil {
		l.OnBufferAvailable()
	}
}

// RegisterReleaseListener installs the legacy no-argument producer
// release listener.
func (q *BufferQueue) RegisterReleaseListener(l ReleaseListener) {
	q.releaseMu.Lock()
	q.release = l
	q.releaseMu.Unlock()
}

// RegisterReleaseListenerWithFence installs the modern
// fence-carrying producer release listener.
func (q *BufferQueue) RegisterReleaseListenerWithFence(l ReleaseListenerWithFence) {
	q.releaseMu.Lock()
	q.releaseFence = l
	q.releaseMu.Unlock()
}

// RegisterReleaseListenerBackup installs the backup release listener
// invoked only when neither of the primary two is registered —
// mirroring the OpenHarmony source's
// RegisterReleaseListenerBackup/UnRegisterReleaseListenerBackup pair.
func (q *BufferQueue) RegisterReleaseListenerBackup(l ReleaseListener) {
	q.releaseMu.Lock()
	q.releaseBackup = l
	q.releaseMu.Unlock()
}

func (q *BufferQueue) fireRelease(s uint32, f fence.Fence) {
	q.releaseMu.Lock()
	rf, r, rb := q.releaseFence, q.release, q.releaseBackup
	q.releaseMu.Unlock()
	switch {
	case rf != nil:
		rf.OnBufferReleasedWithFence(s, f)
	case r != nil:
		r.OnBufferReleased()
	case rb != nil:
		rb.OnBufferReleased()
	}
}

// RegisterDeleteListener installs the main-thread and hardware-thread
// delete-buffer callbacks. Either may be nil.
func (q *BufferQueue) RegisterDeleteListener(main, hw DeleteListener) {
	q.deleteMu.Lock()
	q.deleteMain, q.deleteHW = main, hw
	q.deleteMu.Unlock()
}

func (q *BufferQueue) fireDelete(s uint32) {
	q.deleteMu.Lock()
	main, hw := q.deleteMain, q.deleteHW
	q.deleteMu.Unlock()
	if main != nil {
		main.OnBufferDelete(s)
	}
	if hw != nil {
		hw.OnBufferDelete(s)
	}
}

// RegisterGoBackgroundListener installs the listener fired by
// GoBackground in addition to its ordinary cache-clearing effects.
func (q *BufferQueue) RegisterGoBackgroundListener(l GoBackgroundListener) {
	q.goBackgroundMu.Lock()
	q.goBackground = l
	q.goBackgroundMu.Unlock()
}

// RegisterCleanCacheListener installs the listener fired by
// CleanCache in addition to its ordinary cache-clearing effects.
func (q *BufferQueue) RegisterCleanCacheListener(l CleanCacheListener) {
	q.cleanCacheMu.Lock()
	q.cleanCache = l
	q.cleanCacheMu.Unlock()
}

// RegisterUserDataListener installs a listener fired whenever
// SetUserData changes the value at key.
func (q *BufferQueue) RegisterUserDataListener(key string, l UserDataListener) {
	q.userDataMu.Lock()
	q.userDataListeners[key] = l
	q.userDataMu.Unlock()
}

// SetUserData stores value at key, firing the listener registered at
// that key if the value actually changed.
func (q *BufferQueue) SetUserData(key, value string) error {
	q.userDataMu.Lock()
	old, existed := q.userData[key]
	q.userData[key] = value
	l := q.userDataListeners[key]
	q.userDataMu.Unlock()
	if existed && old == value {
		return nil
	}
	if l != nil {
		l.OnUserDataChange(key, value)
	}
	return nil
}

// GetUserData retrieves the value previously stored by SetUserData.
func (q *BufferQueue) GetUserData(key string) (string, error) {
	q.userDataMu.Lock()
	defer q.userDataMu.Unlock()
	v, ok := q.userData[key]
	if !ok {
		return "", surferr.New("GetUserData", surferr.NoEntry)
	}
	return v, nil
}

// QueueSize returns the current queue size.
func (q *BufferQueue) QueueSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queueSize
}

// Transform/SetTransform and TransformHint/SetTransformHint store the
// queue-wide transform and the separately-tracked transform hint
// producers may consult before the actual transform is known.
func (q *BufferQueue) Transform() buffer.Transform {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.transform
}

func (q *BufferQueue) SetTransform(t buffer.Transform) {
	q.mu.Lock()
	q.transform = t
	q.mu.Unlock()
}

func (q *BufferQueue) TransformHint() buffer.Transform {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.transformHint
}

func (q *BufferQueue) SetTransformHint(t buffer.Transform) {
	q.mu.Lock()
	q.transformHint = t
	q.mu.Unlock()
}

// DefaultUsage/SetDefaultUsage access the usage flags new buffers are
// allocated with absent an explicit request override.
func (q *BufferQueue) DefaultUsage() buffer.Usage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.defaultUsage
}

func (q *BufferQueue) SetDefaultUsage(u buffer.Usage) {
	q.mu.Lock()
	q.defaultUsage = u
	q.mu.Unlock()
}

// EnableDump turns the dump-to-file trigger on or off; FlushBuffer
// only writes a raw dump when this is true AND the sentinel file
// exists.
func (q *BufferQueue) EnableDump(v bool) {
	q.mu.Lock()
	q.dumpEnabled = v
	q.mu.Unlock()
}

// SetCPUAccessible switches new dual-access buffers between a
// CPU-readable layout and a compressed, hardware-only one. It does
// not touch buffers sitting in the cache; every later RequestBuffer
// retags the dual-access buffer it hands out, whether that buffer is
// newly allocated, reallocated or reused.
func (q *BufferQueue) SetCPUAccessible(v bool) {
	q.mu.Lock()
	q.cpuAccessible = v
	q.mu.Unlock()
}

func removeFirst(list []uint32, s uint32) []uint32 {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func containsSeq(list []uint32, s uint32) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cacheCount(q *BufferQueue) int { return len(q.slots) }
