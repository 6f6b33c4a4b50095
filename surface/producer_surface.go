// Package surface implements two façades on top of the queue/producer
// packages: ProducerSurface, the
// client-side cache that avoids re-transferring buffer handles across
// IPC, and ConsumerSurface, the thin server-side wrapper exposing a
// local BufferQueue's acquire/release/attach/detach operations.
package surface

import (
	"sync"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/producer"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// remoteProducer is the slice of BufferClientProducer's method set
// ProducerSurface actually drives. Declaring it locally (rather than
// depending on producer.Producer, which is narrower) lets tests
// substitute a fake without standing up a full Transport, the same
// role a narrow interface plays for buffer.Allocator.
type remoteProducer interface {
	RequestBuffer(cfg buffer.Config) (producer.RequestBufferResp, error)
	CancelBuffer(req producer.CancelBufferReq) error
	FlushBuffer(req producer.FlushBufferReq) error
	AttachBuffer(req producer.AttachBufferReq) error
	DetachBuffer(seq uint32, invoker queue.Invoker) error
	Connect() error
	Disconnect() error
	ConnectStrictly() error
	DisconnectStrictly() error
	SetTransform(t buffer.Transform) error
	GetTransform() (buffer.Transform, error)
	SetTransformHint(t buffer.Transform) error
	GetTransformHint() (buffer.Transform, error)
	GetNameAndUniqueID() (string, uint64, error)
	SetQueueSize(n int) error
	GetQueueSize() (int, error)
	SetDefaultUsage(u buffer.Usage) error
	GetDefaultUsage() (buffer.Usage, error)
	RegisterReleaseListenerWithFence(l queue.ReleaseListenerWithFence) error
}

// WindowConfig is the producer-side request/flush override set spec
// §4.5 lists: default dimensions/format/usage/timeout/colorGamut/
// transform a ProducerSurface applies to a caller's Config before
// forwarding it, plus the client-side stretch hints
// (RequestWidth/RequestHeight) that never reach the remote queue at
// all.
type WindowConfig struct {
	Width, Height   int32
	StrideAlignment int32
	Format          buffer.Format
	Usage           buffer.Usage
	Timeout         int32
	ColorGamut      buffer.ColorGamut
	Transform       buffer.Transform

	RequestWidth, RequestHeight int32
}

// UserDataListener is fired when SetUserData stores a value at a key
// that held a different value or none at all, mirroring queue.UserDataListener
// on the producer side of the connection.
type UserDataListener interface {
	OnUserDataChange(key, value string)
}

// ProducerSurface is the producer-side façade: a remote-producer
// proxy plus a local slotCache that lets a producer
// skip re-receiving a SurfaceBuffer it has already seen for a given
// slot (BufferClientProducer.RequestBuffer already implements the
// server-side half of that optimization; this is the client half that
// consumes it).
type ProducerSurface struct {
	mu sync.Mutex

	name string
	prod remoteProducer
	drv  fence.Driver

	slotCache map[uint32]*buffer.SurfaceBuffer

	cfg WindowConfig

	transformHint   buffer.Transform
	disconnected    bool
	strictConnected bool

	userData          map[string]string
	userDataListeners map[string]UserDataListener
}

// NewProducerSurface wraps prod, a client proxy to some BufferQueue,
// in a caching façade. drv reconstructs fence.Wire reply fields into
// usable fence.Fence values.
func NewProducerSurface(name string, prod remoteProducer, drv fence.Driver) *ProducerSurface {
	return &ProducerSurface{
		name:              name,
		prod:              prod,
		drv:               drv,
		slotCache:         make(map[uint32]*buffer.SurfaceBuffer),
		userData:          make(map[string]string),
		userDataListeners: make(map[string]UserDataListener),
	}
}

// Connect/Disconnect mark this surface attached to or detached from
// its remote queue. ConnectStrictly/DisconnectStrictly additionally
// flip the queue's strict-disconnect mode, which fails every other
// producer's requests too, independent of which one issued it.
func (p *ProducerSurface) Connect() error {
	if err := p.prod.Connect(); err != nil {
		return err
	}
	p.mu.Lock()
	p.disconnected = false
	p.mu.Unlock()
	return nil
}

func (p *ProducerSurface) Disconnect() error {
	p.mu.Lock()
	p.disconnected = true
	p.slotCache = make(map[uint32]*buffer.SurfaceBuffer)
	p.mu.Unlock()
	return p.prod.Disconnect()
}

func (p *ProducerSurface) ConnectStrictly() error {
	if err := p.prod.ConnectStrictly(); err != nil {
		return err
	}
	p.mu.Lock()
	p.disconnected = false
	p.strictConnected = true
	p.mu.Unlock()
	return nil
}

func (p *ProducerSurface) DisconnectStrictly() error {
	p.mu.Lock()
	p.strictConnected = false
	p.mu.Unlock()
	return p.prod.DisconnectStrictly()
}

// IsDisconnected reports whether a prior Disconnect was never
// followed by a Connect.
func (p *ProducerSurface) IsDisconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnected
}

// SetWindowConfig installs the request/flush overrides RequestBuffer
// applies to a caller-supplied Config whenever the corresponding
// field is left zero.
func (p *ProducerSurface) SetWindowConfig(cfg WindowConfig) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}

func (p *ProducerSurface) mergeConfig(cfg buffer.Config) buffer.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cfg.Width == 0 {
		cfg.Width = p.cfg.Width
	}
	if cfg.Height == 0 {
		cfg.Height = p.cfg.Height
	}
	if cfg.StrideAlignment == 0 {
		cfg.StrideAlignment = p.cfg.StrideAlignment
	}
	if cfg.Format == 0 {
		cfg.Format = p.cfg.Format
	}
	if cfg.Usage == 0 {
		cfg.Usage = p.cfg.Usage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = p.cfg.Timeout
	}
	if cfg.ColorGamut == 0 {
		cfg.ColorGamut = p.cfg.ColorGamut
	}
	if cfg.Transform == 0 {
		cfg.Transform = p.cfg.Transform
	}
	return cfg
}

// RequestBuffer implements the RequestBuffer caching rule: if the
// remote response carries a non-nil buffer, cache it; otherwise
// the slot is an already-cached reuse and must already be present.
// Any sequences in the response's DeletingBuffers list are evicted
// from the cache first, so a realloc that lands on a seq already
// being reported as deleted can't resurrect a stale entry.
func (p *ProducerSurface) RequestBuffer(cfg buffer.Config) (*buffer.SurfaceBuffer, fence.Fence, error) {
	if p.IsDisconnected() {
		return nil, fence.Invalid, surferr.New("RequestBuffer", surferr.ConsumerDisconnected)
	}
	full := p.mergeConfig(cfg)
	resp, err := p.prod.RequestBuffer(full)
	if err != nil {
		return nil, fence.Invalid, err
	}

	p.mu.Lock()
	for _, ds := range resp.DeletingBuffers {
		delete(p.slotCache, ds)
	}
	if resp.Buf != nil {
		p.slotCache[resp.Seq] = resp.Buf
	}
	buf, ok := p.slotCache[resp.Seq]
	p.mu.Unlock()

	if !ok {
		return nil, fence.Invalid, surferr.New("RequestBuffer", surferr.Internal)
	}
	rf := fence.FromWire(p.drv, resp.ReleaseFence, "release")
	return buf, rf, nil
}

// CancelBuffer implements CANCEL_BUFFER: the slot is returned
// unfilled, with no cache effect since the cached
// SurfaceBuffer instance is still valid for a later RequestBuffer.
func (p *ProducerSurface) CancelBuffer(s uint32, extra *extradata.ExtraData) error {
	return p.prod.CancelBuffer(producer.CancelBufferReq{Seq: s, Extra: extra})
}

// FlushBuffer hands a filled slot back to the queue.
func (p *ProducerSurface) FlushBuffer(s uint32, extra *extradata.ExtraData, acquireFence fence.Fence, cfg queue.FlushConfig) error {
	return p.prod.FlushBuffer(producer.FlushBufferReq{
		Seq: s, Extra: extra, AcquireFence: acquireFence.ToWire(), Config: cfg,
	})
}

// AttachBuffer hands buf, which this surface already owns outright
// (e.g. one detached from another queue), to the remote queue, and
// caches it locally under its own sequence number.
func (p *ProducerSurface) AttachBuffer(buf *buffer.SurfaceBuffer, timeoutMs int32) error {
	if err := p.prod.AttachBuffer(producer.AttachBufferReq{Buf: buf, TimeoutMs: timeoutMs}); err != nil {
		return err
	}
	p.mu.Lock()
	p.slotCache[buf.Seq()] = buf
	p.mu.Unlock()
	return nil
}

// DetachBuffer removes seq from the remote queue's cache and from
// this surface's local mirror.
func (p *ProducerSurface) DetachBuffer(s uint32) error {
	if err := p.prod.DetachBuffer(s, queue.ProducerInvoker); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.slotCache, s)
	p.mu.Unlock()
	return nil
}

// CachedBuffer returns the SurfaceBuffer this surface currently has
// mirrored for seq, for callers (e.g. a NativeWindow) that need to
// look a slot back up without issuing another RequestBuffer.
func (p *ProducerSurface) CachedBuffer(s uint32) (*buffer.SurfaceBuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.slotCache[s]
	return b, ok
}

// SetTransform/Transform forward the queue-wide transform, with no
// local caching since it changes less often and every producer on the
// queue shares the same value.
func (p *ProducerSurface) SetTransform(t buffer.Transform) error { return p.prod.SetTransform(t) }
func (p *ProducerSurface) Transform() (buffer.Transform, error)  { return p.prod.GetTransform() }

// SetTransformHint/TransformHint cache the remote queue's transform
// hint locally after fetching or setting it, so repeated reads (a
// renderer commonly polls this once per frame) don't round-trip.
func (p *ProducerSurface) SetTransformHint(t buffer.Transform) error {
	if err := p.prod.SetTransformHint(t); err != nil {
		return err
	}
	p.mu.Lock()
	p.transformHint = t
	p.mu.Unlock()
	return nil
}

func (p *ProducerSurface) TransformHint() (buffer.Transform, error) {
	t, err := p.prod.GetTransformHint()
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	p.transformHint = t
	p.mu.Unlock()
	return t, nil
}

// SetQueueSize/QueueSize, SetDefaultUsage/DefaultUsage, and
// NameAndUniqueID forward directly to the remote producer; they carry
// no caching behavior of their own.
func (p *ProducerSurface) SetQueueSize(n int) error      { return p.prod.SetQueueSize(n) }
func (p *ProducerSurface) QueueSize() (int, error)       { return p.prod.GetQueueSize() }
func (p *ProducerSurface) SetDefaultUsage(u buffer.Usage) error { return p.prod.SetDefaultUsage(u) }
func (p *ProducerSurface) DefaultUsage() (buffer.Usage, error)  { return p.prod.GetDefaultUsage() }

func (p *ProducerSurface) NameAndUniqueID() (string, uint64, error) {
	return p.prod.GetNameAndUniqueID()
}

// RegisterReleaseListener wires l to fire whenever the remote queue
// releases a buffer this surface previously requested.
func (p *ProducerSurface) RegisterReleaseListener(l queue.ReleaseListenerWithFence) error {
	return p.prod.RegisterReleaseListenerWithFence(l)
}

// RegisterUserDataListener/SetUserData/GetUserData implement the
// producer-side user-data-change notification. Unlike buffer content,
// user data in this design is a local-only annotation on the
// ProducerSurface itself rather than a remote round trip: it routes
// user-data and property listeners without necessarily forwarding
// them across the wire.
func (p *ProducerSurface) RegisterUserDataListener(key string, l UserDataListener) {
	p.mu.Lock()
	p.userDataListeners[key] = l
	p.mu.Unlock()
}

func (p *ProducerSurface) SetUserData(key, value string) {
	p.mu.Lock()
	old, existed := p.userData[key]
	p.userData[key] = value
	l := p.userDataListeners[key]
	p.mu.Unlock()
	if existed && old == value {
		return
	}
	if l != nil {
		l.OnUserDataChange(key, value)
	}
}

func (p *ProducerSurface) GetUserData(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.userData[key]
	return v, ok
}
