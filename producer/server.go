package producer

import (
	"log"
	"sync"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// BufferQueueProducer is the server-side dispatcher: it owns no state
// of its own beyond the wrapped BufferQueue, a per-producer connected
// flag, and the "what has this producer already seen" table that
// implements the same-slot-reuse optimization (RequestBuffer omits Buf
// once a producer has already been handed the SurfaceBuffer instance
// currently occupying a slot). A real binder service registers one of
// these per connected producer and routes incoming transactions to
// Dispatch; a same-process caller can also call its methods directly
// without going through Dispatch/Transport at all.
type BufferQueueProducer struct {
	Queue *queue.BufferQueue
	Drv   fence.Driver

	mu        sync.Mutex
	connected bool
	sent      map[uint32]*buffer.SurfaceBuffer
}

// NewBufferQueueProducer wraps q for IPC exposure. drv is the fence
// driver used to reconstitute fence.Wire values received from a
// remote producer back into local fence.Fence handles.
func NewBufferQueueProducer(q *queue.BufferQueue, drv fence.Driver) *BufferQueueProducer {
	return &BufferQueueProducer{Queue: q, Drv: drv, sent: make(map[uint32]*buffer.SurfaceBuffer)}
}

// Connect marks a producer as attached to the queue. CONNECT_STRICTLY
// additionally requires a ConnectStrictly on the underlying queue so
// every subsequent RequestBuffer no longer sees CONSUMER_DISCONNECTED.
func (p *BufferQueueProducer) Connect() error {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	log.Printf("producer: connected to queue %s", p.Queue.Name())
	return nil
}

// Disconnect detaches the producer. It does not tear down the queue
// itself — OnConsumerDied is the consumer-side equivalent for that —
// it only stops this producer from being reported IsConnected.
func (p *BufferQueueProducer) Disconnect() error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Printf("producer: disconnected from queue %s", p.Queue.Name())
	return nil
}

func (p *BufferQueueProducer) ConnectStrictly() error {
	p.Queue.ConnectStrictly()
	return p.Connect()
}

func (p *BufferQueueProducer) DisconnectStrictly() error {
	p.Queue.DisconnectStrictly()
	return p.Disconnect()
}

func (p *BufferQueueProducer) isConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// RequestBuffer implements REQUEST_BUFFER. The SurfaceBuffer itself
// is only included in the response the first time this producer sees
// the instance currently occupying the slot — a plain reuse of an
// already-seen buffer comes back with Buf == nil so the caller's
// ProducerSurface serves it from its own cache instead of
// re-transferring the handle.
func (p *BufferQueueProducer) RequestBuffer(req RequestBufferReq) (RequestBufferResp, error) {
	r, err := p.Queue.RequestBuffer(req.Config)
	if err != nil {
		return RequestBufferResp{}, err
	}
	buf, err := p.Queue.Buffer(r.Seq)
	if err != nil {
		return RequestBufferResp{}, err
	}

	p.mu.Lock()
	var sendBuf *buffer.SurfaceBuffer
	if p.sent[r.Seq] != buf {
		sendBuf = buf
		p.sent[r.Seq] = buf
	}
	for _, ds := range r.DeletingBuffers {
		delete(p.sent, ds)
	}
	p.mu.Unlock()

	return RequestBufferResp{
		Seq:             r.Seq,
		Buf:             sendBuf,
		ReleaseFence:    r.ReleaseFence.ToWire(),
		DeletingBuffers: r.DeletingBuffers,
		IsConnected:     r.IsConnected,
	}, nil
}

// RequestBuffers implements REQUEST_BUFFERS: n independent
// RequestBuffer calls, stopping at the first failure. It is a
// convenience batch, not a transaction.
func (p *BufferQueueProducer) RequestBuffers(req RequestBuffersReq) ([]RequestBufferResp, error) {
	out := make([]RequestBufferResp, 0, req.N)
	for i := 0; i < req.N; i++ {
		r, err := p.RequestBuffer(RequestBufferReq{Config: req.Config})
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// CancelBuffer implements CANCEL_BUFFER.
func (p *BufferQueueProducer) CancelBuffer(req CancelBufferReq) error {
	return p.Queue.CancelBuffer(req.Seq)
}

// FlushBuffer implements FLUSH_BUFFER.
func (p *BufferQueueProducer) FlushBuffer(req FlushBufferReq) error {
	af := fence.FromWire(p.Drv, req.AcquireFence, "acquire")
	return p.Queue.FlushBuffer(req.Seq, req.Extra, af, req.Config)
}

// FlushBuffers implements FLUSH_BUFFERS.
func (p *BufferQueueProducer) FlushBuffers(reqs []FlushBufferReq) error {
	for _, r := range reqs {
		if err := p.FlushBuffer(r); err != nil {
			return err
		}
	}
	return nil
}

// AttachBuffer implements ATTACH_BUFFER.
func (p *BufferQueueProducer) AttachBuffer(req AttachBufferReq) error {
	return p.Queue.AttachBuffer(req.Buf, req.TimeoutMs)
}

// DetachBuffer implements DETACH_BUFFER.
func (p *BufferQueueProducer) DetachBuffer(req DetachBufferReq) error {
	return p.Queue.DetachBuffer(req.Seq, req.Invoker)
}

// SetQueueSize/GetQueueSize implement their opcodes.
func (p *BufferQueueProducer) SetQueueSize(req SetQueueSizeReq) (SetQueueSizeResp, error) {
	return SetQueueSizeResp{}, p.Queue.SetQueueSize(req.N)
}

func (p *BufferQueueProducer) GetQueueSize() GetQueueSizeResp {
	return GetQueueSizeResp{N: p.Queue.QueueSize()}
}

// GetNameAndUniqueID implements GET_NAME_AND_UNIQUE_ID.
func (p *BufferQueueProducer) GetNameAndUniqueID() GetNameAndUniqueIDResp {
	return GetNameAndUniqueIDResp{Name: p.Queue.Name(), UniqueID: uint64(p.Queue.UniqueID())}
}

func (p *BufferQueueProducer) GetDefaultUsage() GetDefaultUsageResp {
	return GetDefaultUsageResp{Usage: p.Queue.DefaultUsage()}
}

func (p *BufferQueueProducer) SetDefaultUsage(req SetDefaultUsageReq) error {
	p.Queue.SetDefaultUsage(req.Usage)
	return nil
}

// CleanCache implements CLEAN_CACHE.
func (p *BufferQueueProducer) CleanCache(req CleanCacheReq) error {
	return p.Queue.CleanCache(req.CleanAll)
}

// GoBackground implements GO_BACKGROUND.
func (p *BufferQueueProducer) GoBackground() error {
	return p.Queue.GoBackground()
}

func (p *BufferQueueProducer) SetTransform(req SetTransformReq) error {
	p.Queue.SetTransform(req.Transform)
	return nil
}

func (p *BufferQueueProducer) GetTransform() GetTransformResp {
	return GetTransformResp{Transform: p.Queue.Transform()}
}

func (p *BufferQueueProducer) SetTransformHint(req SetTransformHintReq) error {
	p.Queue.SetTransformHint(req.Transform)
	return nil
}

func (p *BufferQueueProducer) GetTransformHint() GetTransformHintResp {
	return GetTransformHintResp{Transform: p.Queue.TransformHint()}
}

// SetScalingMode implements SET_SCALING_MODE (queue-wide default).
func (p *BufferQueueProducer) SetScalingMode(req SetScalingModeReq) error {
	p.Queue.SetScalingMode(req.Mode)
	return nil
}

// SetScalingModeV2 implements SET_SCALING_MODE_V2 (per-sequence).
func (p *BufferQueueProducer) SetScalingModeV2(req SetScalingModeReq) error {
	return p.Queue.SetScalingModeV2(req.Seq, req.Mode)
}

// SetMetadata implements SET_METADATA.
func (p *BufferQueueProducer) SetMetadata(req SetMetadataReq) error {
	buf, err := p.Queue.Buffer(req.Seq)
	if err != nil {
		return err
	}
	return buf.SetMetadata(req.Key, req.Data, true)
}

// SetMetadataSet implements SET_METADATA_SET: req.Vec is the
// ConvertMetadataToVec wire blob for every key to set at once.
func (p *BufferQueueProducer) SetMetadataSet(req SetMetadataSetReq) error {
	buf, err := p.Queue.Buffer(req.Seq)
	if err != nil {
		return err
	}
	m, err := metadataMapFromVec(req.Vec)
	if err != nil {
		return err
	}
	for _, k := range m.Keys() {
		v, _ := m.GetMetadata(k)
		if err := buf.SetMetadata(k, v, true); err != nil {
			return err
		}
	}
	return nil
}

func (p *BufferQueueProducer) SetTunnelHandle(req SetTunnelHandleReq) error {
	return p.Queue.SetTunnelHandle(req.Seq, req.Handle)
}

func (p *BufferQueueProducer) GetTunnelHandle(req GetTunnelHandleReq) (GetTunnelHandleResp, error) {
	h, err := p.Queue.GetTunnelHandle(req.Seq)
	return GetTunnelHandleResp{Handle: h}, err
}

// GetPresentTimestamp implements GET_PRESENT_TIMESTAMP. The "desired"
// type reports what FlushBuffer's caller asked for; "actual" reports
// when FlushBuffer itself ran, i.e. when the buffer was queued.
func (p *BufferQueueProducer) GetPresentTimestamp(req GetPresentTimestampReq) (GetPresentTimestampResp, error) {
	kind := queue.PresentTimestampDesired
	if req.Type == PresentTimestampActual {
		kind = queue.PresentTimestampActual
	}
	ts, err := p.Queue.GetPresentTimestamp(req.Seq, kind)
	if err != nil {
		return GetPresentTimestampResp{}, err
	}
	return GetPresentTimestampResp{TimeNanos: ts}, nil
}

// RegisterReleaseListener implements
// REGISTER/UNREGISTER_RELEASE_LISTENER(_BACKUP). A nil req.Listener
// and req.ListenerFence unregisters whichever primary variant is
// currently installed (UNREGISTER_RELEASE_LISTENER).
func (p *BufferQueueProducer) RegisterReleaseListener(req RegisterReleaseListenerReq) error {
	if req.ListenerFence != nil {
		p.Queue.RegisterReleaseListenerWithFence(req.ListenerFence)
		return nil
	}
	if req.Listener == nil {
		p.Queue.RegisterReleaseListenerWithFence(nil)
	}
	p.Queue.RegisterReleaseListener(req.Listener)
	return nil
}

func (p *BufferQueueProducer) RegisterReleaseListenerBackup(req RegisterReleaseListenerReq) error {
	p.Queue.RegisterReleaseListenerBackup(req.Listener)
	return nil
}

// GetLastFlushedBuffer/AcquireLastFlushedBuffer/ReleaseLastFlushedBuffer
// implement their three opcodes.
func (p *BufferQueueProducer) GetLastFlushedBuffer() (GetLastFlushedBufferResp, error) {
	r, err := p.Queue.GetLastFlushedBuffer()
	if err != nil {
		return GetLastFlushedBufferResp{}, err
	}
	return GetLastFlushedBufferResp{Buf: r.Buf, Fence: r.Fence.ToWire(), Matrix: r.Matrix}, nil
}

func (p *BufferQueueProducer) AcquireLastFlushedBuffer() (GetLastFlushedBufferResp, error) {
	r, err := p.Queue.AcquireLastFlushedBuffer()
	if err != nil {
		return GetLastFlushedBufferResp{}, err
	}
	return GetLastFlushedBufferResp{Buf: r.Buf, Fence: r.Fence.ToWire(), Matrix: r.Matrix}, nil
}

func (p *BufferQueueProducer) ReleaseLastFlushedBuffer() error {
	return p.Queue.ReleaseLastFlushedBuffer()
}

// RequestAndDetachBuffer implements REQUEST_AND_DETACH_BUFFER: a
// RequestBuffer immediately followed by a DetachBuffer of the same
// slot, so the caller ends up owning the buffer outright without a
// second round trip.
func (p *BufferQueueProducer) RequestAndDetachBuffer(req RequestAndDetachBufferReq) (RequestAndDetachBufferResp, error) {
	r, err := p.Queue.RequestBuffer(req.Config)
	if err != nil {
		return RequestAndDetachBufferResp{}, err
	}
	buf, err := p.Queue.Buffer(r.Seq)
	if err != nil {
		return RequestAndDetachBufferResp{}, err
	}
	if err := p.Queue.DetachBuffer(r.Seq, queue.ProducerInvoker); err != nil {
		return RequestAndDetachBufferResp{}, err
	}
	return RequestAndDetachBufferResp{Buf: buf, ReleaseFence: r.ReleaseFence.ToWire()}, nil
}

// AttachAndFlushBuffer implements ATTACH_AND_FLUSH_BUFFER: the
// inverse pairing — attach a buffer the caller already owns, then
// flush it in the same call.
func (p *BufferQueueProducer) AttachAndFlushBuffer(req AttachAndFlushBufferReq) error {
	if err := p.Queue.AttachBuffer(req.Buf, req.TimeoutMs); err != nil {
		return err
	}
	af := fence.FromWire(p.Drv, req.AcquireFence, "acquire")
	return p.Queue.FlushBuffer(req.Buf.Seq(), req.Extra, af, req.Config)
}

// PreAllocBuffers implements PRE_ALLOC_BUFFERS: it warms the queue's
// cache by requesting and immediately cancelling n buffers of cfg, so
// a later real RequestBuffer finds them already allocated and on the
// free list instead of paying for allocation on the critical path.
func (p *BufferQueueProducer) PreAllocBuffers(req PreAllocBuffersReq) error {
	if err := p.Queue.SetQueueSize(req.N); err != nil {
		return err
	}
	seqs := make([]uint32, 0, req.N)
	var reqErr error
	for i := 0; i < req.N; i++ {
		r, err := p.Queue.RequestBuffer(req.Config)
		if err != nil {
			reqErr = err
			break
		}
		seqs = append(seqs, r.Seq)
	}
	for _, s := range seqs {
		if err := p.Queue.CancelBuffer(s); err != nil {
			return err
		}
	}
	return reqErr
}

// Dispatch demuxes op to the matching method, decoding req (one of
// the Op*Req types) and encoding the result back to an `any` the
// Transport hands to the caller. It is the single entry point a real
// IPC server loop calls once per incoming transaction.
func (p *BufferQueueProducer) Dispatch(op Opcode, req any) (any, error) {
	switch op {
	case OpRequestBuffer:
		return p.RequestBuffer(req.(RequestBufferReq))
	case OpRequestBuffers:
		return p.RequestBuffers(req.(RequestBuffersReq))
	case OpFlushBuffers:
		return nil, p.FlushBuffers(req.(FlushBuffersReq).Flushes)
	case OpCancelBuffer:
		return nil, p.CancelBuffer(req.(CancelBufferReq))
	case OpFlushBuffer:
		return nil, p.FlushBuffer(req.(FlushBufferReq))
	case OpAttachBuffer:
		return nil, p.AttachBuffer(req.(AttachBufferReq))
	case OpDetachBuffer:
		return nil, p.DetachBuffer(req.(DetachBufferReq))
	case OpSetQueueSize:
		return p.SetQueueSize(req.(SetQueueSizeReq))
	case OpGetQueueSize:
		return p.GetQueueSize(), nil
	case OpGetNameAndUniqueID:
		return p.GetNameAndUniqueID(), nil
	case OpGetDefaultUsage:
		return p.GetDefaultUsage(), nil
	case OpSetDefaultUsage:
		return nil, p.SetDefaultUsage(req.(SetDefaultUsageReq))
	case OpCleanCache:
		return nil, p.CleanCache(req.(CleanCacheReq))
	case OpGoBackground:
		return nil, p.GoBackground()
	case OpConnect:
		return nil, p.Connect()
	case OpDisconnect:
		return nil, p.Disconnect()
	case OpConnectStrictly:
		return nil, p.ConnectStrictly()
	case OpDisconnectStrictly:
		return nil, p.DisconnectStrictly()
	case OpSetTransform:
		return nil, p.SetTransform(req.(SetTransformReq))
	case OpGetTransform:
		return p.GetTransform(), nil
	case OpSetTransformHint:
		return nil, p.SetTransformHint(req.(SetTransformHintReq))
	case OpGetTransformHint:
		return p.GetTransformHint(), nil
	case OpSetScalingMode:
		return nil, p.SetScalingMode(req.(SetScalingModeReq))
	case OpSetScalingModeV2:
		return nil, p.SetScalingModeV2(req.(SetScalingModeReq))
	case OpSetMetadata:
		return nil, p.SetMetadata(req.(SetMetadataReq))
	case OpSetMetadataSet:
		return nil, p.SetMetadataSet(req.(SetMetadataSetReq))
	case OpSetTunnelHandle:
		return nil, p.SetTunnelHandle(req.(SetTunnelHandleReq))
	case OpGetTunnelHandle:
		return p.GetTunnelHandle(req.(GetTunnelHandleReq))
	case OpGetPresentTimestamp:
		return p.GetPresentTimestamp(req.(GetPresentTimestampReq))
	case OpRegisterReleaseListener:
		return nil, p.RegisterReleaseListener(req.(RegisterReleaseListenerReq))
	case OpUnregisterReleaseListener:
		return nil, p.RegisterReleaseListener(req.(RegisterReleaseListenerReq))
	case OpRegisterReleaseListenerBackup:
		return nil, p.RegisterReleaseListenerBackup(req.(RegisterReleaseListenerReq))
	case OpGetLastFlushedBuffer:
		return p.GetLastFlushedBuffer()
	case OpAcquireLastFlushedBuffer:
		return p.AcquireLastFlushedBuffer()
	case OpReleaseLastFlushedBuffer:
		return nil, p.ReleaseLastFlushedBuffer()
	case OpRequestAndDetachBuffer:
		return p.RequestAndDetachBuffer(req.(RequestAndDetachBufferReq))
	case OpAttachAndFlushBuffer:
		return nil, p.AttachAndFlushBuffer(req.(AttachAndFlushBufferReq))
	case OpPreAllocBuffers:
		return nil, p.PreAllocBuffers(req.(PreAllocBuffersReq))
	default:
		return nil, surferr.New("Dispatch", surferr.NotSupported)
	}
}
