package producer

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// BufferClientProducer is the client-side proxy: it implements
// Producer by marshalling each call into the matching
// Opcode/Req pair and invoking T.Call, then type-asserting the
// reply. Every method here is a one-line mapping — reconstituting a
// reply's fence.Wire fields into usable fence.Fence handles (and the
// other caching/reuse behavior) lives one layer up in
// surface.ProducerSurface, which holds a BufferClientProducer rather
// than talking to a Transport directly.
type BufferClientProducer struct {
	T Transport
}

// NewBufferClientProducer builds a client proxy over t. drv is
// accepted for symmetry with NewBufferQueueProducer/NewProducerSurface
// but unused here: this layer hands reply structs straight through,
// and fence.Wire-to-fence.Fence reconstruction happens in
// surface.ProducerSurface, which binds it to the caller's own driver.
func NewBufferClientProducer(t Transport, drv fence.Driver) *BufferClientProducer {
	return &BufferClientProducer{T: t}
}

func (c *BufferClientProducer) call(op Opcode, req any) (any, error) {
	resp, err := c.T.Call(op, req)
	if err != nil {
		return nil, surferr.Wrap(op.String(), surferr.Binder, err)
	}
	return resp, nil
}

func (c *BufferClientProducer) RequestBuffer(cfg buffer.Config) (RequestBufferResp, error) {
	resp, err := c.call(OpRequestBuffer, RequestBufferReq{Config: cfg})
	if err != nil {
		return RequestBufferResp{}, err
	}
	return resp.(RequestBufferResp), nil
}

func (c *BufferClientProducer) RequestBuffers(cfg buffer.Config, n int) ([]RequestBufferResp, error) {
	resp, err := c.call(OpRequestBuffers, RequestBuffersReq{Config: cfg, N: n})
	if err != nil {
		return nil, err
	}
	return resp.([]RequestBufferResp), nil
}

func (c *BufferClientProducer) CancelBuffer(req CancelBufferReq) error {
	_, err := c.call(OpCancelBuffer, req)
	return err
}

func (c *BufferClientProducer) FlushBuffer(req FlushBufferReq) error {
	_, err := c.call(OpFlushBuffer, req)
	return err
}

func (c *BufferClientProducer) FlushBuffers(reqs []FlushBufferReq) error {
	_, err := c.call(OpFlushBuffers, FlushBuffersReq{Flushes: reqs})
	return err
}

func (c *BufferClientProducer) AttachBuffer(req AttachBufferReq) error {
	_, err := c.call(OpAttachBuffer, req)
	return err
}

func (c *BufferClientProducer) DetachBuffer(s uint32, invoker queue.Invoker) error {
	_, err := c.call(OpDetachBuffer, DetachBufferReq{Seq: s, Invoker: invoker})
	return err
}

func (c *BufferClientProducer) SetQueueSize(n int) error {
	_, err := c.call(OpSetQueueSize, SetQueueSizeReq{N: n})
	return err
}

func (c *BufferClientProducer) GetQueueSize() (int, error) {
	resp, err := c.call(OpGetQueueSize, nil)
	if err != nil {
		return 0, err
	}
	return resp.(GetQueueSizeResp).N, nil
}

func (c *BufferClientProducer) GetNameAndUniqueID() (string, uint64, error) {
	resp, err := c.call(OpGetNameAndUniqueID, nil)
	if err != nil {
		return "", 0, err
	}
	r := resp.(GetNameAndUniqueIDResp)
	return r.Name, r.UniqueID, nil
}

func (c *BufferClientProducer) GetDefaultUsage() (buffer.Usage, error) {
	resp, err := c.call(OpGetDefaultUsage, nil)
	if err != nil {
		return 0, err
	}
	return resp.(GetDefaultUsageResp).Usage, nil
}

func (c *BufferClientProducer) SetDefaultUsage(u buffer.Usage) error {
	_, err := c.call(OpSetDefaultUsage, SetDefaultUsageReq{Usage: u})
	return err
}

func (c *BufferClientProducer) CleanCache(cleanAll bool) error {
	_, err := c.call(OpCleanCache, CleanCacheReq{CleanAll: cleanAll})
	return err
}

func (c *BufferClientProducer) GoBackground() error {
	_, err := c.call(OpGoBackground, nil)
	return err
}

func (c *BufferClientProducer) Connect() error {
	_, err := c.call(OpConnect, nil)
	return err
}

func (c *BufferClientProducer) Disconnect() error {
	_, err := c.call(OpDisconnect, nil)
	return err
}

func (c *BufferClientProducer) ConnectStrictly() error {
	_, err := c.call(OpConnectStrictly, nil)
	return err
}

func (c *BufferClientProducer) DisconnectStrictly() error {
	_, err := c.call(OpDisconnectStrictly, nil)
	return err
}

func (c *BufferClientProducer) SetTransform(t buffer.Transform) error {
	_, err := c.call(OpSetTransform, SetTransformReq{Transform: t})
	return err
}

func (c *BufferClientProducer) GetTransform() (buffer.Transform, error) {
	resp, err := c.call(OpGetTransform, nil)
	if err != nil {
		return 0, err
	}
	return resp.(GetTransformResp).Transform, nil
}

func (c *BufferClientProducer) SetTransformHint(t buffer.Transform) error {
	_, err := c.call(OpSetTransformHint, SetTransformHintReq{Transform: t})
	return err
}

func (c *BufferClientProducer) GetTransformHint() (buffer.Transform, error) {
	resp, err := c.call(OpGetTransformHint, nil)
	if err != nil {
		return 0, err
	}
	return resp.(GetTransformHintResp).Transform, nil
}

func (c *BufferClientProducer) SetScalingMode(m buffer.ScalingMode) error {
	_, err := c.call(OpSetScalingMode, SetScalingModeReq{Mode: m})
	return err
}

func (c *BufferClientProducer) SetScalingModeV2(s uint32, m buffer.ScalingMode) error {
	_, err := c.call(OpSetScalingModeV2, SetScalingModeReq{Seq: s, Mode: m})
	return err
}

func (c *BufferClientProducer) SetMetadata(s uint32, key uint32, data []byte) error {
	_, err := c.call(OpSetMetadata, SetMetadataReq{Seq: s, Key: key, Data: data})
	return err
}

func (c *BufferClientProducer) SetMetadataSet(s uint32, vec []byte) error {
	_, err := c.call(OpSetMetadataSet, SetMetadataSetReq{Seq: s, Vec: vec})
	return err
}

func (c *BufferClientProducer) SetTunnelHandle(s uint32, handle []byte) error {
	_, err := c.call(OpSetTunnelHandle, SetTunnelHandleReq{Seq: s, Handle: handle})
	return err
}

func (c *BufferClientProducer) GetTunnelHandle(s uint32) ([]byte, error) {
	resp, err := c.call(OpGetTunnelHandle, GetTunnelHandleReq{Seq: s})
	if err != nil {
		return nil, err
	}
	return resp.(GetTunnelHandleResp).Handle, nil
}

func (c *BufferClientProducer) GetPresentTimestamp(s uint32, typ PresentTimestampType) (int64, error) {
	resp, err := c.call(OpGetPresentTimestamp, GetPresentTimestampReq{Seq: s, Type: typ})
	if err != nil {
		return 0, err
	}
	return resp.(GetPresentTimestampResp).TimeNanos, nil
}

func (c *BufferClientProducer) RegisterReleaseListener(l queue.ReleaseListener) error {
	_, err := c.call(OpRegisterReleaseListener, RegisterReleaseListenerReq{Listener: l})
	return err
}

func (c *BufferClientProducer) RegisterReleaseListenerWithFence(l queue.ReleaseListenerWithFence) error {
	_, err := c.call(OpRegisterReleaseListener, RegisterReleaseListenerReq{ListenerFence: l})
	return err
}

func (c *BufferClientProducer) RegisterReleaseListenerBackup(l queue.ReleaseListener) error {
	_, err := c.call(OpRegisterReleaseListenerBackup, RegisterReleaseListenerReq{Listener: l})
	return err
}

// UnregisterReleaseListener clears whichever primary release listener
// (plain or with-fence) is currently registered.
func (c *BufferClientProducer) UnregisterReleaseListener() error {
	_, err := c.call(OpUnregisterReleaseListener, RegisterReleaseListenerReq{})
	return err
}

func (c *BufferClientProducer) GetLastFlushedBuffer() (GetLastFlushedBufferResp, error) {
	resp, err := c.call(OpGetLastFlushedBuffer, nil)
	if err != nil {
		return GetLastFlushedBufferResp{}, err
	}
	return resp.(GetLastFlushedBufferResp), nil
}

func (c *BufferClientProducer) AcquireLastFlushedBuffer() (GetLastFlushedBufferResp, error) {
	resp, err := c.call(OpAcquireLastFlushedBuffer, nil)
	if err != nil {
		return GetLastFlushedBufferResp{}, err
	}
	return resp.(GetLastFlushedBufferResp), nil
}

func (c *BufferClientProducer) ReleaseLastFlushedBuffer() error {
	_, err := c.call(OpReleaseLastFlushedBuffer, nil)
	return err
}

func (c *BufferClientProducer) RequestAndDetachBuffer(cfg buffer.Config) (RequestAndDetachBufferResp, error) {
	resp, err := c.call(OpRequestAndDetachBuffer, RequestAndDetachBufferReq{Config: cfg})
	if err != nil {
		return RequestAndDetachBufferResp{}, err
	}
	return resp.(RequestAndDetachBufferResp), nil
}

func (c *BufferClientProducer) AttachAndFlushBuffer(req AttachAndFlushBufferReq) error {
	_, err := c.call(OpAttachAndFlushBuffer, req)
	return err
}

func (c *BufferClientProducer) PreAllocBuffers(cfg buffer.Config, n int) error {
	_, err := c.call(OpPreAllocBuffers, PreAllocBuffersReq{Config: cfg, N: n})
	return err
}
