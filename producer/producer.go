package producer

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/queue"
)

// Producer is the stable client-facing contract a ProducerSurface
// programs against, implemented by BufferClientProducer (marshals
// across a Transport). BufferQueueProducer's methods take the *Req
// structs rather than these arguments, so it does not satisfy
// Producer; a same-process caller reaches it through LocalTransport
// instead. Only the subset of opcodes a
// producer actually drives is exposed here — queue-size/name/usage/
// transform accessors and the few dual-purpose opcodes (pre-alloc,
// request-and-detach) a producer rarely needs are reached through the
// BufferClientProducer's additional methods instead of this
// interface: declare the always-used operations on the interface,
// reach optional/rare ones through the concrete type.
type Producer interface {
	RequestBuffer(cfg buffer.Config) (RequestBufferResp, error)
	CancelBuffer(req CancelBufferReq) error
	FlushBuffer(req FlushBufferReq) error
	AttachBuffer(req AttachBufferReq) error
	DetachBuffer(seq uint32, invoker queue.Invoker) error
	Connect() error
	Disconnect() error
	ConnectStrictly() error
	DisconnectStrictly() error
}
