package producer

// Transport is the external IPC collaborator: it delivers a typed
// request for a given Opcode to whatever process hosts the
// BufferQueueProducer, and returns the typed reply. A production
// Transport is a binder/socket codec that also arranges
// descriptor-transfer for any buffer/fence handles embedded in req or
// the reply, so neither side closes a descriptor the other still
// needs; this package neither knows nor cares how that happens, the
// same way queue.BufferQueue doesn't know how fence.Driver actually
// waits on a descriptor.
//
// req and the returned reply are one of the Op*Req/Op*Resp pairs
// declared in this package, selected by op; a Transport implementer
// (or a test double) type-switches on req the same way
// BufferQueueProducer.Dispatch does.
type Transport interface {
	Call(op Opcode, req any) (reply any, err error)
}

// LocalTransport is a Transport that calls straight into a
// BufferQueueProducer without crossing any process boundary. It is
// the transport a single-process caller (or a test) uses when a
// producer and its consumer share an address space — the same role
// an in-process loopback driver plays for driver.Driver in the
// teacher package.
type LocalTransport struct {
	Server *BufferQueueProducer
}

// Call implements Transport by dispatching directly to t.Server.
func (t LocalTransport) Call(op Opcode, req any) (any, error) {
	return t.Server.Dispatch(op, req)
}
