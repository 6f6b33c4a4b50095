// Package producer implements the IPC-facing half of the engine: a
// stable opcode table, the BufferQueueProducer server-side dispatcher
// that demuxes opcodes onto a queue.BufferQueue, and the
// BufferClientProducer client-side proxy that marshals calls through
// a caller-supplied Transport.
//
// The actual transport (binder, a Unix socket, an in-process channel)
// is an external collaborator — this package only fixes the opcode
// table and the request/response shapes each opcode carries, without
// caring which IPC backend implements it.
package producer

// Opcode identifies one IBufferProducer operation. Values are a
// stable wire contract: once assigned, an opcode's number must never
// change or be reused for something else, even across package
// versions — a client and server built from different versions of
// this package must still agree on what OpRequestBuffer means.
type Opcode int32

const (
	OpRequestBuffer Opcode = iota
	OpRequestBuffers
	OpCancelBuffer
	OpFlushBuffer
	OpFlushBuffers
	OpAttachBuffer
	OpDetachBuffer
	OpSetQueueSize
	OpGetQueueSize
	OpGetNameAndUniqueID
	OpGetDefaultUsage
	OpSetDefaultUsage
	OpCleanCache
	OpGoBackground
	OpConnect
	OpDisconnect
	OpConnectStrictly
	OpDisconnectStrictly
	OpSetTransform
	OpGetTransform
	OpSetTransformHint
	OpGetTransformHint
	OpSetScalingMode
	OpSetScalingModeV2
	OpSetMetadata
	OpSetMetadataSet
	OpSetTunnelHandle
	OpGetPresentTimestamp
	OpRegisterReleaseListener
	OpUnregisterReleaseListener
	OpRegisterReleaseListenerBackup
	OpGetLastFlushedBuffer
	OpAcquireLastFlushedBuffer
	OpReleaseLastFlushedBuffer
	OpRequestAndDetachBuffer
	OpAttachAndFlushBuffer
	OpPreAllocBuffers
	OpGetTunnelHandle
	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpRequestBuffer:                 "REQUEST_BUFFER",
	OpRequestBuffers:                "REQUEST_BUFFERS",
	OpCancelBuffer:                  "CANCEL_BUFFER",
	OpFlushBuffer:                   "FLUSH_BUFFER",
	OpFlushBuffers:                  "FLUSH_BUFFERS",
	OpAttachBuffer:                  "ATTACH_BUFFER",
	OpDetachBuffer:                  "DETACH_BUFFER",
	OpSetQueueSize:                  "SET_QUEUE_SIZE",
	OpGetQueueSize:                  "GET_QUEUE_SIZE",
	OpGetNameAndUniqueID:            "GET_NAME_AND_UNIQUE_ID",
	OpGetDefaultUsage:               "GET_DEFAULT_USAGE",
	OpSetDefaultUsage:               "SET_DEFAULT_USAGE",
	OpCleanCache:                    "CLEAN_CACHE",
	OpGoBackground:                  "GO_BACKGROUND",
	OpConnect:                       "CONNECT",
	OpDisconnect:                    "DISCONNECT",
	OpConnectStrictly:               "CONNECT_STRICTLY",
	OpDisconnectStrictly:            "DISCONNECT_STRICTLY",
	OpSetTransform:                  "SET_TRANSFORM",
	OpGetTransform:                  "GET_TRANSFORM",
	OpSetTransformHint:              "SET_TRANSFORM_HINT",
	OpGetTransformHint:              "GET_TRANSFORM_HINT",
	OpSetScalingMode:                "SET_SCALING_MODE",
	OpSetScalingModeV2:              "SET_SCALING_MODE_V2",
	OpSetMetadata:                   "SET_METADATA",
	OpSetMetadataSet:                "SET_METADATA_SET",
	OpSetTunnelHandle:               "SET_TUNNEL_HANDLE",
	OpGetPresentTimestamp:           "GET_PRESENT_TIMESTAMP",
	OpRegisterReleaseListener:       "REGISTER_RELEASE_LISTENER",
	OpUnregisterReleaseListener:     "UNREGISTER_RELEASE_LISTENER",
	OpRegisterReleaseListenerBackup: "REGISTER_RELEASE_LISTENER_BACKUP",
	OpGetLastFlushedBuffer:          "GET_LAST_FLUSHED_BUFFER",
	OpAcquireLastFlushedBuffer:      "ACQUIRE_LAST_FLUSHED_BUFFER",
	OpReleaseLastFlushedBuffer:      "RELEASE_LAST_FLUSHED_BUFFER",
	OpRequestAndDetachBuffer:        "REQUEST_AND_DETACH_BUFFER",
	OpAttachAndFlushBuffer:          "ATTACH_AND_FLUSH_BUFFER",
	OpPreAllocBuffers:               "PRE_ALLOC_BUFFERS",
	OpGetTunnelHandle:               "GET_TUNNEL_HANDLE",
}

// String returns op's mnemonic from the opcode table above.
func (op Opcode) String() string {
	if op >= 0 && op < opcodeCount {
		return opcodeNames[op]
	}
	return "UNKNOWN_OPCODE"
}
