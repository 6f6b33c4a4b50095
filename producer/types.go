package producer

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/queue"
)

// The Req/Resp pairs below are the opcode table's payload shapes.
// Buffer and fence fields carry fence.Wire / *buffer.SurfaceBuffer
// directly rather than pre-serialized bytes: turning those into
// actual wire bytes (descriptor duplication included) is the
// Transport implementation's job.

type RequestBufferReq struct {
	Config buffer.Config
}

type RequestBufferResp struct {
	Seq             uint32
	Buf             *buffer.SurfaceBuffer // nil when the slot is a same-seq reuse (ProducerSurface already has it cached)
	ReleaseFence    fence.Wire
	DeletingBuffers []uint32
	IsConnected     bool
}

type RequestBuffersReq struct {
	Config buffer.Config
	N      int
}

type FlushBuffersReq struct {
	Flushes []FlushBufferReq
}

type CancelBufferReq struct {
	Seq   uint32
	Extra *extradata.ExtraData
}

type FlushBufferReq struct {
	Seq          uint32
	Extra        *extradata.ExtraData
	AcquireFence fence.Wire
	Config       queue.FlushConfig
}

type AttachBufferReq struct {
	Buf       *buffer.SurfaceBuffer
	TimeoutMs int32
}

type DetachBufferReq struct {
	Seq     uint32
	Invoker queue.Invoker
}

type SetQueueSizeReq struct{ N int }
type SetQueueSizeResp struct{}
type GetQueueSizeResp struct{ N int }

type GetNameAndUniqueIDResp struct {
	Name     string
	UniqueID uint64
}

type GetDefaultUsageResp struct{ Usage buffer.Usage }
type SetDefaultUsageReq struct{ Usage buffer.Usage }

type CleanCacheReq struct{ CleanAll bool }

type SetTransformReq struct{ Transform buffer.Transform }
type GetTransformResp struct{ Transform buffer.Transform }
type SetTransformHintReq struct{ Transform buffer.Transform }
type GetTransformHintResp struct{ Transform buffer.Transform }

type SetScalingModeReq struct {
	Seq  uint32 // only meaningful for SetScalingModeV2; SetScalingMode applies queue-wide
	Mode buffer.ScalingMode
}

type SetMetadataReq struct {
	Seq  uint32
	Key  uint32
	Data []byte
}

type SetMetadataSetReq struct {
	Seq  uint32
	Vec  []byte // metadata.ConvertMetadataToVec output
}

type SetTunnelHandleReq struct {
	Seq    uint32
	Handle []byte
}
type GetTunnelHandleReq struct{ Seq uint32 }
type GetTunnelHandleResp struct{ Handle []byte }

// PresentTimestampType selects which of a slot's two recorded times
// GetPresentTimestamp returns: the present time the producer asked
// for at flush, or the time the queue actually processed the flush.
// Its values line up with queue.PresentTimestampKind so the server can
// convert one straight into the other.
type PresentTimestampType int32

const (
	PresentTimestampDesired PresentTimestampType = iota
	PresentTimestampActual
)

type GetPresentTimestampReq struct {
	Seq  uint32
	Type PresentTimestampType
}
type GetPresentTimestampResp struct{ TimeNanos int64 }

type RegisterReleaseListenerReq struct {
	Listener      queue.ReleaseListener
	ListenerFence queue.ReleaseListenerWithFence
}

type GetLastFlushedBufferResp struct {
	Buf    *buffer.SurfaceBuffer
	Fence  fence.Wire
	Matrix [16]float32
}

type RequestAndDetachBufferReq struct{ Config buffer.Config }
type RequestAndDetachBufferResp struct {
	Buf          *buffer.SurfaceBuffer
	ReleaseFence fence.Wire
}

type AttachAndFlushBufferReq struct {
	Buf          *buffer.SurfaceBuffer
	Extra        *extradata.ExtraData
	AcquireFence fence.Wire
	Config       queue.FlushConfig
	TimeoutMs    int32
}

type PreAllocBuffersReq struct {
	Config buffer.Config
	N      int
}

// metadataMapFromVec adapts SetMetadataSetReq.Vec to the metadata
// package's wire helper, keeping this package from needing its own
// copy of that format.
func metadataMapFromVec(vec []byte) (*metadata.Map, error) {
	return metadata.ConvertVecToMetadata(vec)
}
