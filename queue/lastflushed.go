package queue

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/internal/mat4"
)

// LastFlushedResult is GetLastFlushedBuffer's output: the buffer most
// recently flushed, its fence, and the texture-coordinate transform a
// renderer should apply to sample it correctly.
type LastFlushedResult struct {
	Buf    *buffer.SurfaceBuffer
	Fence  fence.Fence
	Matrix [16]float32
}

// transformMatrixLocked builds the texture-coordinate transform for
// seq's buffer by composing its per-buffer Transform with the queue's
// own transform, the way ComputeTransformMatrix does for producer
// surfaces. q.mu must be held.
func (q *BufferQueue) transformMatrixLocked(s uint32) [16]float32 {
	sl := q.slots[s]
	var m, t buffer.Transform
	if sl != nil {
		m = sl.buf.Transform()
	}
	t = q.transform
	return composeTransform(m, t).Array()
}

func composeTransform(buf, queue buffer.Transform) mat4.M4 {
	var a, b, out mat4.M4
	transformMat4(buf, &a)
	transformMat4(queue, &b)
	out.Mul(&a, &b)
	return out
}

// transformMat4 fills m with the flip/rotate matrix corresponding to
// t. Rotation is expressed as flip-plus-swap in the standard way the
// eight dihedral transforms compose.
func transformMat4(t buffer.Transform, m *mat4.M4) {
	m.I()
	switch t {
	case buffer.TransformNone:
	case buffer.Transform90:
		*m = mat4.M4{{0, 1}, {-1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.Transform180:
		*m = mat4.M4{{-1, 0}, {0, -1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.Transform270:
		*m = mat4.M4{{0, -1}, {1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipH:
		*m = mat4.M4{{-1, 0}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipV:
		*m = mat4.M4{{1, 0}, {0, -1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipH90:
		*m = mat4.M4{{0, 1}, {1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipV90:
		*m = mat4.M4{{0, -1}, {-1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	}
}

// GetLastFlushedBuffer returns the buffer behind the most recent
// FlushBuffer call regardless of its current slot state, along with
// the matrix a consumer should use to sample it. Protected buffers
// are withheld with NO_PERMISSION, since handing back a CPU-mappable
// reference to protected content would defeat the point of the usage
// flag.
func (q *BufferQueue) GetLastFlushedBuffer() (LastFlushedResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.hasLastFlush {
		return LastFlushedResult{}, errNoEntry("GetLastFlushedBuffer")
	}
	sl, ok := q.slots[q.lastFlushed]
	if !ok {
		return LastFlushedResult{}, errNoEntry("GetLastFlushedBuffer")
	}
	if sl.buf.Handle().Usage.Has(buffer.UsageProtected) {
		return LastFlushedResult{}, errNoPermission("GetLastFlushedBuffer")
	}
	return LastFlushedResult{
		Buf:    sl.buf,
		Fence:  sl.fence,
		Matrix: q.transformMatrixLocked(q.lastFlushed),
	}, nil
}

// AcquireLastFlushedBuffer implements the supplemented paired
// hold/release pattern: it behaves like GetLastFlushedBuffer but
// additionally increments an outstanding-hold counter, which
// ReleaseLastFlushedBuffer decrements. The counter only pairs the two
// calls: CleanCache, GoBackground and OnConsumerDied still delete the
// buffer while holds are outstanding, and reset the counter to zero.
func (q *BufferQueue) AcquireLastFlushedBuffer() (LastFlushedResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.hasLastFlush {
		return LastFlushedResult{}, errNoEntry("AcquireLastFlushedBuffer")
	}
	sl, ok := q.slots[q.lastFlushed]
	if !ok {
		return LastFlushedResult{}, errNoEntry("AcquireLastFlushedBuffer")
	}
	if sl.buf.Handle().Usage.Has(buffer.UsageProtected) {
		return LastFlushedResult{}, errNoPermission("AcquireLastFlushedBuffer")
	}
	q.lastFlushHold++
	return LastFlushedResult{
		Buf:    sl.buf,
		Fence:  sl.fence,
		Matrix: q.transformMatrixLocked(q.lastFlushed),
	}, nil
}

// ReleaseLastFlushedBuffer drops one outstanding hold acquired by
// AcquireLastFlushedBuffer.
func (q *BufferQueue) ReleaseLastFlushedBuffer() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lastFlushHold <= 0 {
		return errInvalidOp("ReleaseLastFlushedBuffer")
	}
	q.lastFlushHold--
	return nil
}

// PresentTimestampKind selects which of a slot's two recorded times
// GetPresentTimestamp returns.
type PresentTimestampKind int32

const (
	// PresentTimestampDesired is the present time the producer asked
	// for when it called FlushBuffer.
	PresentTimestampDesired PresentTimestampKind = iota
	// PresentTimestampActual is the time the queue itself processed
	// that flush, recorded in flushTimestamp.
	PresentTimestampActual
)

// GetPresentTimestamp returns either the desired present timestamp the
// producer requested at flush time, or the timestamp the queue
// actually recorded when it processed that flush, selected by kind.
func (q *BufferQueue) GetPresentTimestamp(s uint32, kind PresentTimestampKind) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	sl, ok := q.slots[s]
	if !ok {
		return 0, errNoEntry("GetPresentTimestamp")
	}
	if kind == PresentTimestampActual {
		if sl.flushTimestamp == 0 {
			return 0, errNoEntry("GetPresentTimestamp")
		}
		return sl.flushTimestamp, nil
	}
	if sl.presentTimestamp == 0 {
		return 0, errNoEntry("GetPresentTimestamp")
	}
	return sl.presentTimestamp, nil
}

// SetTunnelHandle attaches an opaque tunnel-mode handle blob to seq's
// slot, and GetTunnelHandle retrieves it. Tunnel mode bypasses the
// ordinary buffer content path entirely (a hardware video pipeline
// writes directly to the display), so the queue only ever stores and
// forwards this blob without interpreting it.
func (q *BufferQueue) SetTunnelHandle(s uint32, handle []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	sl, ok := q.slots[s]
	if !ok {
		return errNoEntry("SetTunnelHandle")
	}
	sl.tunnel = handle
	return nil
}

func (q *BufferQueue) GetTunnelHandle(s uint32) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	sl, ok := q.slots[s]
	if !ok {
		return nil, errNoEntry("GetTunnelHandle")
	}
	return sl.tunnel, nil
}
