package queue

import "github.com/neo3gfx/graphicsurface/buffer"

// Buffer returns the SurfaceBuffer currently cached at seq, letting a
// caller outside this package (the producer dispatcher, metadata
// setters routed by sequence number) reach a slot's buffer without
// this package exposing the slot type itself.
func (q *BufferQueue) Buffer(s uint32) (*buffer.SurfaceBuffer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	sl, ok := q.slots[s]
	if !ok {
		return nil, errNoEntry("Buffer")
	}
	return sl.buf, nil
}

// ScalingMode and SetScalingMode read and store the queue-wide
// scaling mode set through SET_SCALING_MODE. The value is only
// stored: FlushBuffer takes each slot's mode from its FlushConfig and
// does not fall back to this one.
func (q *BufferQueue) ScalingMode() buffer.ScalingMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.defaultScalingMode
}

func (q *BufferQueue) SetScalingMode(m buffer.ScalingMode) {
	q.mu.Lock()
	q.defaultScalingMode = m
	q.mu.Unlock()
}

// SetScalingModeV2 implements SET_SCALING_MODE_V2: the mode applies
// only to seq's own slot and buffer.
func (q *BufferQueue) SetScalingModeV2(s uint32, m buffer.ScalingMode) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	sl, ok := q.slots[s]
	if !ok {
		return errNoEntry("SetScalingModeV2")
	}
	sl.scalingMode = m
	sl.buf.SetScalingMode(m)
	return nil
}
