package queue

import (
	"fmt"
	"strings"

	"github.com/neo3gfx/graphicsurface/metadata"
)

// Dump renders the same multi-line textual summary the native dump
// command produces: queue identity and sizing, list occupancy, total
// buffer memory, and a per-slot line with its state, timestamps,
// damage, config, scaling mode, HDR presence, and size in KiB.
func (q *BufferQueue) Dump() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "BufferQueue name=%s id=%d default=%dx%d queueSize=%d\n",
		q.name, q.uniqueID, q.defaultWidth, q.defaultHeight, q.queueSize)
	fmt.Fprintf(&b, "  used=%d free=%d dirty=%d deleting=%d\n",
		len(q.slots), len(q.free), len(q.dirty), len(q.deleting))

	var totalKiB int64
	for _, sl := range q.slots {
		totalKiB += int64(sl.buf.Handle().Size) / 1024
	}
	fmt.Fprintf(&b, "  totalMemory=%dKiB\n", totalKiB)

	for s, sl := range q.slots {
		h := sl.buf.Handle()
		_, hdrErr := sl.buf.GetMetadata(metadata.KeyHDRStaticMetadata)
		hasHDR := hdrErr == nil
		fmt.Fprintf(&b, "  slot#%d state=%s flushTs=%d presentTs=%d damages=%d cfg=%dx%d/%v scalingMode=%v hdr=%v actual=%dx%d size=%dKiB\n",
			s, sl.state, sl.flushTimestamp, sl.presentTimestamp, len(sl.damages),
			sl.cfg.Width, sl.cfg.Height, sl.cfg.Format, sl.scalingMode, hasHDR,
			h.Width, h.Height, h.Size/1024)
	}
	return b.String()
}

// String satisfies fmt.Stringer with the same rendering as Dump.
func (q *BufferQueue) String() string { return q.Dump() }
