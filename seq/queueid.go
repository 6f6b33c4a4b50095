package seq

import "code.hybscloud.com/atomix"

// QueueID is a 64-bit unique queue id: high 32 bits the owning
// process id, low 32 bits a per-process queue counter.
type QueueID uint64

// Pid returns the process id encoded in id.
func (id QueueID) Pid() uint32 { return uint32(id >> 32) }

// Counter returns the per-process counter encoded in id.
func (id QueueID) Counter() uint32 { return uint32(id) }

// queueCounter is shared process-wide: one counter for the whole
// process regardless of how many BufferQueues exist.
var queueCounter atomix.Uint32

// NextQueueID returns a new, process-wide-unique QueueID. It never
// repeats within a process's lifetime (short of wrapping a 32-bit
// counter, which would require four billion queues).
func NextQueueID() QueueID {
	c := queueCounter.AddAcqRel(1)
	return QueueID(uint64(processID)<<32 | uint64(c))
}
