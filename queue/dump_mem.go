package queue

import "unsafe"

// unsafeBytesFromVirtAddr views size bytes at addr as a byte slice,
// for the dump-to-file trigger's raw memory capture. addr must be a
// live mapping obtained from buffer.SurfaceBuffer.Map; the returned
// slice is only valid as long as that mapping is.
func unsafeBytesFromVirtAddr(addr uintptr, size int) []byte {
	if addr == 0 || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}
