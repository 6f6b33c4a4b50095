package queue

import "github.com/neo3gfx/graphicsurface/fence"

// ConsumerListener is notified when a buffer becomes available to
// acquire. Exactly one listener variant is registered at a time; a
// later RegisterConsumerListener replaces whichever is already there.
type ConsumerListener interface {
	OnBufferAvailable()
}

// ReleaseListener is the legacy producer-release callback: it learns
// that some buffer was released but not which one.
type ReleaseListener interface {
	OnBufferReleased()
}

// ReleaseListenerWithFence is the modern producer-release callback:
// it learns the sequence number and the release fence to wait on
// before reusing the buffer.
type ReleaseListenerWithFence interface {
	OnBufferReleasedWithFence(seq uint32, f fence.Fence)
}

// DeleteListener is notified when a slot's cache entry is destroyed.
// Two independent registrations exist — main-thread and
// hardware-thread — because a single release can need to update both
// a CPU-side cache and a hardware composer's buffer table.
type DeleteListener interface {
	OnBufferDelete(seq uint32)
}

// UserDataListener is notified when a named user-data key changes.
type UserDataListener interface {
	OnUserDataChange(key, value string)
}

// GoBackgroundListener is fired by GoBackground in addition to the
// ordinary cache-clearing side effects.
type GoBackgroundListener interface {
	OnGoBackground()
}

// CleanCacheListener is fired by CleanCache in addition to the
// ordinary cache-clearing side effects.
type CleanCacheListener interface {
	OnCleanCache()
}

// consumerListeners, releaseListeners, etc. are grouped in their own
// structs each guarded by their own mutex (see BufferQueue in
// queue.go), so firing one never risks deadlocking against a caller
// already holding the primary lock: user-supplied callbacks must
// never run under the primary queue lock.
