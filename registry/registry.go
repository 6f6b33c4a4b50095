// Package registry implements the process-wide bookkeeping layer: a
// single SurfaceUtils-style registry mapping a surface's unique id to
// a surface reference and to its native-window pointer, plus the
// texture-transform matrix composition those surfaces' consumers need
// to sample a buffer correctly.
package registry

import (
	"sync"

	"github.com/neo3gfx/graphicsurface/surface"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// entry is one registered surface's bookkeeping: a plain pointer to
// its ConsumerSurface and, once one exists, the NativeWindow wrapping
// it. Neither field is reference-counted here, and neither is weak:
// an entry keeps both values reachable until Remove drops it.
type entry struct {
	surface     *surface.ConsumerSurface
	nativeWindow any
}

// SurfaceUtils is the process-wide registry. The zero value is not
// ready for use; construct one with New, or use the package-level
// Default singleton, a single lazily-initialized instance shared by
// an entire process.
type SurfaceUtils struct {
	mu      sync.RWMutex
	entries map[uint64]*entry
}

// New builds an empty registry. Most callers in a single process
// should share Default instead; New exists mainly for tests that want
// isolation between cases.
func New() *SurfaceUtils {
	return &SurfaceUtils{entries: make(map[uint64]*entry)}
}

var (
	defaultOnce sync.Once
	defaultInst *SurfaceUtils
)

// Default returns the process-wide SurfaceUtils instance, initializing
// it on first access with sync.Once rather than relying on
// static-initialization ordering.
func Default() *SurfaceUtils {
	defaultOnce.Do(func() { defaultInst = New() })
	return defaultInst
}

// Add registers s under uniqueID. A second Add for the same uniqueID
// replaces the previous entry's surface reference but preserves any
// native-window pointer already recorded by SetNativeWindow, since the
// two are set at different points in a surface's lifecycle.
func (u *SurfaceUtils) Add(uniqueID uint64, s *surface.ConsumerSurface) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e, ok := u.entries[uniqueID]
	if !ok {
		e = &entry{}
		u.entries[uniqueID] = e
	}
	e.surface = s
}

// Remove drops uniqueID's entry entirely.
func (u *SurfaceUtils) Remove(uniqueID uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.entries, uniqueID)
}

// GetSurface looks up the surface registered for uniqueID.
func (u *SurfaceUtils) GetSurface(uniqueID uint64) (*surface.ConsumerSurface, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	e, ok := u.entries[uniqueID]
	if !ok || e.surface == nil {
		return nil, surferr.New("GetSurface", surferr.NoEntry)
	}
	return e.surface, nil
}

// SetNativeWindow records win as the native-window pointer for
// uniqueID. win is typed any because NativeWindow lives in a separate
// package (window) that itself depends on surface, not registry;
// keeping the field untyped here avoids an import cycle while still
// letting GetNativeWindow hand the same value back unchanged.
func (u *SurfaceUtils) SetNativeWindow(uniqueID uint64, win any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e, ok := u.entries[uniqueID]
	if !ok {
		e = &entry{}
		u.entries[uniqueID] = e
	}
	e.nativeWindow = win
}

// GetNativeWindow looks up the native-window pointer recorded for
// uniqueID.
func (u *SurfaceUtils) GetNativeWindow(uniqueID uint64) (any, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	e, ok := u.entries[uniqueID]
	if !ok || e.nativeWindow == nil {
		return nil, surferr.New("GetNativeWindow", surferr.NoEntry)
	}
	return e.nativeWindow, nil
}
