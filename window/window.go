// Package window implements reference-counted, opaque handle types:
// NativeWindow wraps a ProducerSurface for C-style callers that expect
// a single reference-counted pointer with a property-dispatch
// function, and NativeWindowBuffer does the same for one of its
// buffers.
package window

import (
	"sync"

	"code.hybscloud.com/atomix"
	"github.com/agilira/go-timecache"
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/surface"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// Magic tags the dispatch layer checks before trusting a pointer
// handed in by a foreign caller.
const (
	magicWindow uint32 = 0x57494e44 // 'WIND'
	magicBuffer uint32 = 0x57425546 // 'WBUF'
)

// Config is the window property set OptCode get/set operates over:
// the producer-side request/flush overrides plus the window-specific
// hold flag, source and framework type tags, and white-point
// brightness a compositor-facing window layer needs.
type Config struct {
	Usage           buffer.Usage
	Width, Height   int32
	Format          buffer.Format
	StrideAlignment int32
	Timeout         int32
	ColorGamut      buffer.ColorGamut
	Transform       buffer.Transform

	SourceType            int32
	FrameworkType         int32
	WhitePointBrightness  float32
	Hold                  bool
	QueueSize             int
}

// NativeWindow is the reference-counted, magic-tagged producer-side
// window handle. It embeds a ProducerSurface, the UI timestamp last
// recorded by SetUITimestamp, a seq→NativeWindowBuffer mirror cache,
// and its own Config snapshot.
type NativeWindow struct {
	magic uint32
	ref   atomix.Int32

	mu  sync.Mutex
	Surf *surface.ProducerSurface
	drv fence.Driver

	uiTimestamp int64
	cfg         Config

	buffers map[uint32]*NativeWindowBuffer
}

// NewNativeWindow builds a NativeWindow over surf with one initial
// reference: constructors return already-referenced handles rather
// than requiring a separate Ref call.
func NewNativeWindow(surf *surface.ProducerSurface, drv fence.Driver) *NativeWindow {
	w := &NativeWindow{
		magic:   magicWindow,
		Surf:    surf,
		drv:     drv,
		buffers: make(map[uint32]*NativeWindowBuffer),
	}
	w.ref.Store(1)
	return w
}

// Ref increments w's reference count.
func (w *NativeWindow) Ref() { w.ref.Add(1) }

// Unref decrements w's reference count and reports whether it reached
// zero. A caller that observes true has just released the last
// reference and must not use w again.
func (w *NativeWindow) Unref() bool {
	return w.ref.Add(-1) == 0
}

// valid rejects a nil or wrongly-tagged pointer, the dispatch layer's
// defense against a foreign caller passing the wrong kind of handle.
func (w *NativeWindow) valid() error {
	if w == nil || w.magic != magicWindow {
		return surferr.New("NativeWindow", surferr.InvalidArguments)
	}
	return nil
}

// SetUITimestamp records a UI-thread timestamp that UITimestamp reads
// back. QueueBuffer does not attach it to the flush; it stamps the
// flush with the current cached time instead.
func (w *NativeWindow) SetUITimestamp(ts int64) error {
	if err := w.valid(); err != nil {
		return err
	}
	w.mu.Lock()
	w.uiTimestamp = ts
	w.mu.Unlock()
	return nil
}

func (w *NativeWindow) UITimestamp() (int64, error) {
	if err := w.valid(); err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.uiTimestamp, nil
}

// DequeueBuffer requests a buffer from the underlying ProducerSurface
// and wraps it in a NativeWindowBuffer, caching the wrapper in w's
// mirror by sequence number so a later DequeueBuffer of the same slot
// hands back the same NativeWindowBuffer.
func (w *NativeWindow) DequeueBuffer() (*NativeWindowBuffer, fence.Fence, error) {
	if err := w.valid(); err != nil {
		return nil, fence.Invalid, err
	}
	w.mu.Lock()
	cfg := w.requestConfigLocked()
	w.mu.Unlock()

	buf, f, err := w.Surf.RequestBuffer(cfg)
	if err != nil {
		return nil, fence.Invalid, err
	}

	w.mu.Lock()
	nwb, ok := w.buffers[buf.Seq()]
	if !ok {
		nwb = newNativeWindowBuffer(buf, w)
		w.buffers[buf.Seq()] = nwb
	}
	w.mu.Unlock()
	return nwb, f, nil
}

func (w *NativeWindow) requestConfigLocked() buffer.Config {
	return buffer.Config{
		Width:           w.cfg.Width,
		Height:          w.cfg.Height,
		StrideAlignment: w.cfg.StrideAlignment,
		Format:          w.cfg.Format,
		Usage:           w.cfg.Usage,
		Timeout:         w.cfg.Timeout,
		ColorGamut:      w.cfg.ColorGamut,
		Transform:       w.cfg.Transform,
	}
}

// QueueBuffer flushes nwb's buffer back to the consumer with
// acquireFence as its acquire fence and no explicit damage (full
// buffer is assumed dirty).
func (w *NativeWindow) QueueBuffer(nwb *NativeWindowBuffer, acquireFence fence.Fence) error {
	if err := w.valid(); err != nil {
		return err
	}
	if err := nwb.valid(); err != nil {
		return err
	}
	now := timecache.DefaultCache().CachedTime().UnixNano()
	return w.Surf.FlushBuffer(nwb.buf.Seq(), nil, acquireFence, queue.FlushConfig{DesiredPresentTs: now})
}

// CancelBuffer returns nwb to the free list unfilled.
func (w *NativeWindow) CancelBuffer(nwb *NativeWindowBuffer) error {
	if err := w.valid(); err != nil {
		return err
	}
	if err := nwb.valid(); err != nil {
		return err
	}
	return w.Surf.CancelBuffer(nwb.buf.Seq(), nil)
}
