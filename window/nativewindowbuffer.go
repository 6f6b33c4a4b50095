package window

import (
	"sync"

	"code.hybscloud.com/atomix"
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// NativeWindowBuffer is the reference-counted, magic-tagged handle to
// one of a NativeWindow's buffers. It holds the underlying
// SurfaceBuffer plus a non-owning back-reference to the NativeWindow
// it came from, so a caller holding only the NativeWindowBuffer can
// recover its window through Window() without separately tracking
// which window it belongs to.
//
// The back-reference is a plain pointer, not a counted one: an
// explicit non-owning pointer avoids a reference-counted back-edge
// and the cycle it would create, since NativeWindow already owns the
// map this object lives in.
type NativeWindowBuffer struct {
	magic uint32
	ref   atomix.Int32

	mu  sync.Mutex
	buf *buffer.SurfaceBuffer
	win *NativeWindow
}

func newNativeWindowBuffer(buf *buffer.SurfaceBuffer, win *NativeWindow) *NativeWindowBuffer {
	nwb := &NativeWindowBuffer{magic: magicBuffer, buf: buf, win: win}
	nwb.ref.Store(1)
	return nwb
}

func (b *NativeWindowBuffer) valid() error {
	if b == nil || b.magic != magicBuffer {
		return surferr.New("NativeWindowBuffer", surferr.InvalidArguments)
	}
	return nil
}

// Ref/Unref mirror NativeWindow's reference counting.
func (b *NativeWindowBuffer) Ref() { b.ref.Add(1) }

func (b *NativeWindowBuffer) Unref() bool {
	return b.ref.Add(-1) == 0
}

// Buffer returns the SurfaceBuffer this handle wraps.
func (b *NativeWindowBuffer) Buffer() (*buffer.SurfaceBuffer, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf, nil
}

// Window returns the NativeWindow this buffer was dequeued from.
func (b *NativeWindowBuffer) Window() (*NativeWindow, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.win, nil
}
