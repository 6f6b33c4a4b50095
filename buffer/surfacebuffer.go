// Package buffer implements SurfaceBuffer, the queueable unit the
// rest of the engine passes around: a memory handle from an external
// Allocator plus the bookkeeping attached to it — sequence number,
// buffer id, color gamut/transform/crop/scaling, the extra data and
// metadata maps, and the producer-side fence a consumer must wait on
// before touching the pixels.
package buffer

import (
	"os"
	"sync"

	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/surferr"
)

var pid = uint32(os.Getpid())

// NewBufferID composes a 64-bit buffer id: the owning process id in
// the high 32 bits, an allocation-local sequence in the low 32 bits.
func NewBufferID(localSeq uint32) uint64 {
	return uint64(pid)<<32 | uint64(localSeq)
}

// ScalingMode selects how a buffer is fit to its presentation
// surface when the two have different aspect ratios.
type ScalingMode int32

const (
	ScaleFreedom ScalingMode = iota
	ScaleFit
	ScaleCrop
)

// SurfaceBuffer is a single allocated buffer together with everything
// the queue needs to track about it between RequestBuffer and its
// eventual reclaim.
type SurfaceBuffer struct {
	mu sync.Mutex

	handle Handle
	seq    uint32
	id     uint64
	cfg    Config

	colorGamut  ColorGamut
	transform   Transform
	scalingMode ScalingMode
	crop        metadata.CropRegion

	extra *extradata.ExtraData
	meta  *metadata.Map

	acquireFence fence.Fence
	reclaimed    bool
}

// Alloc allocates a new SurfaceBuffer from alc per cfg. previous, if
// non-nil, is the slot's prior occupant being replaced; its handle is
// passed to the Allocator as a reuse hint and is not otherwise
// touched (the caller is still responsible for freeing it).
func Alloc(alc Allocator, seq uint32, cfg Config, previous *SurfaceBuffer) (*SurfaceBuffer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, surferr.New("Alloc", surferr.InvalidArguments)
	}
	if cfg.StrideAlignment != 0 &&
		(cfg.StrideAlignment < MinStrideAlignment || cfg.StrideAlignment > MaxStrideAlignment) {
		return nil, surferr.New("Alloc", surferr.InvalidArguments)
	}
	if cfg.ColorGamut < 0 || cfg.ColorGamut > MaxColorGamut {
		return nil, surferr.New("Alloc", surferr.InvalidArguments)
	}
	if cfg.Transform < 0 || cfg.Transform > MaxTransform {
		return nil, surferr.New("Alloc", surferr.InvalidArguments)
	}

	var prevHandle *Handle
	if previous != nil {
		prevHandle = &previous.handle
	}
	h, err := alc.Alloc(cfg, prevHandle)
	if err != nil {
		return nil, surferr.Wrap("Alloc", surferr.HDIError, err)
	}

	sb := &SurfaceBuffer{
		handle:     h,
		seq:        seq,
		id:         NewBufferID(seq),
		cfg:        cfg,
		colorGamut: cfg.ColorGamut,
		transform:  cfg.Transform,
		extra:      extradata.New(),
		meta:       metadata.NewMap(),

		acquireFence: fence.Invalid,
	}

	return sb, nil
}

// Seq returns the sequence number this buffer currently occupies.
func (b *SurfaceBuffer) Seq() uint32 { return b.seq }

// ID returns the buffer's 64-bit unique id.
func (b *SurfaceBuffer) ID() uint64 { return b.id }

// Handle returns a copy of the buffer's current memory handle.
func (b *SurfaceBuffer) Handle() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// Config returns the request configuration this buffer was allocated
// with.
func (b *SurfaceBuffer) Config() Config { return b.cfg }

func (b *SurfaceBuffer) ColorGamut() ColorGamut { return b.colorGamut }
func (b *SurfaceBuffer) SetColorGamut(g ColorGamut) { b.colorGamut = g }

func (b *SurfaceBuffer) Transform() Transform { return b.transform }
func (b *SurfaceBuffer) SetTransform(t Transform) { b.transform = t }

func (b *SurfaceBuffer) ScalingMode() ScalingMode { return b.scalingMode }
func (b *SurfaceBuffer) SetScalingMode(m ScalingMode) { b.scalingMode = m }

func (b *SurfaceBuffer) Crop() metadata.CropRegion { return b.crop }
func (b *SurfaceBuffer) SetCrop(r metadata.CropRegion) { b.crop = r }

// ExtraData returns the buffer's BufferExtraData map.
func (b *SurfaceBuffer) ExtraData() *extradata.ExtraData { return b.extra }

// Map establishes a CPU mapping for the buffer's memory. Protected
// buffers are never mappable: the whole point of the usage flag is
// that no CPU view of the memory may exist.
func (b *SurfaceBuffer) Map(alc Allocator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle.Usage.Has(UsageProtected) {
		return surferr.New("Map", surferr.NoPermission)
	}
	if b.handle.Mapped() {
		return nil
	}
	if err := alc.Map(&b.handle); err != nil {
		return surferr.Wrap("Map", surferr.HDIError, err)
	}
	return nil
}

// Unmap tears down a mapping established by Map.
func (b *SurfaceBuffer) Unmap(alc Allocator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.handle.Mapped() {
		return nil
	}
	if err := alc.Unmap(&b.handle); err != nil {
		return surferr.Wrap("Unmap", surferr.HDIError, err)
	}
	return nil
}

// FlushCache pushes pending CPU writes to device-visible memory.
func (b *SurfaceBuffer) FlushCache(alc Allocator) error {
	b.mu.Lock()
	h := b.handle
	b.mu.Unlock()
	if err := alc.FlushCache(h); err != nil {
		return surferr.Wrap("FlushCache", surferr.HDIError, err)
	}
	return nil
}

// InvalidateCache discards stale CPU cache lines before a CPU read.
func (b *SurfaceBuffer) InvalidateCache(alc Allocator) error {
	b.mu.Lock()
	h := b.handle
	b.mu.Unlock()
	if err := alc.InvalidateCache(h); err != nil {
		return surferr.Wrap("InvalidateCache", surferr.HDIError, err)
	}
	return nil
}

// SetMetadata stores data at key. When enableCache is true and the
// value already stored at key is byte-for-byte identical, the write
// is skipped — callers that poll a changing struct and write it back
// every frame (TVPQMetadata, say) avoid re-copying the value into the
// metadata map for a no-op update.
func (b *SurfaceBuffer) SetMetadata(key uint32, data []byte, enableCache bool) error {
	if enableCache {
		if cur, err := b.meta.GetMetadata(key); err == nil && bytesEqual(cur, data) {
			return nil
		}
	}
	return b.meta.SetMetadata(key, data)
}

// GetMetadata returns the bytes stored at key. Because SetMetadata
// takes the extra enableCache argument, SurfaceBuffer does not
// satisfy metadata.Accessor.
func (b *SurfaceBuffer) GetMetadata(key uint32) ([]byte, error) {
	return b.meta.GetMetadata(key)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetAndMergeSyncFence merges f into the buffer's current acquire
// fence using fence.Merge, replacing it with the combined fence. A
// consumer that later waits on the buffer's fence then waits for
// every producer-side write that contributed to it.
func (b *SurfaceBuffer) SetAndMergeSyncFence(name string, f fence.Fence) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	merged, err := fence.Merge(name, b.acquireFence, f)
	if err != nil {
		return err
	}
	b.acquireFence = merged
	return nil
}

// Fence returns the buffer's current acquire fence.
func (b *SurfaceBuffer) Fence() fence.Fence {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquireFence
}

// Reclaimed reports whether TryReclaim has released this buffer's
// memory already.
func (b *SurfaceBuffer) Reclaimed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reclaimed
}

// TryReclaim asks a memory-pressure reclaim daemon to release the
// buffer's backing memory while the SurfaceBuffer struct itself (and
// its sequence number / metadata) stays alive, per the supplemented
// reclaim-daemon hooks: a reclaimed slot can still be inspected, just
// not mapped or handed to the device until TryResumeIfNeeded runs.
func (b *SurfaceBuffer) TryReclaim(alc Allocator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reclaimed {
		return surferr.New("TryReclaim", surferr.InvalidOperating)
	}
	if err := alc.Free(b.handle); err != nil {
		return surferr.Wrap("TryReclaim", surferr.HDIError, err)
	}
	b.handle.VirtAddr = 0
	b.reclaimed = true
	return nil
}

// TryResumeIfNeeded reallocates memory for a buffer previously
// reclaimed by TryReclaim, restoring it to a usable state with the
// same Config it was originally allocated with. It is a no-op if the
// buffer was never reclaimed.
func (b *SurfaceBuffer) TryResumeIfNeeded(alc Allocator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.reclaimed {
		return nil
	}
	h, err := alc.Alloc(b.cfg, nil)
	if err != nil {
		return surferr.Wrap("TryResumeIfNeeded", surferr.HDIError, err)
	}
	h.Usage = b.handle.Usage
	b.handle = h
	b.reclaimed = false
	return nil
}
