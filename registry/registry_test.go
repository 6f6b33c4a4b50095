package registry

import (
	"testing"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/seq"
	"github.com/neo3gfx/graphicsurface/surface"
)

type fakeAllocator struct{ nextFD int }

func (a *fakeAllocator) Alloc(cfg buffer.Config, previous *buffer.Handle) (buffer.Handle, error) {
	a.nextFD++
	return buffer.Handle{FD: a.nextFD, Width: cfg.Width, Height: cfg.Height}, nil
}
func (a *fakeAllocator) Free(h buffer.Handle) error           { return nil }
func (a *fakeAllocator) Map(h *buffer.Handle) error           { return nil }
func (a *fakeAllocator) Unmap(h *buffer.Handle) error         { return nil }
func (a *fakeAllocator) FlushCache(h buffer.Handle) error     { return nil }
func (a *fakeAllocator) InvalidateCache(h buffer.Handle) error { return nil }

func TestAddRemoveGetSurface(t *testing.T) {
	r := New()
	q := queue.New("reg-test", &fakeAllocator{}, seq.NewGenerator(1), 3, 64, 64, buffer.UsageHWTexture)
	cs := surface.NewConsumerSurface(q)

	r.Add(7, cs)
	got, err := r.GetSurface(7)
	if err != nil {
		t.Fatalf("GetSurface: %v", err)
	}
	if got != cs {
		t.Fatal("GetSurface returned a different surface")
	}

	r.Remove(7)
	if _, err := r.GetSurface(7); err == nil {
		t.Fatal("expected NO_ENTRY after Remove")
	}
}

func TestNativeWindowRoundTrip(t *testing.T) {
	r := New()
	r.SetNativeWindow(3, "placeholder-window")
	got, err := r.GetNativeWindow(3)
	if err != nil {
		t.Fatalf("GetNativeWindow: %v", err)
	}
	if got != "placeholder-window" {
		t.Fatalf("got %v", got)
	}
}

func TestComputeTransformMatrixIdentityFullCrop(t *testing.T) {
	crop := metadata.CropRegion{X: 0, Y: 0, W: 100, H: 50}
	m1 := ComputeTransformMatrixV1(100, 50, buffer.TransformNone, crop)
	if m1[0] != 1 || m1[5] != 1 {
		t.Fatalf("expected an identity scale for a full-size crop, got %v", m1)
	}

	m2 := ComputeTransformMatrixV2(100, 50, buffer.TransformNone, crop)
	if m2[0] != 1 || m2[5] != 1 {
		t.Fatalf("expected an identity scale for a full-size crop, got %v", m2)
	}
}

func TestComputeTransformMatrixV1V2Differ(t *testing.T) {
	crop := metadata.CropRegion{X: 0, Y: 10, W: 100, H: 40}
	m1 := ComputeTransformMatrixV1(100, 50, buffer.TransformNone, crop)
	m2 := ComputeTransformMatrixV2(100, 50, buffer.TransformNone, crop)
	if m1[13] == m2[13] {
		t.Fatal("expected V1 and V2 to disagree on the Y translation for an off-center crop")
	}
}
