package surface

import (
	"testing"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/producer"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/seq"
)

type fakeAllocator struct{ nextFD int }

func (a *fakeAllocator) Alloc(cfg buffer.Config, previous *buffer.Handle) (buffer.Handle, error) {
	a.nextFD++
	return buffer.Handle{FD: a.nextFD, Width: cfg.Width, Height: cfg.Height, Format: cfg.Format, Usage: cfg.Usage}, nil
}
func (a *fakeAllocator) Free(h buffer.Handle) error           { return nil }
func (a *fakeAllocator) Map(h *buffer.Handle) error           { return nil }
func (a *fakeAllocator) Unmap(h *buffer.Handle) error         { return nil }
func (a *fakeAllocator) FlushCache(h buffer.Handle) error     { return nil }
func (a *fakeAllocator) InvalidateCache(h buffer.Handle) error { return nil }

func newRig(t *testing.T) (*ProducerSurface, *ConsumerSurface) {
	t.Helper()
	q := queue.New("test-surface", &fakeAllocator{}, seq.NewGenerator(1), 3, 64, 64, buffer.UsageHWTexture)
	cs := NewConsumerSurface(q)
	srv := cs.Producer(nil)
	cli := producer.NewBufferClientProducer(producer.LocalTransport{Server: srv}, nil)
	ps := NewProducerSurface("test-surface", cli, nil)
	return ps, cs
}

func TestProducerSurfaceRequestCachesOnlyOnce(t *testing.T) {
	ps, cs := newRig(t)
	if err := ps.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}
	buf, _, err := ps.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("RequestBuffer: %v", err)
	}
	if buf == nil {
		t.Fatal("expected a cached buffer on first request")
	}
	s := buf.Seq()

	if err := ps.FlushBuffer(s, nil, fence.Invalid, queue.FlushConfig{}); err != nil {
		t.Fatalf("FlushBuffer: %v", err)
	}
	ar, err := cs.AcquireBuffer()
	if err != nil {
		t.Fatalf("AcquireBuffer: %v", err)
	}
	if err := cs.ReleaseBuffer(ar.Seq, fence.Invalid); err != nil {
		t.Fatalf("ReleaseBuffer: %v", err)
	}

	buf2, _, err := ps.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("second RequestBuffer: %v", err)
	}
	if buf2 == nil || buf2.Seq() != s {
		t.Fatalf("expected the cache to serve the reused slot, got %+v", buf2)
	}
	if _, ok := ps.CachedBuffer(s); !ok {
		t.Fatal("expected the slot to remain cached")
	}
}

func TestProducerSurfaceDisconnectClearsCache(t *testing.T) {
	ps, _ := newRig(t)
	if err := ps.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}
	buf, _, err := ps.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("RequestBuffer: %v", err)
	}

	if err := ps.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if _, ok := ps.CachedBuffer(buf.Seq()); ok {
		t.Fatal("expected Disconnect to clear the local cache")
	}
	if _, _, err := ps.RequestBuffer(cfg); err == nil {
		t.Fatal("expected RequestBuffer to fail while disconnected")
	}
}

func TestProducerSurfaceUserDataListener(t *testing.T) {
	ps, _ := newRig(t)

	var calls int
	var lastKey, lastVal string
	ps.RegisterUserDataListener("focus", userDataFunc(func(k, v string) {
		calls++
		lastKey, lastVal = k, v
	}))

	ps.SetUserData("focus", "true")
	ps.SetUserData("focus", "true") // unchanged, must not refire
	ps.SetUserData("focus", "false")

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if lastKey != "focus" || lastVal != "false" {
		t.Fatalf("got (%q, %q)", lastKey, lastVal)
	}
}

type userDataFunc func(key, value string)

func (f userDataFunc) OnUserDataChange(key, value string) { f(key, value) }
