package producer

import (
	"testing"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/queue"
	"github.com/neo3gfx/graphicsurface/seq"
)

type fakeAllocator struct{ nextFD int }

func (a *fakeAllocator) Alloc(cfg buffer.Config, previous *buffer.Handle) (buffer.Handle, error) {
	a.nextFD++
	return buffer.Handle{FD: a.nextFD, Width: cfg.Width, Height: cfg.Height, Format: cfg.Format, Usage: cfg.Usage}, nil
}
func (a *fakeAllocator) Free(h buffer.Handle) error            { return nil }
func (a *fakeAllocator) Map(h *buffer.Handle) error             { return nil }
func (a *fakeAllocator) Unmap(h *buffer.Handle) error           { return nil }
func (a *fakeAllocator) FlushCache(h buffer.Handle) error       { return nil }
func (a *fakeAllocator) InvalidateCache(h buffer.Handle) error  { return nil }

type fakeConsumer struct{ n int }

func (c *fakeConsumer) OnBufferAvailable() { c.n++ }

func newTestRig(t *testing.T) (*BufferClientProducer, *queue.BufferQueue) {
	t.Helper()
	q := queue.New("test", &fakeAllocator{}, seq.NewGenerator(1), 3, 64, 64, buffer.UsageHWTexture)
	q.RegisterConsumerListener(&fakeConsumer{})
	srv := NewBufferQueueProducer(q, nil)
	cli := NewBufferClientProducer(LocalTransport{Server: srv}, nil)
	return cli, q
}

func TestClientRequestFlushAcquireRelease(t *testing.T) {
	cli, q := newTestRig(t)

	if err := cli.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}
	r, err := cli.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("RequestBuffer: %v", err)
	}
	if r.Buf == nil || r.Buf.Seq() != r.Seq {
		t.Fatalf("expected a buffer for a brand-new slot, got %+v", r)
	}

	if err := cli.FlushBuffer(FlushBufferReq{
		Seq:          r.Seq,
		AcquireFence: fence.Invalid.ToWire(),
		Config:       queue.FlushConfig{Damages: []queue.Rect{{W: 10, H: 10}}},
	}); err != nil {
		t.Fatalf("FlushBuffer: %v", err)
	}

	ar, err := q.AcquireBuffer()
	if err != nil {
		t.Fatalf("AcquireBuffer: %v", err)
	}
	if ar.Seq != r.Seq {
		t.Fatalf("acquired seq = %d, want %d", ar.Seq, r.Seq)
	}
	if err := q.ReleaseBuffer(ar.Seq, fence.Invalid); err != nil {
		t.Fatalf("ReleaseBuffer: %v", err)
	}

	r2, err := cli.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("second RequestBuffer: %v", err)
	}
	if r2.Seq != r.Seq {
		t.Fatalf("expected slot reuse, got new seq %d (old %d)", r2.Seq, r.Seq)
	}
}

func TestClientStrictDisconnect(t *testing.T) {
	cli, q := newTestRig(t)
	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}

	q.DisconnectStrictly()
	if _, err := cli.RequestBuffer(cfg); err == nil {
		t.Fatal("expected CONSUMER_DISCONNECTED while strictly disconnected")
	}

	if err := cli.ConnectStrictly(); err != nil {
		t.Fatalf("ConnectStrictly: %v", err)
	}
	if _, err := cli.RequestBuffer(cfg); err != nil {
		t.Fatalf("RequestBuffer after ConnectStrictly: %v", err)
	}
}

func TestDispatchUnknownOpcode(t *testing.T) {
	_, q := newTestRig(t)
	srv := NewBufferQueueProducer(q, nil)
	if _, err := srv.Dispatch(Opcode(9999), nil); err == nil {
		t.Fatal("expected an error for an unrecognized opcode")
	}
}

func TestClientTunnelHandleRoundTrip(t *testing.T) {
	cli, _ := newTestRig(t)
	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}
	r, err := cli.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("RequestBuffer: %v", err)
	}

	want := []byte{1, 2, 3}
	if err := cli.SetTunnelHandle(r.Seq, want); err != nil {
		t.Fatalf("SetTunnelHandle: %v", err)
	}
	got, err := cli.GetTunnelHandle(r.Seq)
	if err != nil {
		t.Fatalf("GetTunnelHandle: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("GetTunnelHandle = %v, want %v", got, want)
	}
}

func TestClientUnregisterReleaseListener(t *testing.T) {
	cli, q := newTestRig(t)
	l := &countingRelease{}
	if err := cli.RegisterReleaseListener(l); err != nil {
		t.Fatalf("RegisterReleaseListener: %v", err)
	}
	if err := cli.UnregisterReleaseListener(); err != nil {
		t.Fatalf("UnregisterReleaseListener: %v", err)
	}

	cfg := buffer.Config{Width: 64, Height: 64, Usage: buffer.UsageHWTexture}
	r, err := cli.RequestBuffer(cfg)
	if err != nil {
		t.Fatalf("RequestBuffer: %v", err)
	}
	if err := cli.FlushBuffer(FlushBufferReq{Seq: r.Seq, AcquireFence: fence.Invalid.ToWire()}); err != nil {
		t.Fatalf("FlushBuffer: %v", err)
	}
	ar, err := q.AcquireBuffer()
	if err != nil {
		t.Fatalf("AcquireBuffer: %v", err)
	}
	if err := q.ReleaseBuffer(ar.Seq, fence.Invalid); err != nil {
		t.Fatalf("ReleaseBuffer: %v", err)
	}
	if l.n != 0 {
		t.Fatalf("expected no callbacks after unregister, got %d", l.n)
	}
}

type countingRelease struct{ n int }

func (c *countingRelease) OnBufferReleased() { c.n++ }

func TestQueueSizeRoundTrip(t *testing.T) {
	cli, _ := newTestRig(t)
	if err := cli.SetQueueSize(5); err != nil {
		t.Fatalf("SetQueueSize: %v", err)
	}
	n, err := cli.GetQueueSize()
	if err != nil {
		t.Fatalf("GetQueueSize: %v", err)
	}
	if n != 5 {
		t.Fatalf("GetQueueSize = %d, want 5", n)
	}
}
