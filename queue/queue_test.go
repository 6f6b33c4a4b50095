package queue

import (
	"testing"
	"time"

	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/seq"
	"github.com/neo3gfx/graphicsurface/surferr"
)

type fakeAllocator struct {
	nextFD int
	allocs int
	freed  int
}

func (a *fakeAllocator) Alloc(cfg buffer.Config, previous *buffer.Handle) (buffer.Handle, error) {
	a.allocs++
	a.nextFD++
	return buffer.Handle{
		FD: a.nextFD, Size: uint64(cfg.Width * cfg.Height * 4),
		Stride: cfg.Width * 4, Width: cfg.Width, Height: cfg.Height,
		Format: cfg.Format, Usage: cfg.Usage,
	}, nil
}

func (a *fakeAllocator) Free(h buffer.Handle) error { a.freed++; return nil }
func (a *fakeAllocator) Map(h *buffer.Handle) error { h.VirtAddr = 0x1000; return nil }
func (a *fakeAllocator) Unmap(h *buffer.Handle) error {
	h.VirtAddr = 0
	return nil
}
func (a *fakeAllocator) FlushCache(h buffer.Handle) error      { return nil }
func (a *fakeAllocator) InvalidateCache(h buffer.Handle) error { return nil }

type countingConsumer struct{ n int }

func (c *countingConsumer) OnBufferAvailable() { c.n++ }

type countingDelete struct{ seqs []uint32 }

func (c *countingDelete) OnBufferDelete(s uint32) { c.seqs = append(c.seqs, s) }

type countingRelease struct {
	seqs []uint32
	fncs []fence.Fence
}

func (c *countingRelease) OnBufferReleasedWithFence(s uint32, f fence.Fence) {
	c.seqs = append(c.seqs, s)
	c.fncs = append(c.fncs, f)
}

func newTestQueue() (*BufferQueue, *fakeAllocator) {
	alc := &fakeAllocator{}
	gen := seq.NewGenerator(1)
	q := New("test", alc, gen, 3, 100, 100, buffer.UsageHWTexture)
	q.RegisterConsumerListener(&countingConsumer{})
	return q, alc
}

func baseCfg() buffer.Config {
	return buffer.Config{Width: 100, Height: 100, Format: 1, Usage: buffer.UsageHWTexture}
}

func TestRequestBufferAllocatesUntilQueueSize(t *testing.T) {
	q, alc := newTestQueue()
	var seqs []uint32
	for i := 0; i < 3; i++ {
		r, err := q.RequestBuffer(baseCfg())
		if err != nil {
			t.Fatal(err)
		}
		seqs = append(seqs, r.Seq)
	}
	if alc.allocs != 3 {
		t.Fatalf("allocs = %d, want 3", alc.allocs)
	}

	// A fourth request with no free slot and no consumer feed must
	// fail with NO_BUFFER at once given an immediate (zero) timeout.
	cfg := baseCfg()
	cfg.Timeout = 0
	if _, err := q.RequestBuffer(cfg); err == nil {
		t.Fatal("expected NO_BUFFER with nothing free and queue full")
	}

	for _, s := range seqs {
		if err := q.CancelBuffer(s); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRequestFlushAcquireReleaseRoundTrip(t *testing.T) {
	q, _ := newTestQueue()
	r, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.FlushBuffer(r.Seq, nil, fence.Invalid, FlushConfig{}); err != nil {
		t.Fatal(err)
	}
	ar, err := q.AcquireBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if ar.Seq != r.Seq {
		t.Fatalf("acquired seq = %d, want %d", ar.Seq, r.Seq)
	}
	if err := q.ReleaseBuffer(ar.Seq, fence.Invalid); err != nil {
		t.Fatal(err)
	}

	// The slot should now be reusable without a new allocation.
	r2, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if r2.Seq != r.Seq {
		t.Fatalf("expected slot reuse, got new seq %d vs %d", r2.Seq, r.Seq)
	}
}

func TestRequestBufferBlocksThenWakesOnRelease(t *testing.T) {
	q, _ := newTestQueue()
	var seqs []uint32
	for i := 0; i < 3; i++ {
		r, err := q.RequestBuffer(baseCfg())
		if err != nil {
			t.Fatal(err)
		}
		seqs = append(seqs, r.Seq)
		if err := q.FlushBuffer(r.Seq, nil, fence.Invalid, FlushConfig{}); err != nil {
			t.Fatal(err)
		}
		if _, err := q.AcquireBuffer(); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan struct{})
	go func() {
		cfg := baseCfg()
		cfg.Timeout = -1
		if _, err := q.RequestBuffer(cfg); err != nil {
			t.Error(err)
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.ReleaseBuffer(seqs[0], fence.Invalid); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestBuffer did not wake after ReleaseBuffer")
	}
}

func TestAcquireBufferWithPresentTimestampDropsOldFrames(t *testing.T) {
	q, _ := newTestQueue()
	rl := &countingRelease{}
	q.RegisterReleaseListenerWithFence(rl)

	r1, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.FlushBuffer(r1.Seq, nil, fence.Invalid, FlushConfig{DesiredPresentTs: 1}); err != nil {
		t.Fatal(err)
	}
	r2, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.FlushBuffer(r2.Seq, nil, fence.Invalid, FlushConfig{DesiredPresentTs: int64(5 * time.Second)}); err != nil {
		t.Fatal(err)
	}

	ar, err := q.AcquireBufferWithPresentTimestamp(int64(5 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if ar.Seq != r2.Seq {
		t.Fatalf("acquired seq = %d, want %d (the fresher frame)", ar.Seq, r2.Seq)
	}
	if len(rl.seqs) != 1 || rl.seqs[0] != r1.Seq {
		t.Fatalf("expected stale frame %d released, got %v", r1.Seq, rl.seqs)
	}
}

func TestAcquireBufferWithPresentTimestampLeavesFutureFrameQueued(t *testing.T) {
	q, _ := newTestQueue()
	rl := &countingRelease{}
	q.RegisterReleaseListenerWithFence(rl)

	r1, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	future := int64(10 * time.Second)
	if err := q.FlushBuffer(r1.Seq, nil, fence.Invalid, FlushConfig{DesiredPresentTs: future}); err != nil {
		t.Fatal(err)
	}

	_, err = q.AcquireBufferWithPresentTimestamp(int64(time.Second))
	if surferr.CodeOf(err) != surferr.NoBuffer {
		t.Fatalf("AcquireBuffer with future-only dirty list = %v, want NO_BUFFER", err)
	}
	if len(rl.seqs) != 0 {
		t.Fatalf("expected no release callback for a not-yet-due frame, got %v", rl.seqs)
	}

	ar, err := q.AcquireBufferWithPresentTimestamp(future)
	if err != nil {
		t.Fatal(err)
	}
	if ar.Seq != r1.Seq {
		t.Fatalf("acquired seq = %d, want %d once due", ar.Seq, r1.Seq)
	}
}

func TestSetQueueSizeShrinkDeletesFreeSlotsFirst(t *testing.T) {
	q, _ := newTestQueue()
	del := &countingDelete{}
	q.RegisterDeleteListener(del, nil)

	var seqs []uint32
	for i := 0; i < 3; i++ {
		r, err := q.RequestBuffer(baseCfg())
		if err != nil {
			t.Fatal(err)
		}
		seqs = append(seqs, r.Seq)
	}
	for _, s := range seqs {
		if err := q.CancelBuffer(s); err != nil {
			t.Fatal(err)
		}
	}

	if err := q.SetQueueSize(1); err != nil {
		t.Fatal(err)
	}
	if len(del.seqs) != 2 {
		t.Fatalf("expected 2 slots deleted on shrink, got %d: %v", len(del.seqs), del.seqs)
	}
}

func TestAttachDetachBuffer(t *testing.T) {
	q, alc := newTestQueue()
	sb, err := buffer.Alloc(alc, 999, baseCfg(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.AttachBuffer(sb, 0); err != nil {
		t.Fatal(err)
	}
	if err := q.DetachBuffer(sb.Seq(), ProducerInvoker); err != nil {
		t.Fatal(err)
	}
	if err := q.DetachBuffer(sb.Seq(), ProducerInvoker); err == nil {
		t.Fatal("expected second detach of a deleted slot to fail")
	}
}

func TestCleanCacheFiresDeleteAndClearsCache(t *testing.T) {
	q, _ := newTestQueue()
	del := &countingDelete{}
	q.RegisterDeleteListener(del, nil)

	r, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.FlushBuffer(r.Seq, nil, fence.Invalid, FlushConfig{}); err != nil {
		t.Fatal(err)
	}

	if err := q.CleanCache(false); err != nil {
		t.Fatal(err)
	}
	if len(del.seqs) != 1 || del.seqs[0] != r.Seq {
		t.Fatalf("expected delete callback for %d, got %v", r.Seq, del.seqs)
	}

	r2, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	if r2.Seq == r.Seq {
		t.Fatal("expected a fresh sequence after CleanCache released the old one")
	}
}

func TestGetLastFlushedBufferRejectsProtected(t *testing.T) {
	q, _ := newTestQueue()
	cfg := baseCfg()
	cfg.Usage |= buffer.UsageProtected
	r, err := q.RequestBuffer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.FlushBuffer(r.Seq, nil, fence.Invalid, FlushConfig{}); err != nil {
		t.Fatal(err)
	}
	if _, err := q.GetLastFlushedBuffer(); err == nil {
		t.Fatal("expected NO_PERMISSION for a protected last-flushed buffer")
	}
}

func TestOnConsumerDiedInvalidatesQueue(t *testing.T) {
	q, _ := newTestQueue()
	if _, err := q.RequestBuffer(baseCfg()); err != nil {
		t.Fatal(err)
	}
	q.OnConsumerDied()
	if _, err := q.RequestBuffer(baseCfg()); err == nil {
		t.Fatal("expected NO_CONSUMER after OnConsumerDied")
	}
}

func TestGetPresentTimestampDesiredVsActual(t *testing.T) {
	q, _ := newTestQueue()
	r, err := q.RequestBuffer(baseCfg())
	if err != nil {
		t.Fatal(err)
	}
	cfg := FlushConfig{DesiredPresentTs: 12345}
	if err := q.FlushBuffer(r.Seq, nil, fence.Invalid, cfg); err != nil {
		t.Fatal(err)
	}

	desired, err := q.GetPresentTimestamp(r.Seq, PresentTimestampDesired)
	if err != nil {
		t.Fatal(err)
	}
	if desired != 12345 {
		t.Fatalf("desired timestamp = %d, want 12345", desired)
	}

	actual, err := q.GetPresentTimestamp(r.Seq, PresentTimestampActual)
	if err != nil {
		t.Fatal(err)
	}
	if actual == 0 {
		t.Fatal("expected a nonzero actual flush timestamp")
	}
	if actual == desired {
		t.Fatal("actual flush time should come from flushTimestamp, not DesiredPresentTs")
	}
}

func TestRequestBufferTagsAccessTypeForDualUsage(t *testing.T) {
	q, _ := newTestQueue()
	cfg := baseCfg()
	cfg.Usage = buffer.UsageHWTexture | buffer.UsageCPURead

	r, err := q.RequestBuffer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := q.Buffer(r.Seq)
	if err != nil {
		t.Fatal(err)
	}
	b, err := buf.GetMetadata(metadata.KeyAccessType)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || metadata.AccessType(b[0]) != metadata.AccessCPU {
		t.Fatalf("expected AccessCPU tag for a CPU-accessible queue, got %v", b)
	}

	q.SetCPUAccessible(false)
	cfg2 := baseCfg()
	cfg2.Usage = buffer.UsageHWRender | buffer.UsageCPUWrite
	r2, err := q.RequestBuffer(cfg2)
	if err != nil {
		t.Fatal(err)
	}
	buf2, err := q.Buffer(r2.Seq)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := buf2.GetMetadata(metadata.KeyAccessType)
	if err != nil {
		t.Fatal(err)
	}
	if len(b2) != 1 || metadata.AccessType(b2[0]) != metadata.AccessHWOnly {
		t.Fatalf("expected AccessHWOnly tag once SetCPUAccessible(false), got %v", b2)
	}
}

func TestRequestBufferSkipsAccessTypeTagForSingleSidedUsage(t *testing.T) {
	q, _ := newTestQueue()
	r, err := q.RequestBuffer(baseCfg()) // UsageHWTexture only, no CPU access bits
	if err != nil {
		t.Fatal(err)
	}
	buf, err := q.Buffer(r.Seq)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := buf.GetMetadata(metadata.KeyAccessType); err == nil {
		t.Fatal("expected no access-type tag for hardware-only usage")
	}
}
