package seq

import "testing"

func TestGeneratorProducesUniqueInUseSequences(t *testing.T) {
	g := NewGenerator(7)
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		s := g.Next()
		if seen[s] {
			t.Fatalf("duplicate sequence %d", s)
		}
		seen[s] = true
		if !g.InUse(s) {
			t.Fatalf("sequence %d should be marked in use", s)
		}
		if uint16(s>>16) != 7 {
			t.Fatalf("sequence %d has wrong high part", s)
		}
	}
}

func TestGeneratorReleaseAllowsReuse(t *testing.T) {
	g := NewGenerator(1)
	s := g.Next()
	if !g.InUse(s) {
		t.Fatal("expected in use")
	}
	g.Release(s)
	if g.InUse(s) {
		t.Fatal("expected free after release")
	}
}

func TestQueueIDFields(t *testing.T) {
	a := NextQueueID()
	b := NextQueueID()
	if a == b {
		t.Fatal("expected distinct queue ids")
	}
	if a.Pid() != b.Pid() {
		t.Fatal("queue ids from the same process should share a pid")
	}
	if a.Counter() == b.Counter() {
		t.Fatal("expected distinct per-process counters")
	}
}
