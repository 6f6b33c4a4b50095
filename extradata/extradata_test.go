package extradata

import "testing"

func TestSetGetOrderPreserved(t *testing.T) {
	e := New()
	e.SetInt32("a", 1)
	e.SetString("b", "hi")
	e.SetInt32("a", 2) // update in place, must not move to the end

	var order []string
	e.Range(func(k string, v Value) bool {
		order = append(order, k)
		return true
	})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}

	v, err := e.Get("a")
	if err != nil || v.I32 != 2 {
		t.Fatalf("Get(a) = %+v, %v; want I32=2", v, err)
	}
}

func TestGetMissing(t *testing.T) {
	e := New()
	if _, err := e.Get("nope"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := New()
	e.SetDouble("x", 1.5)
	c := e.Clone()
	c.SetDouble("x", 9.9)
	v, _ := e.Get("x")
	if v.F64 != 1.5 {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestRangeStopsEarly(t *testing.T) {
	e := New()
	e.SetInt64("a", 1)
	e.SetInt64("b", 2)
	e.SetInt64("c", 3)
	var n int
	e.Range(func(k string, v Value) bool {
		n++
		return k != "b"
	})
	if n != 2 {
		t.Fatalf("Range should have stopped after 2 entries, got %d", n)
	}
}
