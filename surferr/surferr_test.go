package surferr

import (
	"strings"
	"testing"

	stderrors "errors"
)

func TestErrorString(t *testing.T) {
	e := New("RequestBuffer", InvalidArguments).WithErrno(22)
	s := e.Error()
	if !strings.Contains(s, "400") || !strings.Contains(s, "INVALID_ARGUMENTS") || !strings.Contains(s, "22") {
		t.Fatalf("unexpected error string: %q", s)
	}
}

func TestWrapUnwrap(t *testing.T) {
	root := stderrors.New("allocator out of memory")
	e := Wrap("AllocBuffer", HDIError, root)
	if !strings.Contains(e.Error(), root.Error()) {
		t.Fatalf("wrapped cause missing from %q", e.Error())
	}
	if stderrors.Unwrap(e) == nil {
		t.Fatal("expected non-nil Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != OK {
		t.Fatal("CodeOf(nil) should be OK")
	}
	e := New("FlushBuffer", NoEntry)
	if CodeOf(e) != NoEntry {
		t.Fatalf("got %v, want NoEntry", CodeOf(e))
	}
	if CodeOf(stderrors.New("plain")) != Internal {
		t.Fatal("plain errors should classify as Internal")
	}
}

func TestIsNonFailure(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{NoBufferErr("AcquireBuffer"), true},
		{New("RequestBuffer", ConsumerDisconnected), true},
		{New("RequestBuffer", InvalidArguments), false},
		{New("SetMetadata", NotSupported), true},
	}
	for _, c := range cases {
		if got := IsNonFailure(c.err); got != c.want {
			t.Errorf("IsNonFailure(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
