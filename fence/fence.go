// Package fence implements SyncFence, a handle to a kernel
// sync-fence file descriptor plus an optional signal timestamp.
//
// The actual fence driver (wait/merge/query-signal-time on a real fd)
// is an external collaborator; this package defines the Driver
// interface it must satisfy and a Fence type that owns a descriptor
// obtained from it.
package fence

import (
	"time"

	"github.com/neo3gfx/graphicsurface/surferr"
)

// Status is the fence's signal state.
type Status int

const (
	Active Status = iota
	Signaled
	Err
)

// WaitResult is the outcome of a bounded Wait.
type WaitResult int

const (
	WaitOK WaitResult = iota
	WaitTimeout
	WaitError
)

// TimestampPending is returned by SignalTimestamp when the fence has
// not signaled yet.
const TimestampPending = -1

// Driver is the external kernel sync-fence collaborator: it owns the
// real file descriptors and performs the wait/merge/query-time
// syscalls. A Fence is a thin value wrapper around a descriptor
// obtained from a Driver; it keeps no reference count.
type Driver interface {
	// Wait blocks up to timeout for fd to signal.
	Wait(fd int, timeout time.Duration) (WaitResult, error)
	// Merge creates a new fence fd that signals once both a and b
	// have signaled.
	Merge(name string, a, b int) (int, error)
	// SignalTime returns the nanosecond timestamp at which fd
	// signaled, or TimestampPending if it has not yet.
	SignalTime(fd int) (int64, error)
	// Dup returns a new descriptor referring to the same signal as fd.
	Dup(fd int) (int, error)
	// Status reports fd's current state without blocking.
	Status(fd int) (Status, error)
	// Close releases fd.
	Close(fd int) error
}

// Invalid is the distinguished fence with no backing descriptor. It
// compares equal to itself and to any other Fence with fd == -1.
var Invalid = Fence{fd: -1}

// Fence is a file-descriptor handle to a future GPU/display signal.
// The fd is owned by the Fence: it must be closed exactly once, via
// Close.
type Fence struct {
	drv  Driver
	fd   int
	name string
}

// New wraps fd, obtained from drv, in a Fence. fd == -1 yields a
// fence equal to Invalid regardless of drv.
func New(drv Driver, fd int, name string) Fence {
	if fd < 0 {
		return Invalid
	}
	return Fence{drv: drv, fd: fd, name: name}
}

// Valid reports whether f has a backing descriptor.
func (f Fence) Valid() bool { return f.fd >= 0 }

// FD returns the underlying descriptor, or -1 if f is invalid.
func (f Fence) FD() int { return f.fd }

// Wait blocks up to timeout for f to signal. An invalid fence always
// returns WaitOK immediately, matching the convention that "no
// fence" means "already ready".
func (f Fence) Wait(timeout time.Duration) (WaitResult, error) {
	if !f.Valid() {
		return WaitOK, nil
	}
	return f.drv.Wait(f.fd, timeout)
}

// Merge returns a new Fence covering both f and g. If either is
// invalid, the other is duplicated and returned unchanged (merging
// with "no fence" is the identity operation).
func Merge(name string, f, g Fence) (Fence, error) {
	switch {
	case !f.Valid() && !g.Valid():
		return Invalid, nil
	case !f.Valid():
		return g.dup(name)
	case !g.Valid():
		return f.dup(name)
	}
	if f.drv != g.drv {
		return Invalid, surferr.New("Merge", surferr.InvalidArguments)
	}
	nfd, err := f.drv.Merge(name, f.fd, g.fd)
	if err != nil {
		return Invalid, surferr.Wrap("Merge", surferr.HDIError, err)
	}
	return Fence{drv: f.drv, fd: nfd, name: name}, nil
}

func (f Fence) dup(name string) (Fence, error) {
	nfd, err := f.drv.Dup(f.fd)
	if err != nil {
		return Invalid, surferr.Wrap("Dup", surferr.HDIError, err)
	}
	return Fence{drv: f.drv, fd: nfd, name: name}, nil
}

// Dup returns an independent Fence referring to the same signal.
func (f Fence) Dup() (Fence, error) {
	if !f.Valid() {
		return Invalid, nil
	}
	return f.dup(f.name)
}

// SignalTimestamp returns the nanosecond time at which f signaled,
// or TimestampPending if it has not signaled, or 0 for an invalid
// fence (already "signaled" in the past, conventionally at time 0).
func (f Fence) SignalTimestamp() (int64, error) {
	if !f.Valid() {
		return 0, nil
	}
	ts, err := f.drv.SignalTime(f.fd)
	if err != nil {
		return 0, surferr.Wrap("SignalTimestamp", surferr.HDIError, err)
	}
	return ts, nil
}

// Status reports f's current state. An invalid fence is always
// Signaled.
func (f Fence) Status() (Status, error) {
	if !f.Valid() {
		return Signaled, nil
	}
	st, err := f.drv.Status(f.fd)
	if err != nil {
		return Err, surferr.Wrap("Status", surferr.HDIError, err)
	}
	return st, nil
}

// Close releases f's descriptor. Closing an invalid fence is a no-op.
func (f Fence) Close() error {
	if !f.Valid() {
		return nil
	}
	return f.drv.Close(f.fd)
}

// Equal reports whether f and g refer to the same descriptor, or are
// both invalid.
func (f Fence) Equal(g Fence) bool {
	if !f.Valid() && !g.Valid() {
		return true
	}
	return f.drv == g.drv && f.fd == g.fd
}
