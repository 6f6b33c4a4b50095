// Package surferr defines the buffer-queue engine's stable error-code
// table: every operation that can fail returns one of these codes,
// optionally wrapping an underlying collaborator error (allocator,
// fence driver) for diagnostics.
package surferr

import (
	"fmt"

	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

// Code is a stable integer error code. Values are grouped by class
// the same way the source table is: 0 is success, 4xx are client
// errors, 412 covers state errors, 500 server errors, 501
// not-supported, 504 binder/transport, 600 EGL/presentation.
type Code int

const (
	OK Code = 0

	// 4xx client errors.
	InvalidArguments Code = 400
	NoPermission     Code = 403
	NoBuffer         Code = 404
	NoEntry          Code = 405
	OutOfRange       Code = 406

	// 412 state errors.
	InvalidOperating     Code = 412
	NoConsumer           Code = 413
	NotInit              Code = 414
	TypeError            Code = 415
	ConsumerDisconnected Code = 416
	BufferStateInvalid   Code = 417
	BufferQueueFull      Code = 418
	BufferIsInCache      Code = 419
	BufferNotInCache     Code = 420

	// 500 server errors.
	APIFailed Code = 500
	Internal  Code = 501
	NoMem     Code = 502
	HDIError  Code = 503

	// 501-class: optional capability absent.
	NotSupported Code = 510

	// 504: transport/binder failure.
	Binder Code = 504

	// 600: presentation/EGL-adjacent failure.
	EGL Code = 600
)

// names gives the mnemonic for each code, used by Error.Error.
var names = map[Code]string{
	OK:                   "OK",
	InvalidArguments:     "INVALID_ARGUMENTS",
	NoPermission:         "NO_PERMISSION",
	NoBuffer:             "NO_BUFFER",
	NoEntry:              "NO_ENTRY",
	OutOfRange:           "OUT_OF_RANGE",
	InvalidOperating:     "INVALID_OPERATING",
	NoConsumer:           "NO_CONSUMER",
	NotInit:              "NOT_INIT",
	TypeError:            "TYPE_ERROR",
	ConsumerDisconnected: "CONSUMER_DISCONNECTED",
	BufferStateInvalid:   "BUFFER_STATE_INVALID",
	BufferQueueFull:      "BUFFER_QUEUE_FULL",
	BufferIsInCache:      "BUFFER_IS_INCACHE",
	BufferNotInCache:     "BUFFER_NOT_INCACHE",
	APIFailed:            "API_FAILED",
	Internal:             "INTERNAL",
	NoMem:                "NO_MEM",
	HDIError:             "HDI_ERROR",
	NotSupported:         "NOT_SUPPORTED",
	Binder:               "BINDER",
	EGL:                  "EGL",
}

// String returns the mnemonic for c, or a numeric fallback if c is
// not one of the declared constants.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// Error is a Code paired with the low-order operating-system errno
// that accompanied it, and optionally a wrapped collaborator error.
// Its textual rendering includes all three: numeric class, mnemonic,
// and low-order errno description.
type Error struct {
	Code  Code
	Errno int // 0 when there is no associated OS errno.
	Op    string
	cause error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("surface: %s: %d %s", e.Op, int(e.Code), e.Code)
	if e.Errno != 0 {
		s += fmt.Sprintf(" (errno %d)", e.Errno)
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an *Error with no wrapped cause.
func New(op string, code Code) *Error {
	return &Error{Code: code, Op: op}
}

// Wrap wraps cause, an external collaborator's failure (allocator,
// fence driver, transport), into an *Error carrying code. cause is
// preserved via github.com/pkg/errors so callers can still retrieve
// the root collaborator error with errors.Cause.
func Wrap(op string, code Code, cause error) *Error {
	return &Error{Code: code, Op: op, cause: errors.Wrap(cause, op)}
}

// NoBufferErr builds the NO_BUFFER signal returned when the free
// list is empty (RequestBuffer) or the dirty list is empty/all
// entries are in the future (AcquireBuffer). The wrapped cause is
// code.hybscloud.com/iox's ErrWouldBlock sentinel, so callers that
// already know the iox.IsWouldBlock/iox.IsNonFailure convention from
// elsewhere in the ecosystem recognize it without importing surferr.
func NoBufferErr(op string) *Error {
	return Wrap(op, NoBuffer, iox.ErrWouldBlock)
}

// WithErrno attaches an OS errno to e and returns e for chaining.
func (e *Error) WithErrno(errno int) *Error {
	e.Errno = errno
	return e
}

// CodeOf extracts the Code carried by err, or OK if err is nil, or
// Internal if err does not carry a surferr.Error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Internal
}

// IsNonFailure reports whether err represents a control-flow signal
// rather than a genuine failure: nil, or one of the codes that a
// well-behaved caller is expected to retry or otherwise handle
// without logging it as an error. This mirrors the split
// code.hybscloud.com/iox draws between iox.ErrWouldBlock-style
// signals and real failures — NO_BUFFER on an empty free list and
// CONSUMER_DISCONNECTED are signals, not bugs.
func IsNonFailure(err error) bool {
	if err == nil || iox.IsWouldBlock(err) {
		return true
	}
	switch CodeOf(err) {
	case OK, NoBuffer, ConsumerDisconnected, NotSupported:
		return true
	default:
		return false
	}
}
