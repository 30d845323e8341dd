package websocket

import "fmt"

// ErrorKind classifies why an operation failed. The set is closed: every
// failure the engine can produce maps to exactly one of these.
type ErrorKind int

const (
	// ErrOK is never actually carried by an *Error value; it exists so
	// ErrorKind's zero value has a name.
	ErrOK ErrorKind = iota
	ErrInvalidArgs
	ErrMemory
	ErrNetwork
	ErrHandshake
	ErrProtocol
	ErrTimeout
	ErrClosed
	ErrBufferFull
	ErrNotReady
)

var errorKindStrings = [...]string{
	ErrOK:          "OK",
	ErrInvalidArgs: "invalid arguments",
	ErrMemory:      "out of memory",
	ErrNetwork:     "network error",
	ErrHandshake:   "handshake failed",
	ErrProtocol:    "protocol error",
	ErrTimeout:     "timeout",
	ErrClosed:      "connection closed",
	ErrBufferFull:  "buffer full",
	ErrNotReady:    "not ready",
}

// String returns the stable human-readable description of k (lowercase for
// every kind except ErrOK, which is "OK").
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindStrings) {
		return "unknown error"
	}
	return errorKindStrings[k]
}

// Error is the error type returned by every operation in this package. It
// carries a closed-enumeration Kind alongside a free-form message so callers
// can branch on Kind without string-matching.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("websocket: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("websocket: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target shares the same ErrorKind, so callers can write
// errors.Is(err, websocket.ErrTimeout) style checks against the package-level
// sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapErr(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Package-level sentinels for errors.Is comparisons against a bare kind,
// mirroring the kind of every returned *Error but carrying no message.
var (
	ErrSentinelInvalidArgs = &Error{Kind: ErrInvalidArgs}
	ErrSentinelNetwork     = &Error{Kind: ErrNetwork}
	ErrSentinelHandshake   = &Error{Kind: ErrHandshake}
	ErrSentinelProtocol    = &Error{Kind: ErrProtocol}
	ErrSentinelTimeout     = &Error{Kind: ErrTimeout}
	ErrSentinelClosed      = &Error{Kind: ErrClosed}
	ErrSentinelBufferFull  = &Error{Kind: ErrBufferFull}
	ErrSentinelNotReady    = &Error{Kind: ErrNotReady}
)
