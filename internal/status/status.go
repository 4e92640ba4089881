// Package status carries uniform outcome values across module boundaries.
// Results are never thrown; they flow as ordinary Go return values.
package status

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Error is a Status value that also satisfies the error interface, letting
// callers use it directly wherever idiomatic Go expects an error while still
// carrying a structured code and message.
type Error struct {
	Code    codes.Code
	Message string
}

// New constructs a status error with the given code and formatted message.
func New(code codes.Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidArgument builds an InvalidArgument status error.
func InvalidArgument(format string, args ...any) *Error { return New(codes.InvalidArgument, format, args...) }

// NotFound builds a NotFound status error.
func NotFound(format string, args ...any) *Error { return New(codes.NotFound, format, args...) }

// AlreadyExists builds an AlreadyExists status error.
func AlreadyExists(format string, args ...any) *Error { return New(codes.AlreadyExists, format, args...) }

// Internal builds an Internal status error.
func Internal(format string, args ...any) *Error { return New(codes.Internal, format, args...) }

// Unavailable builds an Unavailable status error.
func Unavailable(format string, args ...any) *Error { return New(codes.Unavailable, format, args...) }

// Unauthenticated builds an Unauthenticated status error.
func Unauthenticated(format string, args ...any) *Error { return New(codes.Unauthenticated, format, args...) }

// Code extracts the wire-level code carried by err. A nil error maps to
// codes.OK; any error that is not a *Error maps to codes.Internal, matching
// the reference implementation's policy of treating unmapped driver errors
// as internal failures.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return codes.Internal
}

// Is reports whether err carries the given code.
func Is(err error, code codes.Code) bool {
	return Code(err) == code
}
