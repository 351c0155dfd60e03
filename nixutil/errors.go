package nixutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/nixgo/internal/native"
)

// ErrCode is a nix_err value.
type ErrCode = native.ErrCode

// Native error codes.
const (
	OK          = native.OK
	ErrUnknown  = native.ErrUnknown
	ErrOverflow = native.ErrOverflow
	ErrKey      = native.ErrKey
	ErrNixError = native.ErrNixError
)

// ErrorKind categorizes recoverable errors.
type ErrorKind string

const (
	// KindInitialization is a cached library bootstrap failure.
	KindInitialization ErrorKind = "INITIALIZATION"

	// KindNativeCall is a message recovered from a context after a
	// non-success code.
	KindNativeCall ErrorKind = "NATIVE_CALL"

	// KindTextDecoding means bytes from the native side were not UTF-8.
	KindTextDecoding ErrorKind = "TEXT_DECODING"

	// KindInvalidArgument means an argument cannot cross the C boundary,
	// such as a string with an interior NUL.
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
)

// Error is a recoverable failure at the native boundary.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Code is the native code. Only set for KindNativeCall.
	Code ErrCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindNativeCall {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKeyError returns true if err is a native call that failed with ErrKey.
// Uses errors.As to handle wrapped errors.
func IsKeyError(err error) bool {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind == KindNativeCall && ne.Code == ErrKey
	}
	return false
}

// IsInitializationError returns true if err comes from a failed bootstrap.
func IsInitializationError(err error) bool {
	return hasKind(err, KindInitialization)
}

// IsTextDecodingError returns true if err is a UTF-8 decoding failure.
func IsTextDecodingError(err error) bool {
	return hasKind(err, KindTextDecoding)
}

func hasKind(err error, kind ErrorKind) bool {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind == kind
	}
	return false
}

// CheckCString rejects strings that would be truncated when passed to C as
// NUL-terminated text. what names the argument in the error message.
func CheckCString(what, s string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return &Error{
			Kind:    KindInvalidArgument,
			Message: fmt.Sprintf("%s contains a NUL byte at offset %d", what, i),
		}
	}
	return nil
}
