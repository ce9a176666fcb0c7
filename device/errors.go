package device

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a device runtime failure.
type Code int

const (
	Success Code = iota
	ErrorInvalidValue
	ErrorMemoryAllocation
	ErrorLaunchFailure
	ErrorCooperativeLaunchTooLarge
	ErrorStreamClosed
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case ErrorInvalidValue:
		return "invalid value"
	case ErrorMemoryAllocation:
		return "memory allocation"
	case ErrorLaunchFailure:
		return "launch failure"
	case ErrorCooperativeLaunchTooLarge:
		return "cooperative launch too large"
	case ErrorStreamClosed:
		return "stream closed"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error is a failure reported by a device operation.
type Error struct {
	Code Code
	// Op names the operation that failed, e.g. the kernel name.
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, op string, format string, args ...interface{}) error {
	return &Error{Code: code, Op: op, Err: errors.Errorf(format, args...)}
}

// CodeOf extracts the Code carried by err. A nil error is Success and an
// error not raised by this package is ErrorLaunchFailure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}

	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}

	return ErrorLaunchFailure
}
