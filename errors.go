package ntt

import (
	"github.com/jonathanmweiss/go-ntt/device"
)

// Error is the failure returned by every host entry point.
type Error struct {
	Code device.Code
	// Detail is empty in builds with the ntt_nodetail tag.
	Detail string

	cause error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "ntt: " + e.Code.String()
	}

	return "ntt: " + e.Code.String() + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(err error) *Error {
	return &Error{
		Code:   device.CodeOf(err),
		Detail: detail(err),
		cause:  err,
	}
}
