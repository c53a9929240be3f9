package domain

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

// CodeOf returns the code of the outermost domain error in the chain, or nil.
func CodeOf(err error) error {
	var derr *Error
	if !errors.As(err, &derr) {
		return nil
	}
	return derr.Code()
}

// Is reports whether any domain error in the chain of err carries code.
func Is(err error, code error) bool {
	for err != nil {
		var derr *Error
		if !errors.As(err, &derr) {
			return false
		}
		if derr.code == code {
			return true
		}
		err = derr.orig
	}
	return false
}

var (
	// ErrInvalidArgument is returned for malformed input: positions outside a valid range,
	// non-monotonic breakpoints, negative lengths, unknown track references
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned when a lookup falls past the bounds of a container
	ErrOutOfRange = errors.New("out of range")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrRuntime is returned when an operation needs content that is not there (empty sequence, curve or path)
	ErrRuntime = errors.New("runtime error")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your Item already exist")
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
)

var MessageInternalServerError string = "internal server error"
