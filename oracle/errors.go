package oracle

import (
	"errors"
	"fmt"
)

// Class is a stable failure category of an oracle call.
type Class string

const (
	// ClassDomain marks a call outside the function's real domain.
	// It is an expected outcome on the branch cut.
	ClassDomain Class = "DOMAIN"

	// ClassShape marks a result of the wrong type, e.g. a complex value
	// from a real-argument call.
	ClassShape Class = "SHAPE"

	// ClassUnsupported marks a function/argument combination the backend
	// does not provide.
	ClassUnsupported Class = "UNSUPPORTED"

	// ClassTransport marks a failure talking to the backend.
	ClassTransport Class = "TRANSPORT"

	// ClassProtocol marks a malformed reply from the backend.
	ClassProtocol Class = "PROTOCOL"
)

// Fatal reports whether a failure of this class must abort generation.
func (c Class) Fatal() bool {
	return c != ClassDomain
}

// Sentinel errors matched with errors.Is.
var (
	ErrDomain      = errors.New("oracle: argument outside the real domain")
	ErrNotReal     = errors.New("oracle: real-argument call returned a complex value")
	ErrUnsupported = errors.New("oracle: unsupported function")
)

// Error is the structured error returned by oracle implementations.
type Error struct {
	Class    Class
	Function Function
	Order    float64
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("oracle: %s: %s(nu=%g)", e.Class, e.Function, e.Order)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is maps failure classes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDomain:
		return e.Class == ClassDomain
	case ErrNotReal:
		return e.Class == ClassShape
	case ErrUnsupported:
		return e.Class == ClassUnsupported
	}
	return false
}

// NewError creates an Error without a cause.
func NewError(class Class, fn Function, nu float64, message string) *Error {
	return &Error{Class: class, Function: fn, Order: nu, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(class Class, fn Function, nu float64, message string, cause error) *Error {
	return &Error{Class: class, Function: fn, Order: nu, Message: message, Cause: cause}
}

// ClassOf returns the failure class of err, or "" when err carries none.
func ClassOf(err error) Class {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Class
	}
	switch {
	case errors.Is(err, ErrDomain):
		return ClassDomain
	case errors.Is(err, ErrNotReal):
		return ClassShape
	case errors.Is(err, ErrUnsupported):
		return ClassUnsupported
	}
	return ""
}
