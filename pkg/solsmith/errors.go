package solsmith

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/xerrors"
)

// InternalError is an implementation error of the generator itself, e.g. a
// malformed generator graph or a query against an empty program state.
//
// InternalErrors are raised with panic and must never be recovered and
// retried by the library.
type InternalError interface {
	error
	IsInternalError()
}

// UnreachableError marks a code path that a well-formed generator graph
// never takes.
type UnreachableError struct {
	Stack []byte
}

var _ InternalError = &UnreachableError{}

func NewUnreachableError() *UnreachableError {
	return &UnreachableError{Stack: debug.Stack()}
}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("unreachable\n%s", e.Stack)
}

func (e UnreachableError) IsInternalError() {}

// InvariantViolationError is the default InternalError: a broken ordering or
// wiring assumption between generators.
type InvariantViolationError struct {
	Err error
}

var _ InternalError = InvariantViolationError{}

func NewInvariantViolationError(message string, arg ...any) InvariantViolationError {
	return InvariantViolationError{
		Err: fmt.Errorf(message, arg...),
	}
}

func (e InvariantViolationError) Unwrap() error {
	return e.Err
}

func (e InvariantViolationError) Error() string {
	return "invariant violation: " + e.Err.Error()
}

func (e InvariantViolationError) IsInternalError() {}

// IsInternalError reports whether err has an InternalError in its chain.
func IsInternalError(err error) bool {
	switch err := err.(type) {
	case InternalError:
		return true
	case xerrors.Wrapper:
		return IsInternalError(err.Unwrap())
	default:
		return false
	}
}

func assertf(cond bool, message string, arg ...any) {
	if !cond {
		panic(NewInvariantViolationError(message, arg...))
	}
}
