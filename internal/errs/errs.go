// Package errs defines the error kinds shared by the session backend,
// the cursor adapter and the collectors. Callers classify errors with
// errors.Is against the sentinels below.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing registry key, value or registration.
	// Several collectors downgrade it to an empty result.
	ErrNotFound = errors.New("not found")

	// ErrBackend reports a failure of the query/session layer
	// (bad query, access denied, unreachable target).
	ErrBackend = errors.New("backend failure")

	// ErrDecode reports a raw value that cannot be interpreted as its
	// expected shape.
	ErrDecode = errors.New("decode failure")

	// ErrMisconfigured reports a group that references a name with no
	// registration. It is an authoring mistake and is not recovered from.
	ErrMisconfigured = errors.New("misconfigured")

	// ErrUnsupported reports an operation the current platform or target
	// cannot service.
	ErrUnsupported = errors.New("unsupported")
)

// Backend wraps a raw OS or COM error so that it matches ErrBackend while
// keeping the cause in the chain.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBackend) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &backendError{op: op, err: err}
}

type backendError struct {
	op  string
	err error
}

func (e *backendError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *backendError) Unwrap() []error {
	return []error{ErrBackend, e.err}
}

// DecodeError describes a value that could not be decoded.
type DecodeError struct {
	What string
	Err  error
}

// Decode returns a DecodeError for what.
func Decode(what string, err error) error {
	return &DecodeError{What: what, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s", e.What)
	}
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

// NotFound returns an error matching ErrNotFound that names what was missing.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}
