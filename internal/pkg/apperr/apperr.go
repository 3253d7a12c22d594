// Package apperr defines the error kinds shared by every backend of the record layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidReference
	KindConstraintViolation
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidReference:
		return "invalid_reference"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidReference    = &Error{Kind: KindInvalidReference}
	ErrConstraintViolation = &Error{Kind: KindConstraintViolation}
	ErrStorageUnavailable  = &Error{Kind: KindStorageUnavailable}
	ErrInternal            = &Error{Kind: KindInternal}
)

// Error carries a kind, a caller-safe message and the underlying cause.
// Only Msg may be shown to callers; Err is for server-side logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidReference(format string, args ...any) error {
	return &Error{Kind: KindInvalidReference, Msg: fmt.Sprintf(format, args...)}
}

func ConstraintViolation(format string, args ...any) error {
	return &Error{Kind: KindConstraintViolation, Msg: fmt.Sprintf(format, args...)}
}

func Unavailable(err error) error {
	return &Error{Kind: KindStorageUnavailable, Msg: "storage unavailable", Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-safe message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}
