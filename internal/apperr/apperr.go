// Package apperr defines the typed domain errors raised by the ledger core.
// Services return these; the HTTP layer maps each kind to a status code and
// a safe client message. Raw database errors never cross this boundary.
package apperr

import "fmt"

// Kind classifies a domain error.
type Kind int

const (
	// KindUnknown covers unexpected internal failures (mapped to 500).
	KindUnknown Kind = iota
	// KindValidation — malformed input: negative amount, bad decimal
	// precision, missing mandatory field. Recoverable locally, never retried.
	KindValidation
	// KindNotFound — referenced register/session/user does not exist or is inactive.
	KindNotFound
	// KindConflict — invariant violation: duplicate open session, deleting a
	// register with an open session.
	KindConflict
	// KindInvalidState — operation against a session in the wrong lifecycle
	// state, e.g. adding a movement to a closed session.
	KindInvalidState
)

// Error carries a kind and a human-readable message. Message text is safe to
// show to end users; no store schema detail or stack trace goes in here.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newf(KindInvalidState, format, args...)
}

// Wrap attaches an underlying cause while keeping the safe message.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}
