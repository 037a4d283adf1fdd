// Package apperr classifies store-layer failures so the API layer can map each
// one to an HTTP status with a single switch.
package apperr

import "errors"

type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	NotFound
	Auth
	Forbidden
)

// Error carries a client-safe message and a kind. The wrapped cause, if any,
// is for server-side logging only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to an error of the given kind. Error() still returns
// only the client-safe message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf reports the kind of err. Anything that is not an *Error counts as
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
