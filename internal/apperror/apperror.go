package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of the transport that reports it.
type Kind string

const (
	KindInvalidArgument  Kind = "INVALID_ARGUMENT"
	KindInvalidState     Kind = "INVALID_STATE"
	KindConflict         Kind = "CONFLICT"
	KindNotFound         Kind = "NOT_FOUND"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindInternal         Kind = "INTERNAL"
)

// Error is an application error carrying a kind, a message that is safe to show
// to the caller, and optionally the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }

func InvalidState(message string) *Error { return New(KindInvalidState, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

func PermissionDenied(message string) *Error { return New(KindPermissionDenied, message) }

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error, message string) *Error { return Wrap(KindInternal, err, message) }

// KindOf reports the kind of the first *Error in err's chain.
// Errors that are not application errors are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the message to expose to clients. Internal errors never
// leak their cause.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
