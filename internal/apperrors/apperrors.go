package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnavailable
)

// GenericMessage is the only text an internal error ever exposes to a client.
const GenericMessage = "Something went wrong. Please try again later."

// Error is a classified application error. Message is safe to show to the
// caller; Cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error {
	return newError(KindValidation, message)
}

func Unauthenticated(message string) *Error {
	return newError(KindAuthentication, message)
}

func Forbidden(message string) *Error {
	return newError(KindAuthorization, message)
}

func NotFound(resource string) *Error {
	return newError(KindNotFound, fmt.Sprintf("%s not found", resource))
}

func Conflict(message string) *Error {
	return newError(KindConflict, message)
}

func RateLimited(message string) *Error {
	return newError(KindRateLimited, message)
}

func Unavailable(message string) *Error {
	return newError(KindUnavailable, message)
}

// Internal wraps an unexpected failure. The cause never reaches the client.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: GenericMessage, Cause: cause}
}

// As extracts a classified error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable error code sent alongside the message.
func Code(err error) string {
	switch KindOf(err) {
	case KindValidation:
		return "validation_error"
	case KindAuthentication:
		return "authentication_error"
	case KindAuthorization:
		return "authorization_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// Public returns the message that may be shown to the caller.
func Public(err error) string {
	appErr, ok := As(err)
	if !ok || appErr.Kind == KindInternal {
		return GenericMessage
	}
	return appErr.Message
}
