// Package apperr defines the error kinds surfaced to API callers.
//
// Every failure that leaves a service carries a stable Kind. Errors without one are
// treated as internal and their message is never shown to the caller.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindInvalidToken      Kind = "invalid_token"
	KindExpiredToken      Kind = "expired_token"
	KindInvalidTransition Kind = "invalid_transition"
	KindStorage           Kind = "storage_error"
	KindPayloadTooLarge   Kind = "payload_too_large"
	KindRateLimited       Kind = "rate_limited"
	KindInternal          Kind = "internal"
)

// Error is a failure with a caller-visible kind and message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: message}, 1)
}

func Newf(kind Kind, format string, args ...any) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)}, 1)
}

// Wrap attaches a kind and caller-visible message to err. A nil err yields nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithStackDepth(&Error{Kind: kind, Message: message, cause: err}, 1)
}

func Validation(message string) error { return errors.WithStackDepth(&Error{Kind: KindValidation, Message: message}, 1) }

func NotFound(message string) error { return errors.WithStackDepth(&Error{Kind: KindNotFound, Message: message}, 1) }

func Conflict(message string) error { return errors.WithStackDepth(&Error{Kind: KindConflict, Message: message}, 1) }

func Forbidden(message string) error { return errors.WithStackDepth(&Error{Kind: KindForbidden, Message: message}, 1) }

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-visible message for err. Internal errors are masked.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
