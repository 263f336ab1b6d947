// Package apperrors defines the error taxonomy shared by stores, the model
// gateway client and the HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindUnauthorized    Kind = "unauthorized"
	KindConflict        Kind = "conflict"
	KindRateLimited     Kind = "rate_limited"
	KindQuotaExceeded   Kind = "quota_exceeded"
	KindUpstream        Kind = "upstream"
	KindConfiguration   Kind = "configuration"
	KindCreationFailure Kind = "creation_failure"
	KindPersistence     Kind = "persistence"
	KindUnavailable     Kind = "unavailable"
)

// Error carries a Kind and a caller-safe Message. Err holds the underlying
// cause and is never shown to HTTP clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Persistence(err error, message string) *Error {
	return Wrap(KindPersistence, err, message)
}

// KindOf returns the Kind of the first *Error in err's chain, or an empty
// Kind when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded:
		return http.StatusPaymentRequired
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text placed in the {"error": ...} response body.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}
