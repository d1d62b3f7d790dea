// Package apperr defines the application error taxonomy. Every error that
// reaches an HTTP handler is either an *Error (with a Kind that maps to a
// status code) or an unexpected error that is reported as Internal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidProduct
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidProduct:
		return "invalid_product"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status is the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest, KindInvalidProduct:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind, so sentinel comparisons like
// errors.Is(err, apperr.ErrNotFound) work regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidRequest(message string) *Error { return New(KindInvalidRequest, message) }
func Unauthorized(message string) *Error   { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error      { return New(KindForbidden, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func InvalidProduct(message string) *Error { return New(KindInvalidProduct, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }
func Internal(err error) *Error            { return Wrap(KindInternal, "Internal Server Error", err) }

// Sentinels for errors.Is checks.
var (
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInvalidProduct = &Error{Kind: KindInvalidProduct}
	ErrConflict       = &Error{Kind: KindConflict}
)

// KindOf reports the Kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public returns the status code and client-safe message for err.
// Unclassified and internal errors never leak their text.
func Public(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		msg := e.Message
		if msg == "" {
			msg = http.StatusText(e.Kind.Status())
		}
		return e.Kind.Status(), msg
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
