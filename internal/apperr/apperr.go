package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can map it
// to a status code in a single place.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUnavailable
	KindInsufficientStock
)

// Error is a business-rule failure raised at the point of detection.
// Detail is the human-readable message returned to the caller.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.cause)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error for logging without changing
// the caller-visible detail message.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Detail: e.Detail, cause: err}
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func InvalidRequest(detail string) *Error {
	return New(KindInvalidRequest, detail)
}

func Unauthorized(detail string) *Error {
	return New(KindUnauthorized, detail)
}

func NotFound(detail string) *Error {
	return New(KindNotFound, detail)
}

func Conflict(detail string) *Error {
	return New(KindConflict, detail)
}

func Unavailable(detail string) *Error {
	return New(KindUnavailable, detail)
}

func InsufficientStock(detail string) *Error {
	return New(KindInsufficientStock, detail)
}

// KindOf returns the Kind of err if an *Error is anywhere in its
// chain, otherwise KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Detail returns the caller-visible message of err, or a generic one
// for unclassified errors.
func Detail(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return "internal server error"
}
