package common

import (
	"errors"
	"net/http"
)

// Kind classifies a client-visible failure.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
)

// ValidationError is a single field-level validation failure.
type ValidationError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error is a classified failure raised by resolvers. Transports render it
// as {message, status, data}.
type Error struct {
	Kind    Kind
	Message string
	Data    []ValidationError
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "an error occurred"
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP-equivalent status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func NewUnauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg, Err: ErrorUnauthorized}
}

func NewForbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: ErrorNotFound}
}

func NewConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: ErrorAlreadyExists}
}

func NewValidation(msg string, data []ValidationError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Data: data}
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: ErrorInternal.Error(), Err: err}
}

// StatusOf returns the status carried by a classified error anywhere in the
// chain, or 500 when err is not classified.
func StatusOf(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status()
	}
	return http.StatusInternalServerError
}
