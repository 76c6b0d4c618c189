// Package common defines shared constants and sentinel errors used across
// the server layers of Pitstop. Callers should use errors.Is to match these
// values and errors.As to extract a classified *Error.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Image storage errors.
	ErrInvalidImagePath = errors.New("invalid image path")
)
