// Package common defines shared constants and sentinel errors used across
// the client and server layers of GophTasks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Authentication errors.
	ErrorUnauthorized     = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveAccount    = errors.New("inactive user")

	// Auth errors (invalid, malformed, expired or revoked token). The codec
	// never tells the caller which check failed.
	ErrInvalidToken = errors.New("invalid token")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")
)
