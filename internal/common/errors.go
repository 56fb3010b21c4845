// Package common defines shared constants and sentinel errors used across
// the server and the CLI client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Input errors, reported to the caller as 400.
	ErrValidation = errors.New("validation error")

	// Lookup errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Storage errors.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrVersionConflict  = errors.New("version conflict")
	ErrCorruptDocument  = errors.New("corrupt document")

	// Auth errors (missing, invalid or expired bearer token).
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
