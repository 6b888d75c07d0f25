// Package common defines the category policy and sentinel errors shared by
// the upload client and the reference metadata service. Callers should use
// errors.Is to match the sentinels.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")
	ErrorConflict  = errors.New("upload already finalized")
	ErrorExpired   = errors.New("upload credential expired")

	// Validation errors.
	ErrorIncorrectMetadata = errors.New("incorrect metadata")
	ErrorUnknownCategory   = errors.New("unknown file category")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
