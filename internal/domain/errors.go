package domain

import "errors"

// Authentication errors, surfaced as HTTP 401.
var (
	ErrMissingInitData = errors.New("no authentication data provided")
	ErrMissingHash     = errors.New("init data has no hash")
	ErrBadSignature    = errors.New("init data signature mismatch")
	ErrNoUser          = errors.New("init data carries no user id")
)

// Validation errors, surfaced as HTTP 400.
var (
	ErrInvalidPayload = errors.New("invalid update payload")
	ErrBlobTooLarge   = errors.New("user_data is too large")
)

// ErrUserNotFound is returned for operations on unknown users (HTTP 404).
var ErrUserNotFound = errors.New("user not found")

// IsAuthError reports whether err belongs to the authentication class.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingInitData) ||
		errors.Is(err, ErrMissingHash) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrNoUser)
}
