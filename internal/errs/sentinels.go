// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist (or is not owned by the caller).
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a required input field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTable indicates an unknown logical table partition was requested.
	ErrInvalidTable = errors.New("invalid table")

	// ErrMalformedRow indicates a stored row fails structural checks (coordinates out of range).
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidShipLayout indicates stored ship cells are not contiguous and co-linear.
	ErrInvalidShipLayout = errors.New("invalid ship layout")

	// ErrStorageUnavailable indicates a transient storage fault (connection loss, timeout).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
