// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates malformed or empty required input.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists indicates a uniqueness violation (username, email or title taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a failed credential check.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrGateway indicates an upstream geocoding failure.
	ErrGateway = errors.New("gateway failure")

	// ErrPersistence indicates an unexpected storage failure.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidInput indicates a ranking call with missing or unresolvable inputs.
	ErrInvalidInput = errors.New("missing or invalid parameters")
)
