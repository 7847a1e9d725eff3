// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials, missing token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a known identity that is not allowed to access the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrTokenInvalid indicates a session token with bad structure or signature.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is the expired flavour of ErrTokenInvalid.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrTokenInvalid)

	// ErrMalformedHash indicates a stored password hash that cannot be decoded.
	ErrMalformedHash = errors.New("malformed password hash")
)
