package services

import "errors"

// Error kinds surfaced by the lifecycle engine and stores. Each one is a
// recoverable, request-scoped outcome; controllers translate them to HTTP
// status codes.
var (
	ErrNotFound         = errors.New("match not found")
	ErrInvalidState     = errors.New("operation not allowed in current match state")
	ErrForbidden        = errors.New("caller lacks required role or membership")
	ErrInvalidPin       = errors.New("invalid PIN")
	ErrInvalidTeam      = errors.New("invalid team")
	ErrAlreadyJoined    = errors.New("user already joined this match")
	ErrValidation       = errors.New("missing or malformed required fields")
	ErrStoreUnavailable = errors.New("store unavailable")
)
