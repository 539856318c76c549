package domain

import "errors"

// Sentinel errors used to discriminate failure classes across layers.
// Services wrap these with %w so transport can map them to HTTP statuses
// without inspecting infrastructure error types.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)
