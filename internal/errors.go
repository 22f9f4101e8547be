package planner

import "errors"

// Sentinel errors for the planner domain.
var (
	// ErrInvalidFilter marks a malformed or unsupported filter value.
	// It is raised before any store call and is never cached.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidInput marks a malformed mutation payload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable marks a store that cannot be reached or failed
	// mid-query. Results of a failed query are never cached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrIndexConflict marks an existing index whose shape differs from the
	// declared spec. It is fatal at startup.
	ErrIndexConflict = errors.New("index conflict")
)
