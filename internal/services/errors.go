package services

import "errors"

// Outcome taxonomy surfaced to handlers. NoCredential and BuildFailed stay
// distinct so the UI can offer "connect" vs "retry".
var (
	ErrNoCredential   = errors.New("no usable source credential")
	ErrBuildFailed    = errors.New("daily queue build failed")
	ErrMutationFailed = errors.New("queue item mutation did not persist")
	ErrInvalidScore   = errors.New("score must be between 1 and 10")
	ErrNotFound       = errors.New("not found")
)
