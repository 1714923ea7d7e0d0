package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound indicates a session id is not registered.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFilesystemUnavailable indicates the runtime has no filesystem
	// access, so file_path uploads are disabled.
	ErrFilesystemUnavailable = errors.New("filesystem unavailable")
)

// UpstreamError wraps a failure from an external collaborator (document
// store, model provider). It is caught at the tool dispatch boundary and
// returned as an in-band tool error, never as a transport failure.
type UpstreamError struct {
	// Collaborator names the failing service ("store", "openai").
	Collaborator string

	// Err is the underlying failure.
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
