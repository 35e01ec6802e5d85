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

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates no usable OAuth credential is available.
	// Raised when no credential is stored, the refresh token is missing,
	// or a refresh attempt was rejected by the provider. Never retried.
	ErrAuthRequired = errors.New("authorisation required")

	// ErrSubjectData indicates the subject is missing a required relation,
	// for example an offer without a customer.
	ErrSubjectData = errors.New("subject data incomplete")

	// ErrCredentialConflict indicates a concurrent credential update.
	// The stored credential version no longer matches the loaded one.
	ErrCredentialConflict = errors.New("credential was modified concurrently")

	// ErrQueueFull indicates the dispatcher queue cannot accept more jobs.
	ErrQueueFull = errors.New("generation queue full")
)

// ProviderError wraps a failure from the remote document provider.
// Transient errors (rate limits, server errors, network failures) are
// retried by the job layer; permanent errors abort the run immediately.
type ProviderError struct {
	// Op names the provider operation that failed, e.g. "copy template".
	Op string
	// Transient reports whether retrying the operation may succeed.
	Transient bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider: %s (%s): %v", e.Op, kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient returns true if the error is a transient provider failure.
func IsTransient(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Transient
}
