package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeltaExpired indicates the remote store rejected the delta cursor
	// as expired or invalid. The caller must fall back to a full
	// reconciliation.
	ErrDeltaExpired = errors.New("delta cursor expired")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	// Transient; retried with backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrPermissionDenied indicates the remote store refused access to a
	// document. Permanent for that document.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSyncInProgress indicates a sync cycle is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrStateCorrupt indicates the persisted sync state cannot be read.
	// Fatal; the cycle aborts before any dispatch.
	ErrStateCorrupt = errors.New("sync state corrupt")

	// ErrIndexUnavailable indicates the search index cannot be reached.
	// Fatal at cycle start.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// ErrCycleCancelled indicates the cycle was cancelled before draining.
	ErrCycleCancelled = errors.New("cycle cancelled")
)

// TransientError marks an error as retryable. The orchestrator retries
// transient failures with backoff before dead-lettering.
type TransientError struct {
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the wrapped cause.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err should be retried. Rate limit responses
// and errors explicitly marked transient qualify; timeouts from the net
// layer do as well.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}
	return false
}
