// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
)

// Common application errors.
var (
	// Database and artifact errors.
	ErrNotFound           = errors.New("not found")
	ErrPersistenceFailure = errors.New("persistence failure")

	// Classification errors.
	ErrModelNotTrained         = errors.New("model not trained")
	ErrInvalidTrainingData     = errors.New("invalid training data")
	ErrInsufficientDescription = errors.New("insufficient description")

	// Retraining errors.
	ErrNoCorrectionsAvailable = errors.New("no corrections available")
)

// IsNotFound reports whether err indicates a missing record or artifact.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrPersistenceFailure) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
