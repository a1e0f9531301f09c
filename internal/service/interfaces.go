// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/pennywise/internal/model"
)

// CorrectionStore is the single authoritative backing store for user
// corrections. Implementations must assign unique, monotonically increasing
// IDs and must never revert a correction from applied back to unused.
type CorrectionStore interface {
	// RecordCorrection persists a new correction. If the correction carries a
	// transaction reference that an unapplied correction already holds, the
	// existing record is returned instead of a duplicate.
	RecordCorrection(ctx context.Context, c model.Correction) (*model.Correction, error)

	// GetUnapplied returns corrections not yet consumed by a retraining
	// event, oldest first. limit <= 0 means no limit.
	GetUnapplied(ctx context.Context, limit int) ([]model.Correction, error)

	// MarkApplied marks the given corrections as consumed by modelVersion.
	// The update is transactional: either every correction is marked or none.
	MarkApplied(ctx context.Context, ids []int64, modelVersion int) error

	// FindMatch returns the most recent correction whose description matches
	// (trimmed, case-insensitive). When amount is non-nil and the stored
	// correction carries an amount, the amounts must agree within 0.01.
	// Returns (nil, nil) when nothing matches.
	FindMatch(ctx context.Context, description string, amount *float64) (*model.Correction, error)

	// GetRecent returns the newest corrections, newest first.
	GetRecent(ctx context.Context, limit int) ([]model.Correction, error)

	// Stats summarizes the correction backlog.
	Stats(ctx context.Context) (*model.CorrectionStats, error)

	// Migrate brings the backing schema up to date.
	Migrate(ctx context.Context) error

	Close() error
}

// RetryOptions configures retry behavior for persistence operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DetectorOptions configures a recurring-pattern detection run.
type DetectorOptions struct {
	Now            time.Time
	MinOccurrences int
	WindowDays     int
	AmountVariance float64
}

// TransactionReader parses transactions from an external file format.
type TransactionReader interface {
	Read(ctx context.Context, path string) ([]model.Transaction, error)
}
