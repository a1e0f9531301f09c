package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pennywise/internal/classify"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
)

// RetrainResult summarizes a retraining run.
type RetrainResult struct {
	Message            string  `json:"message"`
	CorrectionsApplied int     `json:"corrections_applied"`
	NewVersion         int     `json:"new_version"`
	Accuracy           float64 `json:"accuracy"`
	Success            bool    `json:"success"`
}

// Trainer orchestrates training cycles. Retraining always refits the model
// from scratch on seed data plus every accumulated correction; corrections are
// only marked as applied once the new model version is durable.
type Trainer struct {
	classifier  *classify.Classifier
	corrections service.CorrectionStore
	history     *HistoryStore
	logger      *slog.Logger
	seed        func() []model.TrainingExample
}

// TrainerOption customizes a Trainer.
type TrainerOption func(*Trainer)

// WithSeedData replaces the default seed corpus. Used for the detailed
// taxonomy and in tests.
func WithSeedData(seed func() []model.TrainingExample) TrainerOption {
	return func(t *Trainer) {
		t.seed = seed
	}
}

// New creates a Trainer.
func New(classifier *classify.Classifier, corrections service.CorrectionStore, history *HistoryStore, logger *slog.Logger, opts ...TrainerOption) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Trainer{
		classifier:  classifier,
		corrections: corrections,
		history:     history,
		logger:      logger,
		seed:        classify.SeedExamples,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Bootstrap trains the initial model from seed data alone and records it as
// the initial training event.
func (t *Trainer) Bootstrap(ctx context.Context, progress func(done, total int)) (*classify.TrainResult, error) {
	t.logger.Info("bootstrapping model from seed data")

	result, err := t.classifier.Train(ctx, t.seed(), progress)
	if err != nil {
		return nil, fmt.Errorf("bootstrap training failed: %w", err)
	}

	if err := t.history.Append(HistoryEvent{
		Timestamp: time.Now().UTC(),
		Version:   result.Version,
		IsInitial: true,
		Metrics:   result.Metrics,
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// Retrain refits the model on seed data plus unapplied corrections.
// maxCorrections <= 0 consumes the whole backlog. When no unapplied
// corrections exist the model is left untouched and ErrNoCorrectionsAvailable
// is returned. Corrections are marked as applied only after the new version
// is durable; any failure leaves every correction unapplied.
func (t *Trainer) Retrain(ctx context.Context, maxCorrections int, progress func(done, total int)) (*RetrainResult, error) {
	corrections, err := t.corrections.GetUnapplied(ctx, maxCorrections)
	if err != nil {
		return nil, err
	}
	if len(corrections) == 0 {
		return nil, common.ErrNoCorrectionsAvailable
	}

	if !t.classifier.IsTrained() {
		t.logger.Info("no trained model before retraining; bootstrapping first")
		if _, err := t.Bootstrap(ctx, progress); err != nil {
			return nil, err
		}
	}

	examples := t.seed()
	ids := make([]int64, 0, len(corrections))
	for _, c := range corrections {
		examples = append(examples, model.TrainingExample{
			Description: c.Description,
			Category:    c.CorrectCategory,
			Amount:      c.Amount,
		})
		ids = append(ids, c.ID)
	}

	t.logger.Info("retraining model",
		"corrections", len(corrections),
		"seed_examples", len(examples)-len(corrections),
	)

	result, err := t.classifier.Train(ctx, examples, progress)
	if err != nil {
		return nil, fmt.Errorf("retraining failed: %w", err)
	}

	// The new version is durable at this point. Marking corrections is the
	// one write that must not be lost, so it retries through transient
	// database contention.
	err = common.WithRetry(ctx, func() error {
		return t.corrections.MarkApplied(ctx, ids, result.Version)
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond})
	if err != nil {
		return nil, fmt.Errorf("model version %d trained but corrections not marked: %w", result.Version, err)
	}

	if err := t.history.Append(HistoryEvent{
		Timestamp:          time.Now().UTC(),
		Version:            result.Version,
		Metrics:            result.Metrics,
		CorrectionsApplied: len(ids),
		CorrectionIDs:      ids,
	}); err != nil {
		return nil, err
	}

	return &RetrainResult{
		Success:            true,
		CorrectionsApplied: len(ids),
		NewVersion:         result.Version,
		Accuracy:           result.Metrics.Accuracy,
		Message: fmt.Sprintf("Model retrained to version %d with %d corrections (accuracy %.3f)",
			result.Version, len(ids), result.Metrics.Accuracy),
	}, nil
}

// History returns the persisted training history.
func (t *Trainer) History() (*History, error) {
	return t.history.Load()
}
