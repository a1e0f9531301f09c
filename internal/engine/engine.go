// Package engine wires the classifier, correction store, trainer and
// recurring detector into the single service object the CLI and HTTP API
// drive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/classify"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/recurring"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/trainer"
)

// Engine is the categorization service. All dependencies are injected so
// tests can assemble engines over temporary stores.
type Engine struct {
	classifier   *classify.Classifier
	corrections  service.CorrectionStore
	trainer      *trainer.Trainer
	detector     *recurring.Detector
	detectorOpts service.DetectorOptions
	logger       *slog.Logger
	detailed     bool
}

// Options configures engine construction.
type Options struct {
	Logger *slog.Logger
	// Detailed selects the subcategory taxonomy for correction validation.
	Detailed bool
}

// New creates an Engine. detectorOpts sets the recurring-detection defaults;
// individual detection calls may override them.
func New(classifier *classify.Classifier, corrections service.CorrectionStore, tr *trainer.Trainer, detectorOpts service.DetectorOptions, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		classifier:   classifier,
		corrections:  corrections,
		trainer:      tr,
		detector:     recurring.NewDetector(detectorOpts, logger),
		detectorOpts: detectorOpts,
		logger:       logger,
		detailed:     opts.Detailed,
	}
}

// CorrectionRequest carries a user's assertion that a description belongs to
// a category. Confidence, when set, records the model's confidence at the
// time the mistaken prediction was made.
type CorrectionRequest struct {
	Amount            *float64
	Confidence        *float64
	Description       string
	PredictedCategory string
	CorrectCategory   string
	TransactionRef    string
	UserID            int64
}

// ModelInfo describes the active model.
type ModelInfo struct {
	LastTrained        string                              `json:"last_trained,omitempty"`
	Categories         []string                            `json:"categories,omitempty"`
	FeatureImportances map[string][]classify.FeatureWeight `json:"feature_importances,omitempty"`
	Version            int                                 `json:"version"`
	Accuracy           float64                             `json:"accuracy"`
	IsTrained          bool                                `json:"is_trained"`
}

// Categorize predicts the category for a description. Precedence is fixed:
// a matching user correction always wins; otherwise the model predicts and
// the rule layer adjusts low-confidence output. A description with no usable
// signal maps to the fallback category with zero confidence, not an error.
// An untrained model is bootstrapped from seed data on first use.
func (e *Engine) Categorize(ctx context.Context, description string, amount *float64) (*model.Prediction, error) {
	override, err := e.corrections.FindMatch(ctx, description, amount)
	if err != nil {
		return nil, err
	}
	if override != nil {
		e.logger.Debug("correction override hit",
			"description", description,
			"category", override.CorrectCategory,
		)
		return &model.Prediction{
			Category:     override.CorrectCategory,
			Confidence:   1.0,
			Explanation:  "You previously corrected this expense to this category.",
			Source:       model.SourceCorrection,
			ModelVersion: e.classifier.Version(),
		}, nil
	}

	if !e.classifier.IsTrained() {
		if _, err := e.trainer.Bootstrap(ctx, nil); err != nil {
			return nil, err
		}
	}

	pred, probs, err := e.classifier.PredictDetailed(ctx, description)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientDescription) {
			return &model.Prediction{
				Category:     model.FallbackCategory,
				Confidence:   0,
				Explanation:  "The description carries no usable signal; assigned the fallback category.",
				Source:       model.SourceFallback,
				ModelVersion: e.classifier.Version(),
			}, nil
		}
		return nil, err
	}

	return classify.ApplyRules(pred, description, amount, probs), nil
}

// Correct records a user correction and returns the stored record. The
// corrected category must exist in the active taxonomy.
func (e *Engine) Correct(ctx context.Context, req CorrectionRequest) (*model.Correction, error) {
	if !model.ValidCategory(req.CorrectCategory, e.detailed) {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrInvalidTrainingData, req.CorrectCategory)
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence %v outside [0, 1]", common.ErrInvalidTrainingData, *req.Confidence)
	}

	saved, err := e.corrections.RecordCorrection(ctx, model.Correction{
		Description:            req.Description,
		Amount:                 req.Amount,
		Confidence:             req.Confidence,
		PredictedCategory:      req.PredictedCategory,
		CorrectCategory:        req.CorrectCategory,
		TransactionRef:         req.TransactionRef,
		UserID:                 req.UserID,
		ModelVersionAtCreation: e.classifier.Version(),
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("correction recorded",
		"id", saved.ID,
		"category", saved.CorrectCategory,
		"model_version", saved.ModelVersionAtCreation,
	)
	return saved, nil
}

// Retrain consumes the correction backlog and swaps in a new model version.
func (e *Engine) Retrain(ctx context.Context, maxCorrections int, progress func(done, total int)) (*trainer.RetrainResult, error) {
	return e.trainer.Retrain(ctx, maxCorrections, progress)
}

// Bootstrap trains the initial model from seed data.
func (e *Engine) Bootstrap(ctx context.Context, progress func(done, total int)) (*classify.TrainResult, error) {
	return e.trainer.Bootstrap(ctx, progress)
}

// DetectRecurring analyzes transactions for recurring payment patterns.
// Fields set in opts override the engine's detection defaults for this call
// only.
func (e *Engine) DetectRecurring(ctx context.Context, transactions []model.Transaction, opts service.DetectorOptions) (*model.RecurringReport, error) {
	detector := e.detector
	if opts != (service.DetectorOptions{}) {
		merged := e.detectorOpts
		if opts.MinOccurrences > 0 {
			merged.MinOccurrences = opts.MinOccurrences
		}
		if opts.WindowDays > 0 {
			merged.WindowDays = opts.WindowDays
		}
		if opts.AmountVariance > 0 {
			merged.AmountVariance = opts.AmountVariance
		}
		if !opts.Now.IsZero() {
			merged.Now = opts.Now
		}
		detector = recurring.NewDetector(merged, e.logger)
	}
	return detector.Detect(ctx, transactions)
}

// ModelInfo reports the state of the active model. An untrained engine
// returns IsTrained false rather than an error.
func (e *Engine) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, err := e.classifier.Metadata()
	if err != nil {
		if errors.Is(err, common.ErrModelNotTrained) {
			return &ModelInfo{}, nil
		}
		return nil, err
	}

	return &ModelInfo{
		Version:            meta.Version,
		IsTrained:          meta.IsTrained,
		LastTrained:        meta.LastTrained.Format("2006-01-02T15:04:05Z07:00"),
		Accuracy:           meta.Accuracy,
		Categories:         meta.Categories,
		FeatureImportances: meta.FeatureImportances,
	}, nil
}

// TrainingHistory returns the persisted record of training runs.
func (e *Engine) TrainingHistory(ctx context.Context) (*trainer.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.trainer.History()
}

// CorrectionStats summarizes the correction backlog.
func (e *Engine) CorrectionStats(ctx context.Context) (*model.CorrectionStats, error) {
	return e.corrections.Stats(ctx)
}

// RecentCorrections returns the newest corrections.
func (e *Engine) RecentCorrections(ctx context.Context, limit int) ([]model.Correction, error) {
	return e.corrections.GetRecent(ctx, limit)
}
