// Package classify implements the trained expense classifier: model training,
// versioned artifact persistence, prediction with alternatives and
// explanations, and the rule layer applied on top of raw model output.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/ml"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/nlp"
)

// MinTrainingExamples is the smallest corpus the classifier will train on.
const MinTrainingExamples = 10

// topFeaturesPerCategory bounds the per-category feature list persisted in
// model metadata.
const topFeaturesPerCategory = 20

// maxAlternatives bounds the runner-up categories returned alongside a
// prediction.
const maxAlternatives = 3

// TrainResult summarizes a completed training run.
type TrainResult struct {
	Metrics    ml.Metrics
	Version    int
	Categories []string
}

// Classifier trains and serves the expense categorization model. The active
// artifact is swapped atomically after a successful training run, so
// concurrent predictions always see a complete model.
type Classifier struct {
	normalizer *nlp.Normalizer
	store      *ArtifactStore
	logger     *slog.Logger

	mu       sync.RWMutex
	artifact *Artifact
}

// NewClassifier creates a classifier backed by the given artifact store. The
// latest persisted version, if any, is loaded eagerly.
func NewClassifier(store *ArtifactStore, normalizer *nlp.Normalizer, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		normalizer: normalizer,
		store:      store,
		logger:     logger,
	}

	artifact, err := store.LoadLatest()
	switch {
	case err == nil:
		c.artifact = artifact
		logger.Info("loaded model", "version", artifact.Meta.Version, "accuracy", artifact.Meta.Accuracy)
	case common.IsNotFound(err):
		logger.Info("no saved model found; training required")
	default:
		return nil, err
	}

	return c, nil
}

// IsTrained reports whether a usable model is loaded.
func (c *Classifier) IsTrained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.artifact != nil && c.artifact.Forest.Trained()
}

// Version returns the active model version, or 0 when untrained.
func (c *Classifier) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.artifact == nil {
		return 0
	}
	return c.artifact.Meta.Version
}

// Metadata returns a copy of the active model's metadata.
func (c *Classifier) Metadata() (Metadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.artifact == nil {
		return Metadata{}, common.ErrModelNotTrained
	}
	return c.artifact.Meta, nil
}

// Train fits a new model on the given examples, evaluates it on a stratified
// hold-out split, persists it as the next version and makes it the active
// model. The previous version stays on disk untouched. The progress callback,
// when non-nil, is invoked as ensemble trees complete.
func (c *Classifier) Train(ctx context.Context, examples []model.TrainingExample, progress func(done, total int)) (*TrainResult, error) {
	if len(examples) < MinTrainingExamples {
		return nil, fmt.Errorf("%w: %d examples provided, need at least %d",
			common.ErrInvalidTrainingData, len(examples), MinTrainingExamples)
	}

	docs := make([]string, 0, len(examples))
	labels := make([]string, 0, len(examples))
	for _, ex := range examples {
		normalized := c.normalizer.Normalize(ex.Description)
		if normalized == "" {
			continue
		}
		docs = append(docs, normalized)
		labels = append(labels, ex.Category)
	}
	if len(docs) < MinTrainingExamples {
		return nil, fmt.Errorf("%w: only %d examples remain after normalization, need at least %d",
			common.ErrInvalidTrainingData, len(docs), MinTrainingExamples)
	}

	codec := ml.NewLabelCodec(labels)
	y, err := codec.Encode(labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTrainingData, err)
	}

	// Widen the hold-out fraction when there are many classes so the split
	// can place at least one sample of every class on each side.
	testFraction := 0.2
	if minFraction := float64(codec.NumClasses()) / float64(len(docs)); minFraction > testFraction {
		testFraction = minFraction
	}

	forest := ml.NewForest()
	trainIdx, testIdx, err := ml.StratifiedSplit(y, codec.NumClasses(), testFraction, forest.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTrainingData, err)
	}

	trainDocs := make([]string, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainDocs[i] = docs[idx]
		trainY[i] = y[idx]
	}
	testDocs := make([]string, len(testIdx))
	testY := make([]int, len(testIdx))
	for i, idx := range testIdx {
		testDocs[i] = docs[idx]
		testY[i] = y[idx]
	}

	// The vectorizer is fitted on the training split only so hold-out
	// metrics are honest.
	vectorizer := ml.NewVectorizer()
	if err := vectorizer.Fit(trainDocs); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTrainingData, err)
	}

	trainVecs, err := vectorizer.Transform(trainDocs)
	if err != nil {
		return nil, err
	}
	testVecs, err := vectorizer.Transform(testDocs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := forest.Fit(trainVecs, trainY, codec.NumClasses(), vectorizer.NumFeatures(), progress); err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	predY := make([]int, len(testVecs))
	for i, vec := range testVecs {
		class, err := forest.Predict(vec)
		if err != nil {
			return nil, err
		}
		predY[i] = class
	}
	metrics := ml.Evaluate(testY, predY, codec.NumClasses())
	metrics.TrainSamples = len(trainIdx)
	metrics.TestSamples = len(testIdx)

	version, err := c.store.NextVersion()
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{
		Forest:     forest,
		Vectorizer: vectorizer,
		Labels:     codec,
		Meta: Metadata{
			Version:            version,
			IsTrained:          true,
			LastTrained:        time.Now().UTC(),
			Accuracy:           metrics.Accuracy,
			Categories:         codec.Classes,
			FeatureImportances: categoryFeatures(forest, vectorizer, codec, trainVecs, trainY),
		},
	}

	// Persist before swap so the active model is always recoverable.
	if err := c.store.Save(artifact); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.artifact = artifact
	c.mu.Unlock()

	c.logger.Info("model trained",
		"version", version,
		"accuracy", fmt.Sprintf("%.3f", metrics.Accuracy),
		"f1", fmt.Sprintf("%.3f", metrics.F1),
		"train_samples", metrics.TrainSamples,
		"test_samples", metrics.TestSamples,
		"features", vectorizer.NumFeatures(),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &TrainResult{
		Version:    version,
		Metrics:    metrics,
		Categories: codec.Classes,
	}, nil
}

// categoryFeatures derives the most informative features per category: each
// category's training mass per feature scaled by the ensemble's global
// importance for that feature, truncated to the strongest entries.
func categoryFeatures(forest *ml.Forest, vectorizer *ml.Vectorizer, codec *ml.LabelCodec, vecs []ml.SparseVector, y []int) map[string][]FeatureWeight {
	importances := forest.FeatureImportances()
	names := vectorizer.FeatureNames()

	perClass := make([][]float64, codec.NumClasses())
	for c := range perClass {
		perClass[c] = make([]float64, len(names))
	}
	for i, vec := range vecs {
		row := perClass[y[i]]
		for j, idx := range vec.Indices {
			row[idx] += vec.Values[j]
		}
	}

	out := make(map[string][]FeatureWeight, codec.NumClasses())
	for class, row := range perClass {
		weights := make([]FeatureWeight, 0, len(row))
		for idx, mass := range row {
			score := mass * importances[idx]
			if score > 0 {
				weights = append(weights, FeatureWeight{Feature: names[idx], Weight: score})
			}
		}
		sort.Slice(weights, func(i, j int) bool {
			if weights[i].Weight != weights[j].Weight {
				return weights[i].Weight > weights[j].Weight
			}
			return weights[i].Feature < weights[j].Feature
		})
		if len(weights) > topFeaturesPerCategory {
			weights = weights[:topFeaturesPerCategory]
		}
		label, _ := codec.Decode(class)
		out[label] = weights
	}
	return out
}

// Predict categorizes a single description using the active model. The
// returned prediction carries the top category, runner-up alternatives and a
// natural-language explanation.
func (c *Classifier) Predict(ctx context.Context, description string) (*model.Prediction, error) {
	pred, _, err := c.PredictDetailed(ctx, description)
	return pred, err
}

// PredictDetailed is Predict plus the full per-category probability
// distribution, which the rule layer needs to evaluate candidate categories
// beyond the listed alternatives.
func (c *Classifier) PredictDetailed(ctx context.Context, description string) (*model.Prediction, map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	artifact := c.artifact
	c.mu.RUnlock()

	if artifact == nil || !artifact.Forest.Trained() {
		return nil, nil, common.ErrModelNotTrained
	}

	normalized := c.normalizer.Normalize(description)
	if normalized == "" {
		return nil, nil, fmt.Errorf("%w: %q", common.ErrInsufficientDescription, description)
	}

	vec, err := artifact.Vectorizer.TransformOne(normalized)
	if err != nil {
		return nil, nil, err
	}

	probs, err := artifact.Forest.PredictProba(vec)
	if err != nil {
		return nil, nil, err
	}

	ranked := rankClasses(probs)
	best := ranked[0]
	category, err := artifact.Labels.Decode(best)
	if err != nil {
		return nil, nil, err
	}

	alternatives := make([]model.Alternative, 0, maxAlternatives)
	for _, class := range ranked[1:] {
		if len(alternatives) == maxAlternatives || probs[class] <= 0 {
			break
		}
		label, err := artifact.Labels.Decode(class)
		if err != nil {
			return nil, nil, err
		}
		alternatives = append(alternatives, model.Alternative{
			Category:   label,
			Confidence: probs[class],
		})
	}

	explanation := explainPrediction(artifact, normalized, best, category)

	byCategory := make(map[string]float64, len(probs))
	for class, p := range probs {
		label, err := artifact.Labels.Decode(class)
		if err != nil {
			return nil, nil, err
		}
		byCategory[label] = p
	}

	return &model.Prediction{
		Category:     category,
		Confidence:   probs[best],
		Alternatives: alternatives,
		Explanation:  explanation,
		Source:       model.SourceModel,
		ModelVersion: artifact.Meta.Version,
	}, byCategory, nil
}

// rankClasses returns class indices ordered by descending probability, ties
// broken by class index for determinism.
func rankClasses(probs []float64) []int {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return probs[order[i]] > probs[order[j]]
	})
	return order
}
