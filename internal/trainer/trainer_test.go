package trainer

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/classify"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/nlp"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/Veraticus/pennywise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrainer(t *testing.T) (*Trainer, *classify.Classifier, *storage.SQLiteStorage) {
	t.Helper()

	dir := t.TempDir()

	artifacts, err := classify.NewArtifactStore(filepath.Join(dir, "models"))
	require.NoError(t, err)
	classifier, err := classify.NewClassifier(artifacts, nlp.NewNormalizer(), slog.Default())
	require.NoError(t, err)

	store := testutil.SetupCorrectionsDB(t)

	history := NewHistoryStore(filepath.Join(dir, "training_history.json"))
	return New(classifier, store, history, slog.Default()), classifier, store
}

func recordTestCorrection(t *testing.T, store *storage.SQLiteStorage, description, category string) *model.Correction {
	t.Helper()

	return testutil.SeedCorrection(t, store, model.Correction{
		Description:       description,
		PredictedCategory: "Miscellaneous",
		CorrectCategory:   category,
	})
}

func TestBootstrap(t *testing.T) {
	tr, classifier, _ := newTestTrainer(t)

	result, err := tr.Bootstrap(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Version)
	assert.True(t, classifier.IsTrained())

	history, err := tr.History()
	require.NoError(t, err)
	require.Len(t, history.RetrainingEvents, 1)
	assert.True(t, history.RetrainingEvents[0].IsInitial)
	assert.Equal(t, 0, history.TotalCorrectionsApplied)
	assert.Equal(t, []int{1}, history.Versions)
	require.NotNil(t, history.LastTraining)
}

func TestRetrainNoCorrections(t *testing.T) {
	tr, _, _ := newTestTrainer(t)

	_, err := tr.Retrain(context.Background(), 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoCorrectionsAvailable)
}

func TestRetrainAppliesCorrections(t *testing.T) {
	tr, classifier, store := newTestTrainer(t)
	ctx := context.Background()

	_, err := tr.Bootstrap(ctx, nil)
	require.NoError(t, err)

	recordTestCorrection(t, store, "ACME ROCK CLIMBING GYM", "Personal Care")
	recordTestCorrection(t, store, "ACME CLIMBING SHOES", "Shopping")

	result, err := tr.Retrain(ctx, 0, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.CorrectionsApplied)
	assert.Equal(t, 2, result.NewVersion)
	assert.Equal(t, 2, classifier.Version())

	unapplied, err := store.GetUnapplied(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, unapplied)

	history, err := tr.History()
	require.NoError(t, err)
	require.Len(t, history.RetrainingEvents, 2)
	last := history.RetrainingEvents[1]
	assert.False(t, last.IsInitial)
	assert.Equal(t, 2, last.Version)
	assert.Equal(t, 2, last.CorrectionsApplied)
	assert.Len(t, last.CorrectionIDs, 2)
	assert.Equal(t, 2, history.TotalCorrectionsApplied)
}

func TestRetrainBootstrapsUntrainedModel(t *testing.T) {
	tr, classifier, store := newTestTrainer(t)
	ctx := context.Background()

	recordTestCorrection(t, store, "ACME ROCK CLIMBING GYM", "Personal Care")

	result, err := tr.Retrain(ctx, 0, nil)
	require.NoError(t, err)

	// Version 1 is the bootstrap, version 2 the retrain.
	assert.Equal(t, 2, result.NewVersion)
	assert.Equal(t, 2, classifier.Version())

	history, err := tr.History()
	require.NoError(t, err)
	require.Len(t, history.RetrainingEvents, 2)
	assert.True(t, history.RetrainingEvents[0].IsInitial)
	assert.False(t, history.RetrainingEvents[1].IsInitial)
}

func TestRetrainRespectsMaxCorrections(t *testing.T) {
	tr, _, store := newTestTrainer(t)
	ctx := context.Background()

	_, err := tr.Bootstrap(ctx, nil)
	require.NoError(t, err)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, desc := range []string{"VENDOR ALPHA PURCHASE", "VENDOR BETA PURCHASE", "VENDOR GAMMA PURCHASE"} {
		_, err := store.RecordCorrection(ctx, model.Correction{
			Description:     desc,
			CorrectCategory: "Shopping",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	result, err := tr.Retrain(ctx, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CorrectionsApplied)

	// The oldest two were consumed; the newest remains for the next cycle.
	unapplied, err := store.GetUnapplied(ctx, 0)
	require.NoError(t, err)
	require.Len(t, unapplied, 1)
	assert.Equal(t, "VENDOR GAMMA PURCHASE", unapplied[0].Description)
}

func TestHistoryStoreLoadMissing(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "missing.json"))

	history, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, history.Versions)
	assert.Nil(t, history.LastTraining)
}
