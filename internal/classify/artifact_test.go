package classify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(t *testing.T, version int) *Artifact {
	t.Helper()

	vectorizer := ml.NewVectorizer()
	require.NoError(t, vectorizer.Fit([]string{
		"coffee shop latte", "coffee bean espresso", "gas station fuel",
		"gas fuel fill", "rent payment monthly", "rent monthly lease",
	}))

	vecs, err := vectorizer.Transform([]string{
		"coffee shop latte", "coffee bean espresso", "gas station fuel",
		"gas fuel fill", "rent payment monthly", "rent monthly lease",
	})
	require.NoError(t, err)

	forest := ml.NewForest()
	forest.NumTrees = 5
	require.NoError(t, forest.Fit(vecs, []int{0, 0, 1, 1, 2, 2}, 3, vectorizer.NumFeatures(), nil))

	return &Artifact{
		Forest:     forest,
		Vectorizer: vectorizer,
		Labels:     &ml.LabelCodec{Classes: []string{"Food & Dining", "Housing", "Transportation"}},
		Meta: Metadata{
			Version:     version,
			IsTrained:   true,
			LastTrained: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Accuracy:    0.91,
			Categories:  []string{"Food & Dining", "Housing", "Transportation"},
			FeatureImportances: map[string][]FeatureWeight{
				"Food & Dining": {{Feature: "coffee", Weight: 0.4}},
			},
		},
	}
}

func TestArtifactStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	original := testArtifact(t, 1)
	require.NoError(t, store.Save(original))

	loaded, err := store.Load(1)
	require.NoError(t, err)

	assert.Equal(t, original.Meta.Version, loaded.Meta.Version)
	assert.Equal(t, original.Meta.Accuracy, loaded.Meta.Accuracy)
	assert.True(t, original.Meta.LastTrained.Equal(loaded.Meta.LastTrained))
	assert.Equal(t, original.Meta.Categories, loaded.Meta.Categories)
	assert.Equal(t, original.Vectorizer.Vocabulary, loaded.Vectorizer.Vocabulary)
	assert.Len(t, loaded.Forest.Trees, 5)

	// A reloaded forest must predict identically to the one saved.
	vec, err := loaded.Vectorizer.TransformOne("coffee shop latte")
	require.NoError(t, err)
	origVec, err := original.Vectorizer.TransformOne("coffee shop latte")
	require.NoError(t, err)

	loadedClass, err := loaded.Forest.Predict(vec)
	require.NoError(t, err)
	origClass, err := original.Forest.Predict(origVec)
	require.NoError(t, err)
	assert.Equal(t, origClass, loadedClass)
}

func TestArtifactStoreLoadLatest(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(testArtifact(t, 1)))
	require.NoError(t, store.Save(testArtifact(t, 2)))
	require.NoError(t, store.Save(testArtifact(t, 3)))

	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Meta.Version)

	versions, err := store.Versions()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, versions)
}

func TestArtifactStoreLoadLatestEmpty(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadLatest()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArtifactStoreLoadMissingVersion(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(7)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArtifactStoreNextVersion(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	next, err := store.NextVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, store.Save(testArtifact(t, 4)))

	next, err = store.NextVersion()
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestArtifactStoreIgnoresPartialVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(testArtifact(t, 1)))

	// A crash between the model files and the metadata write leaves no
	// metadata document; that version must stay invisible.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classifier_v2.gob"), []byte("partial"), 0o600))

	versions, err := store.Versions()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)

	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Meta.Version)
}

func TestFeatureWeightJSONRoundTrip(t *testing.T) {
	weights := []FeatureWeight{
		{Feature: "coffee", Weight: 0.42},
		{Feature: "coffee shop", Weight: 0.17},
	}

	data, err := json.Marshal(weights)
	require.NoError(t, err)
	assert.JSONEq(t, `[["coffee",0.42],["coffee shop",0.17]]`, string(data))

	var decoded []FeatureWeight
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, weights, decoded)
}

func TestSeedExamplesCoverEveryMainCategory(t *testing.T) {
	examples := SeedExamples()
	require.NotEmpty(t, examples)

	counts := make(map[string]int)
	for _, ex := range examples {
		counts[ex.Category]++
	}

	for category, n := range counts {
		assert.GreaterOrEqual(t, n, MinTrainingExamples, "category %s has too few seed examples", category)
	}
	assert.Len(t, counts, 16)
}

func TestDetailedSeedExamplesCoverEverySubcategory(t *testing.T) {
	examples := DetailedSeedExamples()
	require.NotEmpty(t, examples)

	counts := make(map[string]int)
	for _, ex := range examples {
		counts[ex.Category]++
	}

	for sub, n := range counts {
		assert.GreaterOrEqual(t, n, 5, "subcategory %s has too few seed examples", sub)
	}
}
