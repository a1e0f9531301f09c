package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// Forest is a random-forest classifier producing class probabilities by
// averaging the distributions of its trees. Training is deterministic for a
// given seed; prediction is deterministic for a given trained forest.
type Forest struct {
	Trees           []*Tree
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	NumClasses      int
	NumFeatures     int
	Seed            int64
}

// NewForest returns a forest with the defaults used for expense
// classification.
func NewForest() *Forest {
	return &Forest{
		NumTrees:        150,
		MaxDepth:        25,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// Fit trains the ensemble on TF-IDF vectors and encoded labels. The progress
// callback, when non-nil, is invoked after each completed tree.
func (f *Forest) Fit(vectors []SparseVector, y []int, numClasses, numFeatures int, progress func(done, total int)) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no training vectors")
	}
	if len(vectors) != len(y) {
		return fmt.Errorf("vector count %d does not match label count %d", len(vectors), len(y))
	}

	f.NumClasses = numClasses
	f.NumFeatures = numFeatures

	// Densify once; the corpus is small enough that dense rows are cheaper
	// than repeated sparse lookups during split search.
	x := make([][]float64, len(vectors))
	for i, vec := range vectors {
		row := make([]float64, numFeatures)
		for j, idx := range vec.Indices {
			row[idx] = vec.Values[j]
		}
		x[i] = row
	}

	featuresPerNode := int(math.Sqrt(float64(numFeatures)))
	if featuresPerNode < 1 {
		featuresPerNode = 1
	}

	f.Trees = make([]*Tree, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		rng := rand.New(rand.NewSource(f.Seed + int64(t)))

		// Bootstrap sample with replacement.
		sampleIdx := make([]int, len(x))
		for i := range sampleIdx {
			sampleIdx[i] = rng.Intn(len(x))
		}

		f.Trees[t] = buildTree(x, y, sampleIdx, numClasses, featuresPerNode, f.MaxDepth, f.MinSamplesSplit, rng)

		if progress != nil {
			progress(t+1, f.NumTrees)
		}
	}

	return nil
}

// Trained reports whether the forest has been fitted.
func (f *Forest) Trained() bool {
	return len(f.Trees) > 0
}

func (f *Forest) densify(vec SparseVector) []float64 {
	x := make([]float64, f.NumFeatures)
	for j, idx := range vec.Indices {
		if idx < f.NumFeatures {
			x[idx] = vec.Values[j]
		}
	}
	return x
}

// PredictProba returns the averaged class probability distribution for a
// single vector.
func (f *Forest) PredictProba(vec SparseVector) ([]float64, error) {
	if !f.Trained() {
		return nil, fmt.Errorf("forest not trained")
	}

	x := f.densify(vec)
	probs := make([]float64, f.NumClasses)
	for _, tree := range f.Trees {
		for c, p := range tree.predictProba(x) {
			probs[c] += p
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.Trees))
	}
	return probs, nil
}

// Predict returns the arg-max class for a single vector.
func (f *Forest) Predict(vec SparseVector) (int, error) {
	probs, err := f.PredictProba(vec)
	if err != nil {
		return 0, err
	}
	best := 0
	for c, p := range probs {
		if p > probs[best] {
			best = c
		}
	}
	return best, nil
}

// FeatureImportances returns the mean normalized impurity-decrease importance
// of every feature across the ensemble.
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, f.NumFeatures)
	if !f.Trained() {
		return out
	}
	for _, tree := range f.Trees {
		for i, v := range tree.Importances {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(f.Trees))
	}
	return out
}

// Contributions attributes the predicted probability of class to individual
// features by averaging decision-path probability shifts across trees. Only
// features present in the input meaningfully contribute.
func (f *Forest) Contributions(vec SparseVector, class int) ([]float64, error) {
	if !f.Trained() {
		return nil, fmt.Errorf("forest not trained")
	}
	if class < 0 || class >= f.NumClasses {
		return nil, fmt.Errorf("class %d out of range", class)
	}

	x := f.densify(vec)
	out := make([]float64, f.NumFeatures)
	for _, tree := range f.Trees {
		tree.contributions(x, class, out)
	}
	for i := range out {
		out[i] /= float64(len(f.Trees))
	}
	return out, nil
}
