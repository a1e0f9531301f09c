// Package ml implements the feature vectorizer and tree-ensemble classifier
// backing expense categorization.
package ml

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SparseVector is a sparse feature vector with indices sorted ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// At returns the value at feature index i, or 0 when absent.
func (v SparseVector) At(i int) float64 {
	pos := sort.SearchInts(v.Indices, i)
	if pos < len(v.Indices) && v.Indices[pos] == i {
		return v.Values[pos]
	}
	return 0
}

// Vectorizer computes TF-IDF weights over unigrams and bigrams with a capped
// vocabulary. The fitted vocabulary is part of the persisted model artifact;
// Transform reuses exactly the fitted vocabulary and silently ignores
// out-of-vocabulary terms.
type Vectorizer struct {
	Vocabulary  map[string]int
	IDF         []float64
	MaxFeatures int
	MinDF       int
	MaxDF       float64
	NGramMin    int
	NGramMax    int
	Fitted      bool
}

// NewVectorizer returns a vectorizer with the defaults used for expense
// descriptions: 2000-term vocabulary, unigrams+bigrams, minimum document
// frequency 2, maximum document frequency 0.8.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		MaxFeatures: 2000,
		MinDF:       2,
		MaxDF:       0.8,
		NGramMin:    1,
		NGramMax:    2,
	}
}

// ngrams expands a normalized document into its n-gram terms.
func (v *Vectorizer) ngrams(doc string) []string {
	tokens := strings.Fields(doc)
	if len(tokens) == 0 {
		return nil
	}

	var terms []string
	for n := v.NGramMin; n <= v.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit learns the vocabulary and inverse document frequencies from a corpus of
// normalized documents.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("empty corpus")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range v.ngrams(doc) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	maxDocs := len(corpus)
	maxDF := maxDocs
	if v.MaxDF > 0 && v.MaxDF < 1 {
		maxDF = int(v.MaxDF * float64(maxDocs))
		if maxDF < 1 {
			maxDF = 1
		}
	}

	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.MinDF || df > maxDF {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no terms survive document frequency thresholds (min_df=%d)", v.MinDF)
	}

	// Cap the vocabulary at the most frequent terms, then index
	// alphabetically so feature order is stable.
	if v.MaxFeatures > 0 && len(candidates) > v.MaxFeatures {
		sort.Slice(candidates, func(i, j int) bool {
			if termFreq[candidates[i]] != termFreq[candidates[j]] {
				return termFreq[candidates[i]] > termFreq[candidates[j]]
			}
			return candidates[i] < candidates[j]
		})
		candidates = candidates[:v.MaxFeatures]
	}
	sort.Strings(candidates)

	v.Vocabulary = make(map[string]int, len(candidates))
	v.IDF = make([]float64, len(candidates))
	for i, term := range candidates {
		v.Vocabulary[term] = i
		// Smoothed IDF, matching the conventional formulation.
		v.IDF[i] = math.Log(float64(1+maxDocs)/float64(1+docFreq[term])) + 1
	}
	v.Fitted = true

	return nil
}

// Transform maps normalized documents into L2-normalized TF-IDF vectors using
// the fitted vocabulary.
func (v *Vectorizer) Transform(docs []string) ([]SparseVector, error) {
	if !v.Fitted {
		return nil, fmt.Errorf("vectorizer not fitted")
	}

	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.transformOne(doc)
	}
	return out, nil
}

// TransformOne maps a single normalized document into a TF-IDF vector.
func (v *Vectorizer) TransformOne(doc string) (SparseVector, error) {
	if !v.Fitted {
		return SparseVector{}, fmt.Errorf("vectorizer not fitted")
	}
	return v.transformOne(doc), nil
}

func (v *Vectorizer) transformOne(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.ngrams(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * v.IDF[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}

	return SparseVector{Indices: indices, Values: values}
}

// FeatureNames returns the vocabulary terms ordered by feature index.
func (v *Vectorizer) FeatureNames() []string {
	names := make([]string, len(v.Vocabulary))
	for term, idx := range v.Vocabulary {
		names[idx] = term
	}
	return names
}

// NumFeatures returns the fitted vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}
