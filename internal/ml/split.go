package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions sample indices into train and test sets so that
// every class appears at least once on each side. testFraction must already
// be adjusted by the caller to at least numClasses/len(y).
func StratifiedSplit(y []int, numClasses int, testFraction float64, seed int64) (train, test []int, err error) {
	if len(y) == 0 {
		return nil, nil, fmt.Errorf("no samples to split")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %.3f out of range (0,1)", testFraction)
	}

	byClass := make([][]int, numClasses)
	for i, class := range y {
		if class < 0 || class >= numClasses {
			return nil, nil, fmt.Errorf("class %d out of range", class)
		}
		byClass[class] = append(byClass[class], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for class, indices := range byClass {
		if len(indices) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d samples; need at least 2 for a stratified split", class, len(indices))
		}

		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		// At least one test sample and at least one train sample per class.
		n := int(math.Round(testFraction * float64(len(indices))))
		if n < 1 {
			n = 1
		}
		if n >= len(indices) {
			n = len(indices) - 1
		}

		test = append(test, indices[:n]...)
		train = append(train, indices[n:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
