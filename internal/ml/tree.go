package ml

import (
	"math/rand"
	"sort"
)

// TreeNode is a single node in a CART decision tree. Every node carries its
// class probability distribution so per-prediction attributions can follow
// the probability shift along the decision path.
type TreeNode struct {
	Left      *TreeNode
	Right     *TreeNode
	Probs     []float64
	Threshold float64
	Feature   int
	Leaf      bool
}

// Tree is a single CART classification tree trained on a bootstrap sample.
type Tree struct {
	Root        *TreeNode
	Importances []float64
}

// treeBuilder carries the shared training state for one tree.
type treeBuilder struct {
	x               [][]float64
	y               []int
	rng             *rand.Rand
	importances     []float64
	numClasses      int
	numFeatures     int
	featuresPerNode int
	maxDepth        int
	minSamplesSplit int
	totalSamples    int
}

func buildTree(x [][]float64, y []int, sampleIdx []int, numClasses, featuresPerNode, maxDepth, minSamplesSplit int, rng *rand.Rand) *Tree {
	b := &treeBuilder{
		x:               x,
		y:               y,
		rng:             rng,
		importances:     make([]float64, len(x[0])),
		numClasses:      numClasses,
		numFeatures:     len(x[0]),
		featuresPerNode: featuresPerNode,
		maxDepth:        maxDepth,
		minSamplesSplit: minSamplesSplit,
		totalSamples:    len(sampleIdx),
	}

	root := b.grow(sampleIdx, 0)

	// Normalize importances so they sum to 1 for comparability across trees.
	var sum float64
	for _, v := range b.importances {
		sum += v
	}
	if sum > 0 {
		for i := range b.importances {
			b.importances[i] /= sum
		}
	}

	return &Tree{Root: root, Importances: b.importances}
}

func (b *treeBuilder) classProbs(samples []int) []float64 {
	probs := make([]float64, b.numClasses)
	for _, i := range samples {
		probs[b.y[i]]++
	}
	n := float64(len(samples))
	for c := range probs {
		probs[c] /= n
	}
	return probs
}

func gini(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func (b *treeBuilder) grow(samples []int, depth int) *TreeNode {
	probs := b.classProbs(samples)

	node := &TreeNode{Probs: probs}

	if len(samples) < b.minSamplesSplit || (b.maxDepth > 0 && depth >= b.maxDepth) || isPure(probs) {
		node.Leaf = true
		return node
	}

	feature, threshold, gain, ok := b.bestSplit(samples)
	if !ok {
		node.Leaf = true
		return node
	}

	var left, right []int
	for _, i := range samples {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		node.Leaf = true
		return node
	}

	b.importances[feature] += float64(len(samples)) / float64(b.totalSamples) * gain

	node.Feature = feature
	node.Threshold = threshold
	node.Left = b.grow(left, depth+1)
	node.Right = b.grow(right, depth+1)
	return node
}

func isPure(probs []float64) bool {
	for _, p := range probs {
		if p == 1 {
			return true
		}
	}
	return false
}

// bestSplit searches a random feature subset for the threshold with the
// largest impurity decrease.
func (b *treeBuilder) bestSplit(samples []int) (feature int, threshold, gain float64, ok bool) {
	n := float64(len(samples))

	parentCounts := make([]float64, b.numClasses)
	for _, i := range samples {
		parentCounts[b.y[i]]++
	}
	parentImpurity := gini(parentCounts, n)
	if parentImpurity == 0 {
		return 0, 0, 0, false
	}

	candidates := b.rng.Perm(b.numFeatures)[:b.featuresPerNode]

	type valueClass struct {
		value float64
		class int
	}

	bestGain := 0.0
	pairs := make([]valueClass, 0, len(samples))
	leftCounts := make([]float64, b.numClasses)

	for _, f := range candidates {
		pairs = pairs[:0]
		for _, i := range samples {
			pairs = append(pairs, valueClass{b.x[i][f], b.y[i]})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

		if pairs[0].value == pairs[len(pairs)-1].value {
			continue
		}

		for c := range leftCounts {
			leftCounts[c] = 0
		}

		for i := 0; i < len(pairs)-1; i++ {
			leftCounts[pairs[i].class]++
			if pairs[i].value == pairs[i+1].value {
				continue
			}

			nl := float64(i + 1)
			nr := n - nl
			rightCounts := make([]float64, b.numClasses)
			for c := range rightCounts {
				rightCounts[c] = parentCounts[c] - leftCounts[c]
			}

			g := parentImpurity - nl/n*gini(leftCounts, nl) - nr/n*gini(rightCounts, nr)
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (pairs[i].value + pairs[i+1].value) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

// predictProba walks the sample to a leaf and returns its class distribution.
func (t *Tree) predictProba(x []float64) []float64 {
	node := t.Root
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Probs
}

// contributions attributes the probability shift for class along the decision
// path to the features that caused each step.
func (t *Tree) contributions(x []float64, class int, out []float64) {
	node := t.Root
	for !node.Leaf {
		var child *TreeNode
		if x[node.Feature] <= node.Threshold {
			child = node.Left
		} else {
			child = node.Right
		}
		out[node.Feature] += child.Probs[class] - node.Probs[class]
		node = child
	}
}
