package model

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrNotFitted = errors.New("classifier has not been fitted")

// Classifier is any binary classifier trained on the five-column feature
// schema.
type Classifier interface {
	Fit(x [][]float64, y []int) error
	Predict(x []float64) (int, error)
}

// Structured is implemented by classifiers that can describe the tree they
// grew.
type Structured interface {
	Depth() int
	Leaves() int
}

type TreeConfig struct {
	// MaxDepth of 0 grows the tree until leaves are pure.
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// DecisionTree is a CART classifier splitting on Gini impurity.
type DecisionTree struct {
	config    TreeConfig
	root      *node
	classes   []int
	nFeatures int
}

type node struct {
	leaf      bool
	class     int
	samples   int
	feature   int
	threshold float64
	left      *node
	right     *node
}

// trainingShape checks that x and y describe a non-empty rectangular training
// set and returns its width.
func trainingShape(x [][]float64, y []int) (int, error) {
	if len(x) == 0 {
		return 0, errors.New("cannot fit on an empty training set")
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("feature rows (%d) and labels (%d) differ", len(x), len(y))
	}

	nFeatures := len(x[0])
	if nFeatures == 0 {
		return 0, errors.New("feature rows are empty")
	}
	for i, row := range x {
		if len(row) != nFeatures {
			return 0, fmt.Errorf("row %d has %d features, expected %d", i, len(row), nFeatures)
		}
	}
	return nFeatures, nil
}

func NewDecisionTree(cfg TreeConfig) *DecisionTree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	return &DecisionTree{config: cfg}
}

func (t *DecisionTree) Fit(x [][]float64, y []int) error {
	nFeatures, err := trainingShape(x, y)
	if err != nil {
		return err
	}

	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	classIndex := make(map[int]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = classIndex[label]
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}

	b := &builder{
		x:        x,
		y:        encoded,
		nClasses: len(classes),
		config:   t.config,
	}

	t.classes = classes
	t.nFeatures = nFeatures
	t.root = b.build(indices, 0)
	for n := range t.root.walk() {
		if n.leaf {
			n.class = classes[n.class]
		}
	}
	return nil
}

func (t *DecisionTree) Predict(x []float64) (int, error) {
	if t == nil || t.root == nil {
		return 0, ErrNotFitted
	}
	if len(x) != t.nFeatures {
		return 0, fmt.Errorf("got %d features, expected %d", len(x), t.nFeatures)
	}

	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class, nil
}

func (t *DecisionTree) Depth() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.depth()
}

func (t *DecisionTree) Leaves() int {
	if t == nil || t.root == nil {
		return 0
	}
	count := 0
	for n := range t.root.walk() {
		if n.leaf {
			count++
		}
	}
	return count
}

func (t *DecisionTree) Classes() []int {
	if t == nil {
		return nil
	}
	return slices.Clone(t.classes)
}

func (n *node) depth() int {
	if n.leaf {
		return 0
	}
	return 1 + max(n.left.depth(), n.right.depth())
}

func (n *node) walk() func(yield func(*node) bool) {
	return func(yield func(*node) bool) {
		stack := []*node{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			if !cur.leaf {
				stack = append(stack, cur.right, cur.left)
			}
		}
	}
}

type builder struct {
	x        [][]float64
	y        []int
	nClasses int
	config   TreeConfig
}

func (b *builder) build(indices []int, depth int) *node {
	counts := b.counts(indices)
	n := &node{
		leaf:    true,
		class:   argmax(counts),
		samples: len(indices),
	}

	if gini(counts, len(indices)) == 0 ||
		len(indices) < b.config.MinSamplesSplit ||
		len(indices) < 2*b.config.MinSamplesLeaf ||
		(b.config.MaxDepth > 0 && depth >= b.config.MaxDepth) {
		return n
	}

	feature, threshold, ok := b.bestSplit(indices, counts)
	if !ok {
		return n
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	n.leaf = false
	n.feature = feature
	n.threshold = threshold
	n.left = b.build(left, depth+1)
	n.right = b.build(right, depth+1)
	return n
}

// bestSplit scans every feature for the threshold with the lowest weighted
// child impurity. Thresholds are midpoints between consecutive distinct
// values. Ties keep the first candidate in feature, then value, order.
func (b *builder) bestSplit(indices []int, total []int) (int, float64, bool) {
	var (
		bestFeature   int
		bestThreshold float64
		bestScore     float64
		found         bool
	)

	n := len(indices)
	sorted := slices.Clone(indices)
	left := make([]int, b.nClasses)
	right := make([]int, b.nClasses)

	for f := 0; f < len(b.x[0]); f++ {
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		clear(left)
		copy(right, total)

		for pos := 0; pos < n-1; pos++ {
			label := b.y[sorted[pos]]
			left[label]++
			right[label]--

			nLeft := pos + 1
			nRight := n - nLeft
			cur := b.x[sorted[pos]][f]
			next := b.x[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			if nLeft < b.config.MinSamplesLeaf || nRight < b.config.MinSamplesLeaf {
				continue
			}

			score := (float64(nLeft)*gini(left, nLeft) + float64(nRight)*gini(right, nRight)) / float64(n)
			if !found || score < bestScore {
				found = true
				bestScore = score
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func (b *builder) counts(indices []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range indices {
		counts[b.y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

// argmax returns the first index holding the largest count.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
