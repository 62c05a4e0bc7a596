package model

import (
	"fmt"
	"slices"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/trees"
)

const (
	BackendGolearn = "golearn"
	BackendNative  = "native"
)

// CARTClassifier adapts golearn's Gini CART tree to the Classifier interface.
// Features and labels are carried as float attributes; golearn reads the
// class attribute back as an integer label.
type CARTClassifier struct {
	config    TreeConfig
	tree      *trees.CARTDecisionTreeClassifier
	classes   []int
	nFeatures int
}

func NewCARTClassifier(cfg TreeConfig) *CARTClassifier {
	return &CARTClassifier{config: cfg}
}

func (c *CARTClassifier) Fit(x [][]float64, y []int) error {
	nFeatures, err := trainingShape(x, y)
	if err != nil {
		return err
	}

	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	labels := make([]int64, len(classes))
	for i, class := range classes {
		labels[i] = int64(class)
	}

	grid, err := newGrid(x, y, nFeatures)
	if err != nil {
		return err
	}

	// golearn treats a negative depth as unbounded.
	maxDepth := int64(c.config.MaxDepth)
	if maxDepth == 0 {
		maxDepth = -1
	}

	tree := trees.NewDecisionTreeClassifier("gini", maxDepth, labels)
	if err := tree.Fit(grid); err != nil {
		return fmt.Errorf("golearn fit failed: %w", err)
	}

	c.tree = tree
	c.classes = classes
	c.nFeatures = nFeatures
	return nil
}

func (c *CARTClassifier) Predict(x []float64) (int, error) {
	if c == nil || c.tree == nil {
		return 0, ErrNotFitted
	}
	if len(x) != c.nFeatures {
		return 0, fmt.Errorf("got %d features, expected %d", len(x), c.nFeatures)
	}

	grid, err := newGrid([][]float64{x}, []int{0}, c.nFeatures)
	if err != nil {
		return 0, err
	}
	preds, err := c.tree.Predict(grid)
	if err != nil {
		return 0, fmt.Errorf("golearn predict failed: %w", err)
	}
	if len(preds) != 1 {
		return 0, fmt.Errorf("golearn returned %d predictions for one row", len(preds))
	}
	return int(preds[0]), nil
}

func (c *CARTClassifier) Classes() []int {
	if c == nil {
		return nil
	}
	return slices.Clone(c.classes)
}

// newGrid packs rows into dense golearn instances with one float attribute
// per feature followed by the class attribute.
func newGrid(x [][]float64, y []int, nFeatures int) (*base.DenseInstances, error) {
	grid := base.NewDenseInstances()

	specs := make([]base.AttributeSpec, nFeatures)
	for i := range specs {
		specs[i] = grid.AddAttribute(base.NewFloatAttribute(fmt.Sprintf("x%d", i)))
	}
	label := base.NewFloatAttribute("label")
	labelSpec := grid.AddAttribute(label)
	if err := grid.AddClassAttribute(label); err != nil {
		return nil, fmt.Errorf("failed to mark class attribute: %w", err)
	}

	if err := grid.Extend(len(x)); err != nil {
		return nil, fmt.Errorf("failed to allocate %d rows: %w", len(x), err)
	}
	for row, values := range x {
		for i, v := range values {
			grid.Set(specs[i], row, base.PackFloatToBytes(v))
		}
		grid.Set(labelSpec, row, base.PackFloatToBytes(float64(y[row])))
	}
	return grid, nil
}

// NewClassifier returns an unfitted classifier for the named backend. An
// empty backend selects golearn.
func NewClassifier(backend string, cfg TreeConfig) (Classifier, error) {
	switch backend {
	case "", BackendGolearn:
		return NewCARTClassifier(cfg), nil
	case BackendNative:
		return NewDecisionTree(cfg), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", backend)
	}
}
