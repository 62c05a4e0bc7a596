package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
)

// fixedClassifier always predicts label and records what it was asked.
type fixedClassifier struct {
	label int
	err   error
	seen  [][]float64
}

func (f *fixedClassifier) Fit(_ [][]float64, _ []int) error { return nil }

func (f *fixedClassifier) Predict(x []float64) (int, error) {
	f.seen = append(f.seen, x)
	return f.label, f.err
}

func TestPredict_GoodHasNoAdvisories(t *testing.T) {
	engine := NewEngine(&fixedClassifier{label: 1})

	worst := dataset.FeatureVector{Age: 60, ScreenTimeHrs: 12, CaffeineMg: 500, ExerciseMin: 0, Bedtime: 23.5}
	result, err := engine.Predict(context.Background(), worst)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Label)
	assert.Equal(t, VerdictGood, result.Verdict)
	assert.Empty(t, result.Advisories)
	assert.NotNil(t, result.Advisories)
}

func TestPredict_PoorAdvisoriesAreIndependent(t *testing.T) {
	testCases := []struct {
		name     string
		features dataset.FeatureVector
		expected []string
	}{
		{
			name:     "screen time only",
			features: dataset.FeatureVector{ScreenTimeHrs: 6, CaffeineMg: 50, Bedtime: 22},
			expected: []string{AdviceScreenTime},
		},
		{
			name:     "caffeine and bedtime",
			features: dataset.FeatureVector{ScreenTimeHrs: 2, CaffeineMg: 250, Bedtime: 23.5},
			expected: []string{AdviceCaffeine, AdviceBedtime},
		},
		{
			name:     "all three",
			features: dataset.FeatureVector{ScreenTimeHrs: 8, CaffeineMg: 400, Bedtime: 23.5},
			expected: []string{AdviceScreenTime, AdviceCaffeine, AdviceBedtime},
		},
		{
			name:     "thresholds are exclusive",
			features: dataset.FeatureVector{ScreenTimeHrs: 5, CaffeineMg: 200, Bedtime: 23},
			expected: []string{},
		},
		{
			name:     "after midnight is not flagged",
			features: dataset.FeatureVector{ScreenTimeHrs: 1, CaffeineMg: 0, Bedtime: 0.5},
			expected: []string{},
		},
	}

	engine := NewEngine(&fixedClassifier{label: 0})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := engine.Predict(context.Background(), tc.features)
			require.NoError(t, err)
			assert.Equal(t, VerdictPoor, result.Verdict)
			assert.Equal(t, tc.expected, result.Advisories)
		})
	}
}

func TestPredict_PassesFeaturesInColumnOrder(t *testing.T) {
	clf := &fixedClassifier{label: 1}
	engine := NewEngine(clf)

	_, err := engine.Predict(context.Background(), dataset.FeatureVector{
		Age: 25, ScreenTimeHrs: 4.5, CaffeineMg: 100, ExerciseMin: 30, Bedtime: 22,
	})
	require.NoError(t, err)
	require.Len(t, clf.seen, 1)
	assert.Equal(t, []float64{25, 4.5, 100, 30, 22}, clf.seen[0])
}

func TestPredict_ModelUnavailable(t *testing.T) {
	_, err := NewEngine(nil).Predict(context.Background(), dataset.FeatureVector{})
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	var engine *Engine
	_, err = engine.Predict(context.Background(), dataset.FeatureVector{})
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	unfitted := NewEngine(model.NewDecisionTree(model.TreeConfig{}))
	_, err = unfitted.Predict(context.Background(), dataset.FeatureVector{})
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	var missingTree *model.DecisionTree
	_, err = NewEngine(missingTree).Predict(context.Background(), dataset.FeatureVector{})
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	var missingCART *model.CARTClassifier
	_, err = NewEngine(missingCART).Predict(context.Background(), dataset.FeatureVector{})
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestPredict_ClassifierError(t *testing.T) {
	engine := NewEngine(&fixedClassifier{err: errors.New("boom")})

	_, err := engine.Predict(context.Background(), dataset.FeatureVector{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrModelUnavailable))
	assert.Contains(t, err.Error(), "boom")
}

func TestPredict_RepeatableWithTrainedTree(t *testing.T) {
	tree := model.NewDecisionTree(model.TreeConfig{})
	require.NoError(t, tree.Fit(
		[][]float64{{25, 2, 50, 60, 22}, {41, 7.5, 300, 0, 23.5}, {22, 1, 0, 90, 21}, {28, 8, 400, 0, 0.5}},
		[]int{1, 0, 1, 0},
	))
	engine := NewEngine(tree)

	v := dataset.FeatureVector{Age: 25, ScreenTimeHrs: 4.5, CaffeineMg: 100, ExerciseMin: 30, Bedtime: 22}
	first, err := engine.Predict(context.Background(), v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := engine.Predict(context.Background(), v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
