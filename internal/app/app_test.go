package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strrl/sleepq/internal/advisor"
	"github.com/strrl/sleepq/internal/config"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
	"github.com/strrl/sleepq/internal/observability"
)

func testConfig(path string) config.Config {
	cfg := config.Default()
	cfg.DatasetPath = path
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(filepath.Join("..", "..", "sleep_data.csv")), observability.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return a
}

func TestNew_ShippedDataset(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, 200, a.Summary.Records)
	assert.Equal(t, a.Summary.Records, a.Summary.Good+a.Summary.Poor)
	assert.Equal(t, 160, a.Stats.TrainRecords)
	assert.NotEmpty(t, a.Trend)
	assert.NoError(t, a.TrendErr)
	assert.Equal(t, 200.0, testutil.ToFloat64(a.Metrics.DatasetRecords))
	assert.Equal(t, "golearn", a.Stats.Backend)
	assert.IsType(t, &model.CARTClassifier{}, a.Model)

	total := 0
	for i, p := range a.Trend {
		total += p.Count
		if i > 0 {
			assert.Less(t, a.Trend[i-1].Bedtime, p.Bedtime)
		}
	}
	assert.Equal(t, 200, total)
}

func TestPipelineConfig_CarriesBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Backend = "native"
	cfg.Model.MaxDepth = 3

	pc := PipelineConfig(cfg)
	assert.Equal(t, "native", pc.Backend)
	assert.Equal(t, 3, pc.Tree.MaxDepth)
	assert.Equal(t, cfg.DatasetPath, pc.DatasetPath)
}

func TestNew_SchemaError(t *testing.T) {
	path := filepath.Join("..", "dataset", "testdata", "missing_bedtime.csv")

	a, err := New(context.Background(), testConfig(path), observability.New(prometheus.NewRegistry()))
	assert.Nil(t, a)
	assert.True(t, errors.Is(err, dataset.ErrSchema))
}

func TestNew_SourceNotFound(t *testing.T) {
	a, err := New(context.Background(), testConfig("missing.csv"), observability.New(prometheus.NewRegistry()))
	assert.Nil(t, a)
	assert.True(t, errors.Is(err, dataset.ErrSourceNotFound))
}

func TestPredict_EndToEnd(t *testing.T) {
	a := newTestApp(t)

	features, first, err := a.Predict(context.Background(), advisor.DefaultInput())
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 4.5, 100, 30, 22.0}, features.Values())

	direct, err := a.Model.Predict([]float64{25, 4.5, 100, 30, 22.0})
	require.NoError(t, err)
	assert.Equal(t, direct, first.Label)

	for i := 0; i < 5; i++ {
		_, again, err := a.Predict(context.Background(), advisor.DefaultInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	counted := testutil.ToFloat64(a.Metrics.PredictionsTotal.WithLabelValues(string(first.Verdict)))
	assert.Equal(t, 6.0, counted)
}

func TestPredict_InvalidInput(t *testing.T) {
	a := newTestApp(t)

	in := advisor.DefaultInput()
	in.Hour = 13

	_, _, err := a.Predict(context.Background(), in)
	assert.ErrorIs(t, err, advisor.ErrInvalidInput)
}

func TestPredict_NoModel(t *testing.T) {
	a := &App{Metrics: observability.New(prometheus.NewRegistry())}

	_, _, err := a.Predict(context.Background(), advisor.DefaultInput())
	assert.ErrorIs(t, err, advisor.ErrModelUnavailable)
}
