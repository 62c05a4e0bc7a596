// Package app builds the read-only state shared by every request: the loaded
// dataset, the fitted classifier and the bedtime trend.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strrl/sleepq/internal/advisor"
	"github.com/strrl/sleepq/internal/config"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
	"github.com/strrl/sleepq/internal/observability"
	"github.com/strrl/sleepq/internal/pipeline"
)

type App struct {
	Config  config.Config
	Engine  *advisor.Engine
	Model   model.Classifier
	Summary dataset.Summary
	Stats   pipeline.Stats
	Report  model.Report
	Trend   []dataset.TrendPoint
	// TrendErr is set when the trend series could not be computed. The chart
	// reports it; predictions still work.
	TrendErr error
	Metrics  *observability.Metrics
	BuiltAt  time.Time
}

// New loads the dataset, trains the classifier and computes the trend once.
// Load and schema errors are returned as is; nothing is retried.
func New(ctx context.Context, cfg config.Config, metrics *observability.Metrics) (*App, error) {
	start := time.Now()

	p, err := pipeline.New(PipelineConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	result, stats, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	metrics.TrainingDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.DatasetRecords.Set(float64(stats.TotalRecords))
	metrics.ModelPrecision.Set(stats.Precision)

	slog.Info("model trained",
		"dataset", cfg.DatasetPath,
		"records", stats.TotalRecords,
		"train", stats.TrainRecords,
		"test", stats.TestRecords,
		"backend", stats.Backend,
		"depth", stats.Depth,
		"leaves", stats.Leaves,
		"precision", stats.Precision,
		"duration", time.Since(start))

	a := &App{
		Config:  cfg,
		Engine:  advisor.NewEngine(result.Model),
		Model:   result.Model,
		Summary: dataset.Summarize(result.Records),
		Stats:   stats,
		Report:  result.Report,
		Metrics: metrics,
		BuiltAt: time.Now(),
	}

	a.Trend, a.TrendErr = p.Loader().Trend(ctx, cfg.DatasetPath)
	if a.TrendErr != nil {
		slog.Warn("bedtime trend unavailable", "error", a.TrendErr)
	}

	return a, nil
}

// PipelineConfig maps the model section of cfg onto a pipeline configuration.
func PipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		DatasetPath: cfg.DatasetPath,
		TestSize:    cfg.Model.TestSize,
		Seed:        cfg.Model.Seed,
		Backend:     cfg.Model.Backend,
		Tree: model.TreeConfig{
			MaxDepth:        cfg.Model.MaxDepth,
			MinSamplesSplit: cfg.Model.MinSamplesSplit,
			MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
		},
	}
}

// Predict validates raw input, normalizes it and runs the engine.
func (a *App) Predict(ctx context.Context, in advisor.Input) (dataset.FeatureVector, advisor.Result, error) {
	features, err := in.Features()
	if err != nil {
		return dataset.FeatureVector{}, advisor.Result{}, err
	}

	start := time.Now()
	result, err := a.Engine.Predict(ctx, features)
	a.Metrics.PredictionDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return features, advisor.Result{}, err
	}

	a.Metrics.PredictionsTotal.WithLabelValues(string(result.Verdict)).Inc()
	for _, advice := range result.Advisories {
		a.Metrics.AdvisoriesTotal.WithLabelValues(advice).Inc()
	}
	return features, result, nil
}
