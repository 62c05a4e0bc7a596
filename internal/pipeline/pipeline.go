package pipeline

import (
	"context"
	"fmt"

	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
)

type Pipeline struct {
	loader *dataset.Loader
	config Config
}

type Config struct {
	DatasetPath string
	TestSize    float64
	Seed        int64
	// Backend names the classifier; see model.NewClassifier.
	Backend     string
	Tree        model.TreeConfig
}

func New(cfg Config) (*Pipeline, error) {
	loader, err := dataset.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}

	return &Pipeline{
		loader: loader,
		config: cfg,
	}, nil
}

type Stats struct {
	TotalRecords int     `json:"total_records"`
	TrainRecords int     `json:"train_records"`
	TestRecords  int     `json:"test_records"`
	Backend      string  `json:"backend"`
	Depth        int     `json:"depth"`
	Leaves       int     `json:"leaves"`
	Precision    float64 `json:"precision"`
	Accuracy     float64 `json:"accuracy"`
}

type Result struct {
	Records   []dataset.Record
	Model     model.Classifier
	Partition model.Partition
	Report    model.Report
}

// Run loads the dataset and fits the classifier on it.
func (p *Pipeline) Run(ctx context.Context) (*Result, Stats, error) {
	records, err := p.loader.Load(ctx, p.config.DatasetPath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("load failed: %w", err)
	}

	return Fit(records, p.config)
}

// Fit splits records, trains the configured classifier on the training
// partition and evaluates it on the held-out partition. Depth and leaf counts
// are only reported by backends that expose their tree.
func Fit(records []dataset.Record, cfg Config) (*Result, Stats, error) {
	stats := Stats{
		TotalRecords: len(records),
	}

	partition, err := model.Split(len(records), cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, stats, fmt.Errorf("split failed: %w", err)
	}
	stats.TrainRecords = len(partition.Train)
	stats.TestRecords = len(partition.Test)

	x, y := dataset.Matrix(records)
	xTrain, yTrain := model.Select(x, y, partition.Train)
	xTest, yTest := model.Select(x, y, partition.Test)

	classifier, err := model.NewClassifier(cfg.Backend, cfg.Tree)
	if err != nil {
		return nil, stats, err
	}
	stats.Backend = cfg.Backend
	if stats.Backend == "" {
		stats.Backend = model.BackendGolearn
	}

	if err := classifier.Fit(xTrain, yTrain); err != nil {
		return nil, stats, fmt.Errorf("training failed: %w", err)
	}
	if s, ok := classifier.(model.Structured); ok {
		stats.Depth = s.Depth()
		stats.Leaves = s.Leaves()
	}

	yPred := make([]int, len(xTest))
	for i, row := range xTest {
		yPred[i], err = classifier.Predict(row)
		if err != nil {
			return nil, stats, fmt.Errorf("evaluation failed: %w", err)
		}
	}

	report, err := model.Evaluate(yTest, yPred)
	if err != nil {
		return nil, stats, fmt.Errorf("evaluation failed: %w", err)
	}
	stats.Precision = report.Precision
	stats.Accuracy = report.Accuracy

	return &Result{
		Records:   records,
		Model:     classifier,
		Partition: partition,
		Report:    report,
	}, stats, nil
}

// Loader exposes the dataset loader the pipeline reads through.
func (p *Pipeline) Loader() *dataset.Loader {
	return p.loader
}
