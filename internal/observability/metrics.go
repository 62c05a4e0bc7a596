// Package observability holds the Prometheus metrics of the dashboard and the
// training pipeline.
//
// Metrics are registered once on the default registry and exposed on
// /metrics.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sleepq"

type Metrics struct {
	// PredictionsTotal counts predictions by verdict (good, poor).
	PredictionsTotal *prometheus.CounterVec

	// AdvisoriesTotal counts emitted advisories by message.
	AdvisoriesTotal *prometheus.CounterVec

	// ErrorsTotal counts failed requests by kind
	// (invalid_input, model_unavailable, render, internal).
	ErrorsTotal *prometheus.CounterVec

	// PredictionDurationSeconds measures a single inference call.
	PredictionDurationSeconds prometheus.Histogram

	// TrainingDurationSeconds measures dataset load plus fit.
	TrainingDurationSeconds prometheus.Histogram

	// DatasetRecords is the number of records the model was built from.
	DatasetRecords prometheus.Gauge

	// ModelPrecision is the held-out precision of the served model.
	ModelPrecision prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = newMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return defaultMetrics
}

// New registers a fresh set of metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		PredictionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by verdict.",
		}, []string{"verdict"}),
		AdvisoriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "advisories_total",
			Help:      "Advisories attached to poor verdicts, by message.",
		}, []string{"advice"}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Failed requests, by kind.",
		}, []string{"kind"}),
		PredictionDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in a single inference call.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		TrainingDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "training_duration_seconds",
			Help:      "Time spent loading the dataset and fitting the classifier.",
			Buckets:   prometheus.DefBuckets,
		}),
		DatasetRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_records",
			Help:      "Records in the loaded dataset.",
		}),
		ModelPrecision: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "model_precision",
			Help:      "Precision of the served model on the held-out split.",
		}),
	}
}
