// Package advisor turns a feature vector into a sleep quality verdict and a
// list of rule-based suggestions.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
)

var tracer = otel.Tracer("sleepq/advisor")

var ErrModelUnavailable = errors.New("model unavailable: no trained classifier")

type Verdict string

const (
	VerdictGood Verdict = "good"
	VerdictPoor Verdict = "poor"
)

const (
	AdviceScreenTime = "reduce screen time before bed"
	AdviceCaffeine   = "lower caffeine intake (<200mg)"
	AdviceBedtime    = "try an earlier bedtime"
)

// Rule thresholds. A value strictly above the threshold triggers the advice.
const (
	ScreenTimeLimit = 5.0
	CaffeineLimit   = 200.0
	BedtimeLimit    = 23.0
)

type Result struct {
	Label      int      `json:"label"`
	Verdict    Verdict  `json:"verdict"`
	Advisories []string `json:"advisories"`
}

type Engine struct {
	classifier model.Classifier
}

func NewEngine(classifier model.Classifier) *Engine {
	return &Engine{classifier: classifier}
}

func (e *Engine) Predict(ctx context.Context, features dataset.FeatureVector) (Result, error) {
	_, span := tracer.Start(ctx, "advisor.Predict")
	defer span.End()

	if e == nil || e.classifier == nil {
		span.SetStatus(codes.Error, ErrModelUnavailable.Error())
		return Result{}, ErrModelUnavailable
	}

	label, err := e.classifier.Predict(features.Values())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, model.ErrNotFitted) {
			return Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return Result{}, fmt.Errorf("prediction failed: %w", err)
	}

	result := Result{
		Label:      label,
		Advisories: []string{},
	}
	if label == 1 {
		result.Verdict = VerdictGood
	} else {
		result.Verdict = VerdictPoor
		result.Advisories = Advise(features)
	}

	span.SetAttributes(
		attribute.Int("sleepq.label", label),
		attribute.String("sleepq.verdict", string(result.Verdict)),
		attribute.Int("sleepq.advisories", len(result.Advisories)),
	)
	return result, nil
}

// Advise evaluates every rule against the raw features. Rules are
// independent; each contributes at most one message.
func Advise(features dataset.FeatureVector) []string {
	advisories := []string{}
	if features.ScreenTimeHrs > ScreenTimeLimit {
		advisories = append(advisories, AdviceScreenTime)
	}
	if features.CaffeineMg > CaffeineLimit {
		advisories = append(advisories, AdviceCaffeine)
	}
	if features.Bedtime > BedtimeLimit {
		advisories = append(advisories, AdviceBedtime)
	}
	return advisories
}
