package model

import (
	"fmt"
	"slices"
)

type ClassMetrics struct {
	Label     int     `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type Averages struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a per-class classification report. Precision is the precision of
// the positive label (1).
type Report struct {
	Precision   float64        `json:"precision"`
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    Averages       `json:"macro_avg"`
	WeightedAvg Averages       `json:"weighted_avg"`
}

// Evaluate compares true and predicted labels. Ratios with a zero denominator
// are reported as 0.
func Evaluate(yTrue, yPred []int) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("true labels (%d) and predictions (%d) differ", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Report{}, fmt.Errorf("nothing to evaluate")
	}

	labels := append(slices.Clone(yTrue), yPred...)
	slices.Sort(labels)
	labels = slices.Compact(labels)

	var report Report
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(yTrue))

	for _, label := range labels {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yPred[i] == label && yTrue[i] == label:
				tp++
			case yPred[i] == label:
				fp++
			case yTrue[i] == label:
				fn++
			}
		}

		m := ClassMetrics{
			Label:     label,
			Precision: ratio(tp, tp+fp),
			Recall:    ratio(tp, tp+fn),
			Support:   tp + fn,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)

		if label == 1 {
			report.Precision = m.Precision
		}
	}

	total := len(yTrue)
	for _, m := range report.Classes {
		report.MacroAvg.Precision += m.Precision / float64(len(report.Classes))
		report.MacroAvg.Recall += m.Recall / float64(len(report.Classes))
		report.MacroAvg.F1 += m.F1 / float64(len(report.Classes))

		w := float64(m.Support) / float64(total)
		report.WeightedAvg.Precision += m.Precision * w
		report.WeightedAvg.Recall += m.Recall * w
		report.WeightedAvg.F1 += m.F1 * w
	}
	report.MacroAvg.Support = total
	report.WeightedAvg.Support = total

	return report, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
