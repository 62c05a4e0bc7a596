package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/strrl/sleepq/internal/advisor"
	"github.com/strrl/sleepq/internal/bedtime"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
)

var (
	colorTeal  = lipgloss.Color("#20B9B4")
	colorGood  = lipgloss.Color("#2CD7C7")
	colorPoor  = lipgloss.Color("#E74C3C")
	colorWarn  = lipgloss.Color("#F4D03F")
	colorMuted = lipgloss.Color("#2C4A54")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)

	goodBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGood).
		Foreground(colorGood).
		Bold(true).
		Padding(0, 1)
	poorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPoor).
		Foreground(colorPoor).
		Bold(true).
		Padding(0, 1)
)

// PrecisionLine formats precision as a percentage with two decimals.
func PrecisionLine(precision float64) string {
	return fmt.Sprintf("Model Precision: %.2f%%", precision*100)
}

// ClassificationReport lays out per-class metrics in the familiar
// precision/recall/f1-score/support table.
func ClassificationReport(r model.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support"))
	for _, c := range r.Classes {
		sb.WriteString(fmt.Sprintf("%12d %10.2f %10.2f %10.2f %10d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.MacroAvg.Support))
	sb.WriteString(fmt.Sprintf("%12s %10.2f %10.2f %10.2f %10d\n", "macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support))
	sb.WriteString(fmt.Sprintf("%12s %10.2f %10.2f %10.2f %10d\n", "weighted avg", r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support))
	return sb.String()
}

func Title(s string) string {
	return titleStyle.Render(s)
}

func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Verdict renders the prediction banner followed by any advisories.
func Verdict(features dataset.FeatureVector, result advisor.Result) string {
	var sb strings.Builder
	if result.Verdict == advisor.VerdictGood {
		sb.WriteString(goodBox.Render("Good sleep quality!"))
	} else {
		sb.WriteString(poorBox.Render("Poor sleep quality!"))
	}
	sb.WriteString("\n")
	sb.WriteString(Muted(fmt.Sprintf("Bedtime %s (%.1f)", bedtime.Format(features.Bedtime), features.Bedtime)))
	sb.WriteString("\n")
	for _, advice := range result.Advisories {
		sb.WriteString(warnStyle.Render("-> " + capitalize(advice)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
