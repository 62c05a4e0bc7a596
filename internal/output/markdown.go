package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/model"
	"github.com/strrl/sleepq/internal/pipeline"
)

// ReportInput is everything a precision report file describes.
type ReportInput struct {
	DatasetPath string
	Summary     dataset.Summary
	Stats       pipeline.Stats
	Report      model.Report
	TestSize    float64
	Seed        int64
	GeneratedAt time.Time
}

type Generator struct {
	outputPath string
}

func NewGenerator(outputPath string) *Generator {
	return &Generator{
		outputPath: outputPath,
	}
}

// Generate writes the markdown report and returns the path written.
func (g *Generator) Generate(in ReportInput) (string, error) {
	if dir := filepath.Dir(g.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(g.outputPath, []byte(Markdown(in)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return g.outputPath, nil
}

func Markdown(in ReportInput) string {
	var sb strings.Builder
	sb.WriteString("# Sleep Quality Model Report\n\n")
	sb.WriteString(fmt.Sprintf("**Dataset:** %s\n", in.DatasetPath))
	if !in.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("**Generated:** %s\n", in.GeneratedAt.Format("2006-01-02 15:04")))
	}
	sb.WriteString(fmt.Sprintf("**Records:** %d (%d good, %d poor)\n", in.Summary.Records, in.Summary.Good, in.Summary.Poor))
	sb.WriteString(fmt.Sprintf("**Split:** %d train / %d test (test size %.2f, seed %d)\n", in.Stats.TrainRecords, in.Stats.TestRecords, in.TestSize, in.Seed))
	sb.WriteString(fmt.Sprintf("**Classifier:** %s\n", in.Stats.Backend))
	if in.Stats.Leaves > 0 {
		sb.WriteString(fmt.Sprintf("**Tree:** depth %d, %d leaves\n", in.Stats.Depth, in.Stats.Leaves))
	}
	sb.WriteString("\n")

	sb.WriteString("## Precision\n\n")
	sb.WriteString(PrecisionLine(in.Report.Precision) + "\n\n")

	sb.WriteString("## Classification Report\n\n")
	sb.WriteString("| Class | Precision | Recall | F1 | Support |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, c := range in.Report.Classes {
		sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %d |\n", c.Label, c.Precision, c.Recall, c.F1, c.Support))
	}
	sb.WriteString(fmt.Sprintf("| macro avg | %.2f | %.2f | %.2f | %d |\n",
		in.Report.MacroAvg.Precision, in.Report.MacroAvg.Recall, in.Report.MacroAvg.F1, in.Report.MacroAvg.Support))
	sb.WriteString(fmt.Sprintf("| weighted avg | %.2f | %.2f | %.2f | %d |\n\n",
		in.Report.WeightedAvg.Precision, in.Report.WeightedAvg.Recall, in.Report.WeightedAvg.F1, in.Report.WeightedAvg.Support))
	sb.WriteString(fmt.Sprintf("**Accuracy:** %.2f\n", in.Report.Accuracy))

	return sb.String()
}
