package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/strrl/sleepq/internal/app"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/output"
	"github.com/strrl/sleepq/internal/pipeline"
)

var precisionOut string

var precisionCmd = &cobra.Command{
	Use:   "precision",
	Short: "Report the classifier's precision on the held-out split",
	Long: `Split the dataset into train and test sets, fit the classifier on the
training part and print its precision for the positive class along with a
per-class classification report. Optionally writes the report as markdown.`,
	RunE: runPrecision,
}

func init() {
	rootCmd.AddCommand(precisionCmd)

	precisionCmd.Flags().StringVarP(&precisionOut, "out", "o", "", "Also write a markdown report to this path")
}

func runPrecision(cmd *cobra.Command, args []string) error {
	p, err := pipeline.New(app.PipelineConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	result, stats, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", output.PrecisionLine(result.Report.Precision))
	fmt.Fprintf(out, "\n%s\n", output.Title("Detailed Classification Report:"))
	fmt.Fprint(out, output.ClassificationReport(result.Report))

	if precisionOut == "" {
		return nil
	}

	path, err := output.NewGenerator(precisionOut).Generate(output.ReportInput{
		DatasetPath: cfg.DatasetPath,
		Summary:     dataset.Summarize(result.Records),
		Stats:       stats,
		Report:      result.Report,
		TestSize:    cfg.Model.TestSize,
		Seed:        cfg.Model.Seed,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	fmt.Fprintf(out, "\nWrote report to %s\n", path)

	return nil
}
