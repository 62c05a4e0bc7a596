package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/strrl/sleepq/internal/config"
)

var (
	configPath  string
	datasetPath string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sleepq",
	Short: "Predict sleep quality from daily habits",
	Long: `sleepq trains a decision tree on a sleep habits dataset and predicts whether
a given combination of age, screen time, caffeine, exercise and bedtime leads
to good or poor sleep. It serves an interactive dashboard, answers one-off
predictions and reports the model's held-out precision.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default: $SLEEPQ_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "Path to the sleep dataset CSV (default: sleep_data.csv)")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if datasetPath != "" {
		loaded.DatasetPath = datasetPath
	}
	cfg = loaded

	initLogger(cfg)
	return nil
}

func initLogger(c config.Config) {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
