package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strrl/sleepq/internal/config"
	"github.com/strrl/sleepq/internal/dataset"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and built-in model defaults",
	Long: `Print the sleepq build, the dataset it reads by default and the
classifier settings a fresh configuration starts from.`,
	// Printing the version needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		defaults := config.Default()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sleepq %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		fmt.Fprintf(out, "  Dataset:    %s\n", defaults.DatasetPath)
		fmt.Fprintf(out, "  Features:   %s\n", strings.Join(dataset.FeatureColumns, ", "))
		fmt.Fprintf(out, "  Label:      %s\n", dataset.ColumnSleepQuality)
		fmt.Fprintf(out, "  Classifier: %s, gini\n", defaults.Model.Backend)
		fmt.Fprintf(out, "  Split:      test size %.2f, seed %d\n", defaults.Model.TestSize, defaults.Model.Seed)
		fmt.Fprintf(out, "  Dashboard:  %s\n", defaults.Addr)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
