package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strrl/sleepq/internal/app"
	"github.com/strrl/sleepq/internal/observability"
	"github.com/strrl/sleepq/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sleep quality dashboard",
	Long: `Load the dataset, train the classifier once and serve the prediction
dashboard together with its JSON API, health check and Prometheus metrics.
Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default: :8501)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	a, err := app.New(ctx, cfg, observability.Default())
	if err != nil {
		return fmt.Errorf("failed to start dashboard: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving dashboard on %s (model precision %.2f%%)\n", cfg.Addr, a.Stats.Precision*100)

	return server.Run(ctx, cfg.Addr, a)
}
