package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

const (
	appName = "confluence"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	telemetry.InitializeMetrics()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Signal confluence and quality-adjusted scoring engine",
		Version: version,
		Long: `Confluence fuses independent indicator scores into one composite
directional signal, quantifies how much the inputs agree, and damps the
signal toward neutral in proportion to how little it is trusted.`,
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the monitoring HTTP server",
		Long:  "Starts the read-only HTTP server with /health, /metrics, /stats, and /effectiveness endpoints",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("host", "127.0.0.1", "Bind host")
	monitorCmd.Flags().Int("port", 8080, "Bind port")
	monitorCmd.Flags().String("log-dir", "out/quality", "Quality log directory")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Run a one-shot confluence evaluation",
		Long:  "Evaluates a YAML file of component scores through the scorer and filter and prints the outcome",
		RunE:  runEval,
	}
	evalCmd.Flags().String("scores", "", "YAML file mapping component name to 0-100 score (required)")
	evalCmd.Flags().String("symbol", "BTC-USD", "Symbol label for the evaluation")
	evalCmd.Flags().String("weights", "", "Weights config path (built-in defaults when empty)")
	evalCmd.Flags().String("filter", "", "Filter thresholds config path (0.3/0.3 defaults when empty)")
	evalCmd.MarkFlagRequired("scores")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print windowed quality-log statistics",
		Long:  "Scans the quality log over a trailing window and prints the aggregate and filter-effectiveness report",
		RunE:  runStats,
	}
	statsCmd.Flags().String("log-dir", "out/quality", "Quality log directory")
	statsCmd.Flags().String("symbol", "", "Restrict to one symbol")
	addWindowFlag(statsCmd.Flags())

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// addWindowFlag keeps the window flag consistent across subcommands
func addWindowFlag(flags *pflag.FlagSet) {
	flags.Duration("window", 24*time.Hour, "Trailing window to aggregate")
}
