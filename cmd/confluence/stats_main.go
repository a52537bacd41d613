package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
)

func runStats(cmd *cobra.Command, args []string) error {
	logDir, _ := cmd.Flags().GetString("log-dir")
	symbol, _ := cmd.Flags().GetString("symbol")
	window, _ := cmd.Flags().GetDuration("window")

	qt, err := tracker.New(tracker.DefaultConfig(logDir))
	if err != nil {
		return err
	}
	defer qt.Close()

	agg, err := qt.Statistics(window, symbol)
	if err != nil {
		return err
	}

	report, err := qt.FilterEffectiveness(window)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"statistics":    agg,
		"effectiveness": report,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
