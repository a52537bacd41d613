package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/application/pipeline"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/config/weights"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/gates"
)

func runEval(cmd *cobra.Command, args []string) error {
	scoresPath, _ := cmd.Flags().GetString("scores")
	symbol, _ := cmd.Flags().GetString("symbol")
	weightsPath, _ := cmd.Flags().GetString("weights")
	filterPath, _ := cmd.Flags().GetString("filter")

	data, err := os.ReadFile(scoresPath)
	if err != nil {
		return fmt.Errorf("failed to read scores file: %w", err)
	}

	var scores confluence.ComponentScores
	if err := yaml.Unmarshal(data, &scores); err != nil {
		return fmt.Errorf("failed to parse scores file: %w", err)
	}

	var provider *weights.Provider
	if weightsPath != "" {
		provider, err = weights.NewProviderFromFile(weightsPath)
		if err != nil {
			return err
		}
	} else {
		provider = weights.NewProvider(weights.LoadDefault())
	}

	thresholds := gates.NewThresholdsWithDefaults()
	if filterPath != "" {
		thresholds, err = gates.LoadThresholds(filterPath)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(provider, thresholds, nil)
	outcome := p.Evaluate(symbol, scores)

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
