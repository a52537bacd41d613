package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/config/weights"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/gates"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
)

func equalWeightProvider() *weights.Provider {
	return weights.NewProvider(&weights.WeightsConfig{
		Components: map[string]float64{
			"orderflow":       1.0,
			"orderbook":       1.0,
			"volume":          1.0,
			"price_structure": 1.0,
			"technical":       1.0,
			"sentiment":       1.0,
		},
		MinActiveComponents: 3,
	})
}

func TestPipeline_EvaluateLowConvictionFiltered(t *testing.T) {
	p := New(equalWeightProvider(), gates.NewThresholdsWithDefaults(), nil)

	outcome := p.Evaluate("BTC-USD", confluence.ComponentScores{
		"volume":          52.83,
		"technical":       44.72,
		"orderbook":       63.53,
		"orderflow":       44.37,
		"price_structure": 44.18,
		"sentiment":       70.66,
	})

	assert.Equal(t, "BTC-USD", outcome.Symbol)
	assert.InDelta(t, 50.21, outcome.Result.Score, 0.01)
	assert.True(t, outcome.Decision.Filtered)
	assert.Equal(t, quality.ReasonLowConfidence, outcome.Decision.Reason)
}

func TestPipeline_EvaluateStrongSignalPasses(t *testing.T) {
	p := New(equalWeightProvider(), gates.NewThresholdsWithDefaults(), nil)

	outcome := p.Evaluate("ETH-USD", confluence.ComponentScores{
		"volume":          75.0,
		"technical":       72.0,
		"orderbook":       78.0,
		"orderflow":       68.0,
		"price_structure": 80.0,
		"sentiment":       85.0,
	})

	assert.False(t, outcome.Decision.Filtered)
	assert.Equal(t, quality.ReasonNone, outcome.Decision.Reason)
	assert.InDelta(t, 63.54, outcome.Result.Score, 0.01)
}

func TestPipeline_ZeroWeightConfigBehavesLikeUniform(t *testing.T) {
	provider := weights.NewProvider(&weights.WeightsConfig{
		Components: map[string]float64{
			"orderflow": 0, "orderbook": 0, "volume": 0,
			"price_structure": 0, "technical": 0, "sentiment": 0,
		},
		MinActiveComponents: 3,
	})
	require.True(t, provider.Table().UniformFallback())

	p := New(provider, gates.NewThresholdsWithDefaults(), nil)

	outcome := p.Evaluate("BTC-USD", confluence.ComponentScores{
		"orderflow": 50.0, "orderbook": 50.0, "volume": 50.0,
		"price_structure": 50.0, "technical": 50.0, "sentiment": 50.0,
	})

	assert.Equal(t, 50.0, outcome.Result.Score)
	assert.Equal(t, 0.0, outcome.Result.Confidence)
	assert.Equal(t, 1.0, outcome.Result.Consensus)
	assert.Equal(t, 0.0, outcome.Result.QualityImpact)
}

func TestPipeline_RecordsEveryEvaluation(t *testing.T) {
	qt, err := tracker.New(tracker.DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	p := New(equalWeightProvider(), gates.NewThresholdsWithDefaults(), qt)

	// One passing, one filtered: both must land in the log
	p.Evaluate("BTC-USD", confluence.ComponentScores{
		"orderflow": 80.0, "orderbook": 82.0, "volume": 78.0,
		"price_structure": 81.0, "technical": 79.0, "sentiment": 83.0,
	})
	p.Evaluate("ETH-USD", confluence.ComponentScores{
		"orderflow": 50.0, "orderbook": 50.0, "volume": 50.0,
	})

	require.NoError(t, qt.Close())

	agg, err := qt.Statistics(time.Hour, "")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Count, "filtered and passed evaluations are both logged")
	assert.Equal(t, 1, agg.FilteredCount)
}

func TestPipeline_EvaluateBatch(t *testing.T) {
	p := New(equalWeightProvider(), gates.NewThresholdsWithDefaults(), nil)

	batch := make(map[string]confluence.ComponentScores, 20)
	for i := 0; i < 20; i++ {
		batch[fmt.Sprintf("SYM-%d", i)] = confluence.ComponentScores{
			"orderflow": 75.0, "orderbook": 74.0, "volume": 76.0,
			"price_structure": 75.0, "technical": 73.0, "sentiment": 77.0,
		}
	}

	outcomes := p.EvaluateBatch(context.Background(), batch)
	require.Len(t, outcomes, 20)

	seen := make(map[string]bool)
	for _, o := range outcomes {
		seen[o.Symbol] = true
		assert.False(t, o.Decision.Filtered)
	}
	assert.Len(t, seen, 20, "every symbol evaluated exactly once")
}

func TestPipeline_EvaluateBatchCancelled(t *testing.T) {
	p := New(equalWeightProvider(), gates.NewThresholdsWithDefaults(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := p.EvaluateBatch(ctx, map[string]confluence.ComponentScores{
		"BTC-USD": {"orderflow": 70.0},
	})
	assert.Empty(t, outcomes, "cancelled context stops new evaluations")
}
