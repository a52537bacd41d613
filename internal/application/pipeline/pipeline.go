package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/config/weights"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/gates"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// Outcome bundles what downstream signal generation acts on: the full
// confluence result plus the filter decision. Downstream only acts when
// Decision.Filtered is false.
type Outcome struct {
	Symbol   string            `json:"symbol"`
	Result   confluence.Result `json:"result"`
	Decision quality.Decision  `json:"decision"`
}

// Pipeline runs the per-cycle evaluation path: score the component set,
// decide pass/suppress, and log the outcome regardless of the decision.
type Pipeline struct {
	scorer     *confluence.Scorer
	weights    *weights.Provider
	thresholds gates.QualityThresholds
	tracker    *tracker.Tracker
}

// New assembles a pipeline. The tracker may be nil for callers that only
// want scoring and filtering (logging is then skipped).
func New(provider *weights.Provider, thresholds gates.QualityThresholds, qt *tracker.Tracker) *Pipeline {
	return &Pipeline{
		scorer:     confluence.NewScorer(),
		weights:    provider,
		thresholds: thresholds,
		tracker:    qt,
	}
}

// Evaluate scores one symbol's component set for the current cycle.
// Always produces an outcome; degraded input degrades toward neutral
// rather than failing.
func (p *Pipeline) Evaluate(symbol string, scores confluence.ComponentScores) Outcome {
	start := time.Now()

	if min := p.weights.MinActiveComponents(); len(scores) < min {
		log.Warn().
			Str("symbol", symbol).
			Int("active", len(scores)).
			Int("min", min).
			Msg("Active component count below configured minimum")
	}
	telemetry.GetMetrics().ActiveComponents.Set(float64(len(scores)))

	result := p.scorer.Evaluate(scores, p.weights.Table())
	decision := quality.Decide(result, p.thresholds.MinConfidence, p.thresholds.MaxDisagreement)

	if p.tracker != nil {
		p.tracker.RecordEvaluation(symbol, result, decision)
	}

	outcome := "passed"
	if decision.Filtered {
		outcome = "filtered"
	}
	telemetry.GetMetrics().Evaluations.WithLabelValues(outcome).Inc()
	telemetry.GetMetrics().EvalDuration.Observe(time.Since(start).Seconds())

	log.Debug().
		Str("symbol", symbol).
		Float64("score", result.Score).
		Float64("score_base", result.ScoreBase).
		Float64("confidence", result.Confidence).
		Float64("disagreement", result.Disagreement).
		Bool("filtered", decision.Filtered).
		Str("reason", string(decision.Reason)).
		Msg("Confluence evaluation")

	return Outcome{Symbol: symbol, Result: result, Decision: decision}
}

// EvaluateBatch scores many symbols concurrently. Evaluations share only
// the read-only weight table, so one goroutine per symbol is safe; no
// cross-symbol ordering is guaranteed.
func (p *Pipeline) EvaluateBatch(ctx context.Context, batch map[string]confluence.ComponentScores) []Outcome {
	outcomes := make([]Outcome, 0, len(batch))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for symbol, scores := range batch {
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Msg("Batch evaluation cancelled")
			wg.Wait()
			return outcomes
		default:
		}

		wg.Add(1)
		go func(symbol string, scores confluence.ComponentScores) {
			defer wg.Done()
			outcome := p.Evaluate(symbol, scores)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(symbol, scores)
	}

	wg.Wait()
	return outcomes
}
