package confluence

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/config/weights"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// ComponentScores maps indicator name to its 0-100 score for one cycle
type ComponentScores map[string]float64

// Result is the composite confluence output for a single evaluation.
// All bounded fields are clipped to their stated range before return.
type Result struct {
	// ScoreRaw is the signed weighted direction in [-1, 1]
	ScoreRaw float64 `json:"score_raw"`

	// ScoreBase is the undamped weighted-average score in [0, 100]
	ScoreBase float64 `json:"score_base"`

	// Score is the quality-adjusted score in [0, 100], pulled toward
	// neutral 50 in proportion to confidence
	Score float64 `json:"score"`

	// Consensus is the agreement measure exp(-2 * disagreement), in (0, 1]
	Consensus float64 `json:"consensus"`

	// Confidence is |ScoreRaw| * Consensus: directional strength and
	// agreement combined
	Confidence float64 `json:"confidence"`

	// Disagreement is the population variance of the normalized scores
	Disagreement float64 `json:"disagreement"`

	// QualityImpact is ScoreBase - Score, the damping applied
	QualityImpact float64 `json:"quality_impact"`
}

// NeutralResult is the safe fallback when an evaluation cannot complete:
// no actionable signal, zero confidence.
func NeutralResult() Result {
	return Result{
		ScoreRaw:      0,
		ScoreBase:     50,
		Score:         50,
		Consensus:     0,
		Confidence:    0,
		Disagreement:  0,
		QualityImpact: 0,
	}
}

// Scorer computes composite confluence results from named component scores
type Scorer struct{}

// NewScorer creates a new confluence scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Evaluate fuses the named component scores into one composite result
// using the supplied weight table. Pure with respect to its inputs and
// deterministic: identical input yields a bit-identical Result. Inputs
// that would make the math blow up are sanitized, and an internal panic
// degrades to the neutral result rather than reaching the caller.
func (s *Scorer) Evaluate(scores ComponentScores, table *weights.Table) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.RecordNeutralDefault()
			log.Error().
				Interface("panic", r).
				Msg("Confluence evaluation failed, degrading to neutral result")
			result = NeutralResult()
		}
	}()

	if len(scores) == 0 || table == nil {
		telemetry.RecordNeutralDefault()
		return NeutralResult()
	}

	// Iterate in sorted name order so float accumulation is deterministic
	// and repeated calls are bit-identical
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	// Step 1: sanitize and normalize every component
	normalized := make([]float64, 0, len(scores))
	weightedSum := 0.0
	for _, name := range names {
		value := scores[name]
		clean, changed := Sanitize(value)
		if changed {
			telemetry.RecordSanitizedInput()
			log.Warn().
				Str("component", name).
				Float64("raw", value).
				Float64("sanitized", clean).
				Msg("Component score outside [0,100], sanitized")
		}

		n := Normalize(clean)
		normalized = append(normalized, n)

		// Step 2: weighted direction; unknown names carry weight 0
		weightedSum += table.Weight(name) * n
	}
	weightedSum = clip(weightedSum, -1.0, 1.0)

	// Step 3: disagreement is the unweighted population variance of the
	// normalized values; a single component agrees with itself perfectly
	disagreement := populationVariance(normalized)

	// Step 4: consensus decays from 1.0 toward 0 as spread increases
	consensus := math.Exp(-2.0 * disagreement)

	// Step 5: confidence requires both a decisive direction and agreement
	confidence := clip(math.Abs(weightedSum)*consensus, 0.0, 1.0)

	// Step 6: base score on the 0-100 scale
	scoreBase := clip(weightedSum*50.0+50.0, 0.0, 100.0)

	// Step 7: hybrid quality adjustment. Confidence acts as a continuous
	// dimmer: the signal is pulled toward neutral 50 in proportion to how
	// little the engine trusts it, never discarded outright.
	deviation := scoreBase - 50.0
	score := clip(50.0+deviation*confidence, 0.0, 100.0)

	return Result{
		ScoreRaw:      weightedSum,
		ScoreBase:     scoreBase,
		Score:         score,
		Consensus:     consensus,
		Confidence:    confidence,
		Disagreement:  disagreement,
		QualityImpact: scoreBase - score,
	}
}

// populationVariance returns the population variance of values.
// Variance of an empty or single-element set is 0.
func populationVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(values))
}
