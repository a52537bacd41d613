package tracker

import (
	"time"

	"github.com/google/uuid"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
)

// Record is one line of the append-only quality log: the full confluence
// outcome for a single evaluation, filtered or not. Written exactly once,
// never mutated.
type Record struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	Score         float64   `json:"score"`
	ScoreBase     float64   `json:"score_base"`
	QualityImpact float64   `json:"quality_impact"`
	Consensus     float64   `json:"consensus"`
	Confidence    float64   `json:"confidence"`
	Disagreement  float64   `json:"disagreement"`
	Filtered      bool      `json:"filtered"`
	FilterReason  string    `json:"filter_reason"`
}

// NewRecord builds a Record from an evaluation outcome. Timestamps carry
// millisecond precision, matching the log format consumed downstream.
func NewRecord(symbol string, result confluence.Result, decision quality.Decision) Record {
	return Record{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC().Truncate(time.Millisecond),
		Symbol:        symbol,
		Score:         result.Score,
		ScoreBase:     result.ScoreBase,
		QualityImpact: result.QualityImpact,
		Consensus:     result.Consensus,
		Confidence:    result.Confidence,
		Disagreement:  result.Disagreement,
		Filtered:      decision.Filtered,
		FilterReason:  string(decision.Reason),
	}
}
