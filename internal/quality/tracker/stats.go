package tracker

import (
	"fmt"
	"sort"
	"time"
)

// Aggregate summarizes the quality log over a trailing window
type Aggregate struct {
	Window        time.Duration  `json:"window"`
	Symbol        string         `json:"symbol,omitempty"`
	Count         int            `json:"count"`
	FilteredCount int            `json:"filtered_count"`
	FilteredRate  float64        `json:"filtered_rate"`
	ReasonCounts  map[string]int `json:"reason_counts"`

	MeanConfidence float64 `json:"mean_confidence"`
	P50Confidence  float64 `json:"p50_confidence"`
	P90Confidence  float64 `json:"p90_confidence"`

	MeanDisagreement float64 `json:"mean_disagreement"`
	P50Disagreement  float64 `json:"p50_disagreement"`
	P90Disagreement  float64 `json:"p90_disagreement"`
}

// Statistics scans the trailing window and aggregates filter behavior,
// optionally restricted to one symbol. An empty window yields a
// zero-valued aggregate, not an error.
func (t *Tracker) Statistics(window time.Duration, symbol string) (Aggregate, error) {
	agg := Aggregate{
		Window:       window,
		Symbol:       symbol,
		ReasonCounts: make(map[string]int),
	}

	now := time.Now().UTC()
	confidences := make([]float64, 0, 256)
	disagreements := make([]float64, 0, 256)

	err := t.sink.Scan(now.Add(-window), now, symbol, func(rec Record) error {
		agg.Count++
		if rec.Filtered {
			agg.FilteredCount++
		}
		agg.ReasonCounts[rec.FilterReason]++
		confidences = append(confidences, rec.Confidence)
		disagreements = append(disagreements, rec.Disagreement)
		return nil
	})
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to scan quality log: %w", err)
	}

	if agg.Count == 0 {
		return agg, nil
	}

	agg.FilteredRate = float64(agg.FilteredCount) / float64(agg.Count)
	agg.MeanConfidence = mean(confidences)
	agg.P50Confidence = percentile(confidences, 0.50)
	agg.P90Confidence = percentile(confidences, 0.90)
	agg.MeanDisagreement = mean(disagreements)
	agg.P50Disagreement = percentile(disagreements, 0.50)
	agg.P90Disagreement = percentile(disagreements, 0.90)

	return agg, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile uses nearest-rank on a sorted copy; p in (0, 1]
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
