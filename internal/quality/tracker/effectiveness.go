package tracker

import (
	"fmt"
	"time"
)

// SubsetStats summarizes one side of the filter split
type SubsetStats struct {
	Count            int     `json:"count"`
	MeanScore        float64 `json:"mean_score"`
	MeanConfidence   float64 `json:"mean_confidence"`
	MeanDisagreement float64 `json:"mean_disagreement"`
}

// EffectivenessReport compares the filtered and passed subsets over a
// window. A healthy filter shows materially higher mean confidence in the
// passed subset than in the filtered one.
type EffectivenessReport struct {
	Window           time.Duration `json:"window"`
	Passed           SubsetStats   `json:"passed"`
	Filtered         SubsetStats   `json:"filtered"`
	ConfidenceSpread float64       `json:"confidence_spread"` // passed mean - filtered mean
	Separating       bool          `json:"separating"`        // spread > 0 with both subsets populated
}

// FilterEffectiveness scans the trailing window and reports how well the
// filter separates high-quality from low-quality signals. Analytics only;
// not used by the real-time decision path.
func (t *Tracker) FilterEffectiveness(window time.Duration) (EffectivenessReport, error) {
	report := EffectivenessReport{Window: window}

	var (
		passedConf, passedDis, passedScore       []float64
		filteredConf, filteredDis, filteredScore []float64
	)

	now := time.Now().UTC()
	err := t.sink.Scan(now.Add(-window), now, "", func(rec Record) error {
		if rec.Filtered {
			filteredConf = append(filteredConf, rec.Confidence)
			filteredDis = append(filteredDis, rec.Disagreement)
			filteredScore = append(filteredScore, rec.Score)
		} else {
			passedConf = append(passedConf, rec.Confidence)
			passedDis = append(passedDis, rec.Disagreement)
			passedScore = append(passedScore, rec.Score)
		}
		return nil
	})
	if err != nil {
		return EffectivenessReport{}, fmt.Errorf("failed to scan quality log: %w", err)
	}

	report.Passed = SubsetStats{
		Count:            len(passedConf),
		MeanScore:        mean(passedScore),
		MeanConfidence:   mean(passedConf),
		MeanDisagreement: mean(passedDis),
	}
	report.Filtered = SubsetStats{
		Count:            len(filteredConf),
		MeanScore:        mean(filteredScore),
		MeanConfidence:   mean(filteredConf),
		MeanDisagreement: mean(filteredDis),
	}

	report.ConfidenceSpread = report.Passed.MeanConfidence - report.Filtered.MeanConfidence
	report.Separating = report.Passed.Count > 0 &&
		report.Filtered.Count > 0 &&
		report.ConfidenceSpread > 0

	return report, nil
}
