package quality

import (
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
)

// FilterReason explains why a result was suppressed
type FilterReason string

const (
	ReasonNone             FilterReason = "none"
	ReasonLowConfidence    FilterReason = "low_confidence"
	ReasonHighDisagreement FilterReason = "high_disagreement"
)

// Decision is the pass/suppress outcome for one confluence result.
// Exactly one reason is produced even when both conditions hold.
type Decision struct {
	Filtered bool         `json:"filtered"`
	Reason   FilterReason `json:"filter_reason"`
}

// Decide applies the signal-quality thresholds to a confluence result.
// The rules fire in fixed order, low_confidence first: a result failing
// both checks reports low_confidence. Pure function with no side effects.
func Decide(result confluence.Result, minConfidence, maxDisagreement float64) Decision {
	if result.Confidence < minConfidence {
		return Decision{Filtered: true, Reason: ReasonLowConfidence}
	}
	if result.Disagreement > maxDisagreement {
		return Decision{Filtered: true, Reason: ReasonHighDisagreement}
	}
	return Decision{Filtered: false, Reason: ReasonNone}
}
