package confluence

import "math"

// Normalize maps a 0-100 indicator score to a signed unit direction:
// 0 -> -1 (maximal bearish), 50 -> 0 (neutral), 100 -> +1 (maximal bullish).
// Total function; callers sanitize raw input first.
func Normalize(value float64) float64 {
	normalized := (value - 50.0) / 50.0
	return clip(normalized, -1.0, 1.0)
}

// Sanitize clamps a raw component score into the valid [0, 100] domain.
// Non-finite input is replaced with neutral 50. The second return reports
// whether the value had to be changed.
func Sanitize(value float64) (float64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 50.0, true
	}
	if value < 0 {
		return 0.0, true
	}
	if value > 100 {
		return 100.0, true
	}
	return value, false
}

func clip(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
