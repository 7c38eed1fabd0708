package analysis

import "sort"

// Median returns the middle value of vals, averaging the two middle values
// for even-length input. Returns 0 for empty input; callers filter first.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Mean returns the arithmetic mean of vals, 0 for empty input.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// PercentDiff returns the percentage difference of current relative to
// historical. The bool is false when historical is zero.
func PercentDiff(current, historical float64) (float64, bool) {
	if historical == 0 {
		return 0, false
	}
	return (current - historical) / historical * 100, true
}
