package stats

import (
	"sort"
)

// Median calculates the median of a slice of values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MedianFilter applies a centered moving-median filter of the given
// window size. The window is clamped at both edges, so the output has
// the same length as the input. Even window sizes are widened to the
// next odd size.
func MedianFilter(values []float64, window int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}
	if window%2 == 0 {
		window++
	}

	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		out[i] = Median(values[lo:hi])
	}

	return out
}
