package spatial

import (
	"math"
)

// CircularMean calculates the mean of circular data (angles in radians)
// weights: optional weights for each angle (can be nil for equal weights)
// Returns mean angle in radians
func CircularMean(angles []float64, weights []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	if weights == nil {
		for _, angle := range angles {
			sumSin += math.Sin(angle)
			sumCos += math.Cos(angle)
		}
	} else {
		for i, angle := range angles {
			w := 1.0
			if i < len(weights) {
				w = weights[i]
			}
			sumSin += w * math.Sin(angle)
			sumCos += w * math.Cos(angle)
		}
	}

	return math.Atan2(sumSin, sumCos)
}

// CircularMeanDegrees calculates the mean of circular data in degrees
func CircularMeanDegrees(angles []float64, weights []float64) float64 {
	radians := make([]float64, len(angles))
	for i, angle := range angles {
		radians[i] = angle * math.Pi / 180
	}
	meanRad := CircularMean(radians, weights)
	meanDeg := meanRad * 180 / math.Pi
	if meanDeg < 0 {
		meanDeg += 360
	}
	return meanDeg
}

// AngularDifferenceDegrees calculates the smallest difference between two angles (degrees)
// Result is in range [-180, 180]
func AngularDifferenceDegrees(angle1, angle2 float64) float64 {
	diff := angle2 - angle1
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	return diff
}
