// Package simplify reduces track geometry to a point budget using
// Ramer-Douglas-Peucker simplification with a binary search over the
// tolerance, then optionally compresses coordinate precision for
// transport.
package simplify

import (
	"math"
)

const (
	// toleranceSearchIterations bounds the binary search, so one call
	// costs at most this many RDP passes regardless of track size.
	toleranceSearchIterations = 10

	// maxToleranceFraction scales the bbox diagonal into the search
	// ceiling for the tolerance.
	maxToleranceFraction = 0.01

	// HardFloor and HardCeiling clamp every simplification target.
	HardFloor   = 300
	HardCeiling = 2500
)

// Indices simplifies the coordinate sequence down to roughly
// targetCount points and returns the kept indices into the original
// array, always including the first and last.
func Indices(coords [][3]float64, targetCount int) []int {
	n := len(coords)
	if n <= 2 || n <= targetCount {
		return allIndices(n)
	}
	if targetCount < 2 {
		targetCount = 2
	}

	maxTolerance := bboxDiagonal(coords) * maxToleranceFraction
	if maxTolerance <= 0 {
		// Degenerate geometry (all points identical): endpoints suffice.
		return []int{0, n - 1}
	}

	// The target is a point count, not a distance, so binary-search the
	// tolerance: too many points kept means the tolerance must grow.
	var best []int
	lo, hi := 0.0, maxTolerance
	for i := 0; i < toleranceSearchIterations; i++ {
		mid := (lo + hi) / 2
		kept := AtTolerance(coords, mid*mid)
		if len(kept) > targetCount {
			lo = mid
		} else {
			best = kept
			hi = mid
		}
	}

	if best == nil {
		best = AtTolerance(coords, maxTolerance*maxTolerance)
	}
	return best
}

// AtTolerance runs one Ramer-Douglas-Peucker pass and returns the kept
// indices. A point survives when its squared perpendicular distance to
// the chord of its local segment exceeds sqTolerance. The pass is
// iterative with an explicit stack so very long tracks cannot blow the
// call stack.
func AtTolerance(coords [][3]float64, sqTolerance float64) []int {
	n := len(coords)
	if n <= 2 {
		return allIndices(n)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxSqDist := 0.0
		index := 0
		for i := s.first + 1; i < s.last; i++ {
			d := sqSegmentDistance(coords[i], coords[s.first], coords[s.last])
			if d > maxSqDist {
				maxSqDist = d
				index = i
			}
		}

		if maxSqDist > sqTolerance {
			keep[index] = true
			if index-s.first > 1 {
				stack = append(stack, span{s.first, index})
			}
			if s.last-index > 1 {
				stack = append(stack, span{index, s.last})
			}
		}
	}

	indices := make([]int, 0, n)
	for i, k := range keep {
		if k {
			indices = append(indices, i)
		}
	}
	return indices
}

// TargetForSize picks a point budget for a track of the given size.
// Small tracks keep the admin default; larger tracks shrink to a
// percentage with per-tier clamps. The hard floor and ceiling always
// apply, and a track is never upsampled beyond its original count.
func TargetForSize(originalCount, adminDefault int) int {
	var target int
	switch {
	case originalCount <= 2000:
		target = adminDefault
	case originalCount <= 10000:
		target = clamp(originalCount*15/100, 800, 1500)
	case originalCount <= 50000:
		target = clamp(originalCount*5/100, 1000, 2000)
	default:
		target = clamp(originalCount*3/100, 1200, 2500)
	}

	return ClampTarget(target, originalCount)
}

// ClampTarget applies the hard floor and ceiling to any point budget,
// explicit or derived, and never upsamples beyond the original count.
func ClampTarget(target, originalCount int) int {
	target = clamp(target, HardFloor, HardCeiling)
	if target > originalCount {
		target = originalCount
	}
	return target
}

// sqSegmentDistance returns the squared distance from p to the chord
// [a,b] in degree space, falling back to point distance when the chord
// is degenerate.
func sqSegmentDistance(p, a, b [3]float64) float64 {
	x, y := a[0], a[1]
	dx, dy := b[0]-x, b[1]-y

	if dx != 0 || dy != 0 {
		t := ((p[0]-x)*dx + (p[1]-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b[0], b[1]
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p[0] - x
	dy = p[1] - y
	return dx*dx + dy*dy
}

func bboxDiagonal(coords [][3]float64) float64 {
	minLon, minLat := coords[0][0], coords[0][1]
	maxLon, maxLat := minLon, minLat
	for _, c := range coords[1:] {
		if c[0] < minLon {
			minLon = c[0]
		}
		if c[0] > maxLon {
			maxLon = c[0]
		}
		if c[1] < minLat {
			minLat = c[1]
		}
		if c[1] > maxLat {
			maxLat = c[1]
		}
	}

	dLon := maxLon - minLon
	dLat := maxLat - minLat
	return math.Sqrt(dLon*dLon + dLat*dLat)
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
