package track

import (
	"github.com/bebablub/flyover-backend-go/internal/gpx"
	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/spatial"
	"github.com/bebablub/flyover-backend-go/internal/stats"
)

const (
	// movingSpeedThresholdMS separates moving segments from pauses.
	movingSpeedThresholdMS = 0.5

	// naiveClimbThresholdM filters jitter in the fallback gain pass.
	naiveClimbThresholdM = 0.5

	// climbCommitThresholdM is the minimum height of a smoothed climb
	// segment before it counts towards total gain.
	climbCommitThresholdM = 3.0

	// elevationFilterWindow is the centered median filter window.
	elevationFilterWindow = 7
)

// Process derives the per-point series and the ride statistics from a
// parsed point sequence in a single forward pass (plus the elevation
// smoothing passes).
func Process(points []gpx.Point) (*models.TrackSeries, models.Stats) {
	series := buildSeries(points)
	return series, computeStats(points, series)
}

// buildSeries converts the point list into parallel arrays. All arrays
// are index-aligned with the point list; biometric arrays are only
// emitted when at least one point carries the value.
func buildSeries(points []gpx.Point) *models.TrackSeries {
	n := len(points)
	series := &models.TrackSeries{
		Coordinates:        make([][3]float64, n),
		Timestamps:         make([]*int64, n),
		CumulativeDistance: make([]float64, n),
	}

	var hasHR, hasCad, hasTemp, hasPower bool
	for _, p := range points {
		hasHR = hasHR || p.HeartRate != nil
		hasCad = hasCad || p.Cadence != nil
		hasTemp = hasTemp || p.Temperature != nil
		hasPower = hasPower || p.Power != nil
	}
	if hasHR {
		series.HeartRates = make([]*float64, n)
	}
	if hasCad {
		series.Cadences = make([]*float64, n)
	}
	if hasTemp {
		series.Temperatures = make([]*float64, n)
	}
	if hasPower {
		series.Powers = make([]*float64, n)
	}

	var cumulative float64
	for i, p := range points {
		ele := 0.0
		if p.Elevation != nil {
			ele = *p.Elevation
		}
		series.Coordinates[i] = [3]float64{p.Lon, p.Lat, ele}

		if p.Time != nil {
			unix := p.Time.Unix()
			series.Timestamps[i] = &unix
		}

		if i > 0 {
			prev := points[i-1]
			cumulative += spatial.HaversineDistance(prev.Lat, prev.Lon, p.Lat, p.Lon)
		}
		series.CumulativeDistance[i] = cumulative

		if hasHR {
			series.HeartRates[i] = p.HeartRate
		}
		if hasCad {
			series.Cadences[i] = p.Cadence
		}
		if hasTemp {
			series.Temperatures[i] = p.Temperature
		}
		if hasPower {
			series.Powers[i] = p.Power
		}
	}

	return series
}

func computeStats(points []gpx.Point, series *models.TrackSeries) models.Stats {
	s := models.Stats{}
	if len(points) == 0 {
		return s
	}

	s.Bounds = [4]float64{points[0].Lon, points[0].Lat, points[0].Lon, points[0].Lat}

	var movingTime float64
	for i, p := range points {
		if p.Lon < s.Bounds[0] {
			s.Bounds[0] = p.Lon
		}
		if p.Lat < s.Bounds[1] {
			s.Bounds[1] = p.Lat
		}
		if p.Lon > s.Bounds[2] {
			s.Bounds[2] = p.Lon
		}
		if p.Lat > s.Bounds[3] {
			s.Bounds[3] = p.Lat
		}

		if p.Elevation != nil {
			if s.MinElevationM == nil || *p.Elevation < *s.MinElevationM {
				v := *p.Elevation
				s.MinElevationM = &v
			}
			if s.MaxElevationM == nil || *p.Elevation > *s.MaxElevationM {
				v := *p.Elevation
				s.MaxElevationM = &v
			}
		}

		if i == 0 {
			continue
		}
		prev := points[i-1]
		segment := series.CumulativeDistance[i] - series.CumulativeDistance[i-1]

		// Zero-duration segments contribute no moving time.
		if prev.Time != nil && p.Time != nil {
			elapsed := p.Time.Sub(*prev.Time).Seconds()
			if elapsed > 0 && segment/elapsed > movingSpeedThresholdMS {
				movingTime += elapsed
			}
		}
	}

	s.TotalDistanceM = series.CumulativeDistance[len(points)-1]
	s.MovingTimeS = movingTime
	if movingTime > 0 {
		s.AverageSpeedMS = s.TotalDistanceM / movingTime
	}
	s.ElevationGainM = elevationGain(points)

	return s
}

// elevationGain computes total climb in two passes. The naive pass sums
// raw positive deltas above a small threshold and only serves as a
// fallback when the signal is too short to smooth. The authoritative
// pass forward-fills gaps, median-filters the series and aggregates
// climb segments, discarding segments below the commit threshold.
func elevationGain(points []gpx.Point) float64 {
	elevations, known := fillElevations(points)
	if known == 0 {
		return 0
	}

	if known < elevationFilterWindow {
		return naiveGain(points)
	}

	smoothed := stats.MedianFilter(elevations, elevationFilterWindow)

	var total, segmentGain float64
	for i := 1; i < len(smoothed); i++ {
		delta := smoothed[i] - smoothed[i-1]
		if delta >= 0 {
			segmentGain += delta
			continue
		}
		if segmentGain >= climbCommitThresholdM {
			total += segmentGain
		}
		segmentGain = 0
	}
	// Trailing climb segment commits under the same threshold.
	if segmentGain >= climbCommitThresholdM {
		total += segmentGain
	}

	return total
}

func naiveGain(points []gpx.Point) float64 {
	var total float64
	var prev *float64
	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		if prev != nil {
			delta := *p.Elevation - *prev
			if delta > naiveClimbThresholdM {
				total += delta
			}
		}
		prev = p.Elevation
	}
	return total
}

// fillElevations forward-fills missing elevations, seeding leading gaps
// from the first known value. Returns the filled series and the number
// of points that actually carried an elevation.
func fillElevations(points []gpx.Point) ([]float64, int) {
	filled := make([]float64, len(points))
	known := 0

	last := 0.0
	for i, p := range points {
		if p.Elevation != nil {
			last = *p.Elevation
			known++
		}
		filled[i] = last
	}

	if known == 0 {
		return filled, 0
	}

	// Seed leading gaps from the first present value.
	first := 0.0
	for _, p := range points {
		if p.Elevation != nil {
			first = *p.Elevation
			break
		}
	}
	for i, p := range points {
		if p.Elevation != nil {
			break
		}
		filled[i] = first
	}

	return filled, known
}
