// Package wind maps sparse weather samples back onto every track point
// and derives a per-point wind-impact factor from track bearing and
// wind vector.
package wind

import (
	"math"

	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/spatial"
)

const (
	// baselineCruiseSpeedMS scales the along-track wind component into
	// an impact factor.
	baselineCruiseSpeedMS = 15.0

	// distanceWeight converts planar degrees into score units against
	// hours of time difference. Empirical; kept as-is for
	// compatibility with existing enrichment data.
	distanceWeight = 1000.0
)

// Options configures wind interpolation.
type Options struct {
	Enabled bool
	// Density processes every Nth point; valid values are 1, 3 and 5.
	Density int
}

// Interpolate maps the weather features onto every track point. With
// wind analysis disabled or no weather data present the result is an
// all-nil series of track length. Skipped and unmatched points are
// forward- then backward-filled, so only tracks with zero valid samples
// stay entirely nil.
func Interpolate(series *models.TrackSeries, collection *models.WeatherFeatureCollection, opts Options) *models.WindSeries {
	n := series.Len()
	ws := models.NewWindSeries(n)

	if !opts.Enabled || collection == nil || len(collection.Features) == 0 || n == 0 {
		return ws
	}

	density := opts.Density
	if density != 1 && density != 3 && density != 5 {
		density = 1
	}

	for i := 0; i < n; i += density {
		interpolatePoint(series, collection, ws, i)
	}
	// The final point always gets a value regardless of density.
	if (n-1)%density != 0 {
		interpolatePoint(series, collection, ws, n-1)
	}

	fill(ws.WindSpeeds)
	fill(ws.WindDirections)
	fill(ws.WindImpacts)

	return ws
}

func interpolatePoint(series *models.TrackSeries, collection *models.WeatherFeatureCollection, ws *models.WindSeries, i int) {
	lon := series.Coordinates[i][0]
	lat := series.Coordinates[i][1]
	ts := series.Timestamps[i]

	speed := nearestValue(collection, lon, lat, ts, func(p *models.WeatherProperties) *float64 {
		return p.WindSpeedKmh
	})
	direction := nearestValue(collection, lon, lat, ts, func(p *models.WeatherProperties) *float64 {
		return p.WindDirectionDeg
	})

	ws.WindSpeeds[i] = speed
	ws.WindDirections[i] = direction

	// The impact factor needs a previous point for the track bearing.
	if i == 0 || speed == nil || direction == nil {
		return
	}

	prevLon := series.Coordinates[i-1][0]
	prevLat := series.Coordinates[i-1][1]
	impact := ImpactFactor(prevLat, prevLon, lat, lon, *speed, *direction)
	ws.WindImpacts[i] = &impact
}

// nearestValue selects the value of the minimum-score feature for one
// property. Score mixes planar degrees and hours with fixed weights;
// features missing the property are skipped, so speed and direction may
// come from different features.
func nearestValue(collection *models.WeatherFeatureCollection, lon, lat float64, ts *int64, pick func(*models.WeatherProperties) *float64) *float64 {
	var best *float64
	bestScore := math.Inf(1)

	for i := range collection.Features {
		f := &collection.Features[i]
		value := pick(&f.Properties)
		if value == nil {
			continue
		}

		score := spatial.PlanarDistanceDeg(lat, lon, f.Geometry.Coordinates[1], f.Geometry.Coordinates[0]) * distanceWeight
		if ts != nil && f.Properties.TimeUnix != nil {
			dt := float64(*ts-*f.Properties.TimeUnix) / 3600
			score += math.Abs(dt)
		}

		if score < bestScore {
			bestScore = score
			best = value
		}
	}

	return best
}

// ImpactFactor computes the wind-impact factor for a track segment from
// its forward azimuth and the wind vector. Positive along-track wind
// (tailwind) pushes the factor above 1, headwind below 1. Deliberately
// unclamped so strong winds remain visible.
func ImpactFactor(prevLat, prevLon, lat, lon, windSpeedKmh, windDirectionDeg float64) float64 {
	bearing := spatial.Bearing(prevLat, prevLon, lat, lon)
	windSpeedMS := windSpeedKmh / 3.6

	relativeAngle := spatial.AngularDifferenceDegrees(bearing, windDirectionDeg) * math.Pi / 180
	component := windSpeedMS * math.Cos(relativeAngle)

	return 1.0 + component/baselineCruiseSpeedMS
}

// fill propagates known values forward then backward over nil gaps.
func fill(values []*float64) {
	var last *float64
	for i, v := range values {
		if v != nil {
			last = v
		} else if last != nil {
			values[i] = last
		}
	}

	last = nil
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			last = values[i]
		} else if last != nil {
			values[i] = last
		}
	}
}
