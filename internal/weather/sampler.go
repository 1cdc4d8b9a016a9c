package weather

import (
	"math"

	"github.com/bebablub/flyover-backend-go/internal/models"
)

const (
	// maxFallbackSamples caps index-based sampling when neither
	// distance nor time information is usable.
	maxFallbackSamples = 20

	// maxUniqueCells bounds external provider calls per enrichment.
	maxUniqueCells = 20

	// cellGrid is the deduplication grid in degrees.
	cellGrid = 0.1

	// kmPerDegreeLat is the planar degree approximation used for
	// multi-point offsets.
	kmPerDegreeLat = 111.0
)

// Options configures sampling and enrichment for one run.
type Options struct {
	Enabled              bool
	StepKm               float64
	StepMin              float64
	MultiPoint           bool
	MultiPointDistanceKm float64
}

// Cell is a 0.1-degree grid cell used to deduplicate provider fetches.
type Cell struct {
	Lat float64
	Lon float64
}

// CellFor returns the grid cell containing the coordinate.
func CellFor(lat, lon float64) Cell {
	return Cell{
		Lat: math.Round(lat/cellGrid) * cellGrid,
		Lon: math.Round(lon/cellGrid) * cellGrid,
	}
}

// SamplePositions chooses sparse sample positions along the track.
// Distance mode walks cumulative distance and emits a sample at every
// stepKm multiple; when the track has no usable distance it falls back
// to time steps, and with no timestamps either to at most 20 evenly
// spaced index samples. With multi-point enabled, every sample gains
// four compass offsets.
func SamplePositions(series *models.TrackSeries, opts Options) []models.WeatherSample {
	n := series.Len()
	if n == 0 {
		return nil
	}

	var samples []models.WeatherSample
	switch {
	case opts.StepKm > 0 && series.CumulativeDistance[n-1] > 0:
		samples = distanceSamples(series, opts.StepKm)
	case opts.StepMin > 0 && hasTimestamps(series):
		samples = timeSamples(series, opts.StepMin)
	default:
		samples = fallbackSamples(series)
	}

	if opts.MultiPoint && opts.MultiPointDistanceKm > 0 {
		samples = append(samples, multiPointSamples(samples, opts.MultiPointDistanceKm)...)
	}

	return samples
}

func distanceSamples(series *models.TrackSeries, stepKm float64) []models.WeatherSample {
	stepM := stepKm * 1000
	samples := []models.WeatherSample{sampleAt(series, 0, models.SampleDistance)}

	next := stepM
	for i, cum := range series.CumulativeDistance {
		if cum < next {
			continue
		}
		samples = append(samples, sampleAt(series, i, models.SampleDistance))
		// A long segment may cross several step boundaries at once.
		for next <= cum {
			next += stepM
		}
	}

	return samples
}

func timeSamples(series *models.TrackSeries, stepMin float64) []models.WeatherSample {
	stepS := int64(stepMin * 60)
	var samples []models.WeatherSample

	var last *int64
	for i, ts := range series.Timestamps {
		if ts == nil {
			continue
		}
		if last == nil || *ts-*last >= stepS {
			samples = append(samples, sampleAt(series, i, models.SampleTime))
			last = ts
		}
	}

	if len(samples) == 0 {
		return fallbackSamples(series)
	}
	return samples
}

func fallbackSamples(series *models.TrackSeries) []models.WeatherSample {
	n := series.Len()
	// Ceiling division, so the samples span the whole track instead of
	// bunching at the start when n barely exceeds the cap.
	step := (n + maxFallbackSamples - 1) / maxFallbackSamples
	if step < 1 {
		step = 1
	}

	var samples []models.WeatherSample
	for i := 0; i < n && len(samples) < maxFallbackSamples; i += step {
		samples = append(samples, sampleAt(series, i, models.SampleFallback))
	}
	return samples
}

// multiPointSamples emits four compass offsets per base sample using
// the planar degree approximation (1 degree latitude is about 111 km,
// longitude scaled by cos latitude).
func multiPointSamples(base []models.WeatherSample, distanceKm float64) []models.WeatherSample {
	dLat := distanceKm / kmPerDegreeLat

	var extra []models.WeatherSample
	for _, s := range base {
		dLon := distanceKm / (kmPerDegreeLat * math.Cos(s.Lat*math.Pi/180))
		offsets := []struct {
			direction string
			lat, lon  float64
		}{
			{"north", s.Lat + dLat, s.Lon},
			{"south", s.Lat - dLat, s.Lon},
			{"east", s.Lat, s.Lon + dLon},
			{"west", s.Lat, s.Lon - dLon},
		}

		for _, o := range offsets {
			extra = append(extra, models.WeatherSample{
				Lon:         o.lon,
				Lat:         o.lat,
				TimeUnix:    s.TimeUnix,
				SourceIndex: s.SourceIndex,
				Type:        models.SampleMultiPoint,
				Direction:   o.direction,
			})
		}
	}
	return extra
}

// DedupeByCell groups samples into 0.1-degree grid cells, capping the
// number of cells fetched. Cell order follows first appearance so the
// cap keeps the earliest parts of the track.
func DedupeByCell(samples []models.WeatherSample) ([]Cell, map[Cell][]models.WeatherSample) {
	var order []Cell
	groups := make(map[Cell][]models.WeatherSample)

	for _, s := range samples {
		cell := CellFor(s.Lat, s.Lon)
		if _, seen := groups[cell]; !seen {
			if len(order) >= maxUniqueCells {
				continue
			}
			order = append(order, cell)
		}
		groups[cell] = append(groups[cell], s)
	}

	return order, groups
}

func sampleAt(series *models.TrackSeries, i int, t models.SampleType) models.WeatherSample {
	return models.WeatherSample{
		Lon:         series.Coordinates[i][0],
		Lat:         series.Coordinates[i][1],
		TimeUnix:    series.Timestamps[i],
		SourceIndex: i,
		Type:        t,
	}
}

func hasTimestamps(series *models.TrackSeries) bool {
	for _, ts := range series.Timestamps {
		if ts != nil {
			return true
		}
	}
	return false
}
