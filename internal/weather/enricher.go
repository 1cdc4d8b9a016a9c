package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/models"
)

// Enrichment error taxonomy. These are soft failures: the caller logs
// and records them, but the track import itself never fails because of
// weather.
var ErrNoGeometry = errors.New("weather: track has no geometry")

// fetchPaddingHours widens the requested date range around the sample
// timestamps.
const fetchPaddingHours = 12

// Enricher turns a track series into a weather feature collection by
// sampling positions, fetching hourly data per unique grid cell and
// extracting per-sample scalar values.
type Enricher struct {
	provider Provider
	log      *logrus.Entry
}

// NewEnricher creates an enricher on top of the given provider.
func NewEnricher(provider Provider, log *logrus.Logger) *Enricher {
	return &Enricher{
		provider: provider,
		log:      log.WithField("component", "weather-enricher"),
	}
}

// Enrich runs one enrichment pass. Disabled configuration is a no-op
// success (nil collection, nil error). The returned collection is a
// complete snapshot; callers replace any prior one wholesale.
func (e *Enricher) Enrich(ctx context.Context, series *models.TrackSeries, opts Options) (*models.WeatherFeatureCollection, *models.WeatherSummary, error) {
	if !opts.Enabled {
		return nil, nil, nil
	}
	if series == nil || series.Len() == 0 {
		return nil, nil, ErrNoGeometry
	}

	samples := SamplePositions(series, opts)
	if len(samples) == 0 {
		return nil, nil, ErrNoGeometry
	}

	startDate, endDate := fetchRange(samples)
	order, groups := DedupeByCell(samples)

	collection := &models.WeatherFeatureCollection{Type: "FeatureCollection"}
	for _, cell := range order {
		data, err := e.provider.Hourly(ctx, cell.Lat, cell.Lon, startDate, endDate)
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"lat":       cell.Lat,
				"lon":       cell.Lon,
				"startDate": startDate,
				"endDate":   endDate,
			}).WithError(err).Warn("weather fetch failed")
			return nil, nil, fmt.Errorf("fetch for cell (%.1f, %.1f): %w", cell.Lat, cell.Lon, err)
		}

		for _, sample := range groups[cell] {
			collection.Features = append(collection.Features, buildFeature(sample, data))
		}
	}

	summary := Summarize(collection)
	return collection, summary, nil
}

// fetchRange pads the sample time span by 12 hours on both sides and
// formats provider dates. Without any timestamps both dates are today.
func fetchRange(samples []models.WeatherSample) (string, string) {
	var minT, maxT *int64
	for _, s := range samples {
		if s.TimeUnix == nil {
			continue
		}
		if minT == nil || *s.TimeUnix < *minT {
			minT = s.TimeUnix
		}
		if maxT == nil || *s.TimeUnix > *maxT {
			maxT = s.TimeUnix
		}
	}

	const layout = "2006-01-02"
	if minT == nil {
		today := time.Now().UTC().Format(layout)
		return today, today
	}

	start := time.Unix(*minT, 0).UTC().Add(-fetchPaddingHours * time.Hour)
	end := time.Unix(*maxT, 0).UTC().Add(fetchPaddingHours * time.Hour)
	return start.Format(layout), end.Format(layout)
}

// buildFeature extracts the scalar values for one sample. A missing
// series or missing sample timestamp yields nil properties, not an
// error.
func buildFeature(sample models.WeatherSample, data *HourlyData) models.WeatherFeature {
	props := models.WeatherProperties{
		TimeUnix:   sample.TimeUnix,
		SampleType: sample.Type,
	}

	idx := closestHourIndex(data.Time, sample.TimeUnix)
	if idx >= 0 {
		props.RainMm = seriesValue(data, "rain", idx)
		props.Temperature2mC = seriesValue(data, "temperature_2m", idx)
		props.TemperatureC = seriesValue(data, "apparent_temperature", idx)
		props.WindSpeedKmh = seriesValue(data, "windspeed_10m", idx)
		props.WindDirectionDeg = seriesValue(data, "winddirection_10m", idx)
		props.CloudCoverPct = seriesValue(data, "cloudcover", idx)
		props.SnowfallCm = seriesValue(data, "snowfall", idx)
		props.DewPointC = seriesValue(data, "dewpoint_2m", idx)
		props.RelativeHumidityPct = seriesValue(data, "relativehumidity_2m", idx)
	}

	props.FogIntensity = FogIntensity(props.Temperature2mC, props.DewPointC, props.RelativeHumidityPct)

	return models.NewWeatherFeature(sample.Lon, sample.Lat, props)
}

// closestHourIndex truncates the target to the top of its hour and
// scans the time axis for the closest entry, resolving ties to the
// first closest found. Returns -1 with no target or empty axis.
func closestHourIndex(axis []int64, target *int64) int {
	if target == nil || len(axis) == 0 {
		return -1
	}

	hour := time.Unix(*target, 0).UTC().Truncate(time.Hour).Unix()

	best := -1
	var bestDiff int64
	for i, t := range axis {
		diff := t - hour
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}

func seriesValue(data *HourlyData, param string, idx int) *float64 {
	series, ok := data.Series[param]
	if !ok || idx >= len(series) {
		return nil
	}
	return series[idx]
}

// FogIntensity derives a 0..1 fog factor from the spread between the
// 2 m temperature and the dew point, boosted when relative humidity
// exceeds 90%. Requires both temperatures; otherwise nil.
func FogIntensity(temp2m, dewPoint, relHumidity *float64) *float64 {
	if temp2m == nil || dewPoint == nil {
		return nil
	}

	spread := *temp2m - *dewPoint
	fog := 0.0
	if spread < 2.0 {
		fog = clamp01((2.0 - spread) / 2.0)
	}

	if relHumidity != nil && *relHumidity > 90 {
		fog = clamp01(fog * 1.2)
	}

	return &fog
}

// Summarize computes the rain summary over all emitted features.
// Features without a rain value count towards the total but not the
// wet points.
func Summarize(collection *models.WeatherFeatureCollection) *models.WeatherSummary {
	summary := &models.WeatherSummary{TotalPoints: len(collection.Features)}
	if summary.TotalPoints == 0 {
		return summary
	}

	var sum float64
	for _, f := range collection.Features {
		if f.Properties.RainMm == nil {
			continue
		}
		mm := *f.Properties.RainMm
		sum += mm
		if mm > summary.MaxMm {
			summary.MaxMm = mm
		}
		if mm > 0 {
			summary.WetPoints++
		}
	}
	summary.AvgMm = sum / float64(summary.TotalPoints)

	return summary
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
