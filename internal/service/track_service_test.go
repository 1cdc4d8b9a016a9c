package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tj/assert"
	_ "modernc.org/sqlite"

	"github.com/bebablub/flyover-backend-go/internal/cache"
	"github.com/bebablub/flyover-backend-go/internal/database"
	"github.com/bebablub/flyover-backend-go/internal/gpx"
	"github.com/bebablub/flyover-backend-go/internal/repository"
	"github.com/bebablub/flyover-backend-go/internal/weather"
	"github.com/bebablub/flyover-backend-go/internal/wind"
)

const importGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Col du Test</name>
    <trkseg>
      <trkpt lat="46.0000" lon="7.0000"><ele>500</ele><time>2023-06-10T08:00:00Z</time></trkpt>
      <trkpt lat="46.0050" lon="7.0000"><ele>520</ele><time>2023-06-10T08:02:00Z</time></trkpt>
      <trkpt lat="46.0100" lon="7.0000"><ele>540</ele><time>2023-06-10T08:04:00Z</time></trkpt>
      <trkpt lat="46.0150" lon="7.0000"><ele>560</ele><time>2023-06-10T08:06:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestDB(t *testing.T) *repository.TrackRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	assert.NoError(t, err)
	assert.NoError(t, database.RunMigrations(db))

	return repository.NewTrackRepository(db)
}

// newWeatherBackend serves a fixed hourly response covering the test
// track's time range.
func newWeatherBackend(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := int64(1686384000) // 2023-06-10 08:00 UTC
		hours := 48
		times := make([]int64, hours)
		values := make([]float64, hours)
		for i := 0; i < hours; i++ {
			times[i] = base + int64(i-12)*3600
			values[i] = 12.0
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hourly": map[string]interface{}{
				"time":              times,
				"rain":              values,
				"temperature_2m":    values,
				"dewpoint_2m":       values,
				"windspeed_10m":     values,
				"winddirection_10m": values,
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newServices(t *testing.T, baseURL string, weatherEnabled bool) (*TrackService, *WeatherService) {
	repo := newTestDB(t)
	log := quietLogger()
	c := cache.NewMemory()

	client := weather.NewClient(baseURL, 5*time.Second, c, time.Hour, log)
	enricher := weather.NewEnricher(client, log)

	opts := weather.Options{Enabled: weatherEnabled, StepKm: 1, StepMin: 30}
	windOpts := wind.Options{Enabled: weatherEnabled, Density: 1}

	ws := NewWeatherService(repo, enricher, c, opts, windOpts, time.Hour, log)
	ts := NewTrackService(repo, ws, 1500, log)
	return ts, ws
}

func TestImportPersistsSeriesAndStats(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)

	track, err := ts.Import(context.Background(), strings.NewReader(importGPX), "")
	assert.NoError(t, err)
	assert.Equal(t, "Col du Test", track.Name)
	assert.Equal(t, 4, track.PointCount)

	stats, err := ts.Stats(track.ID)
	assert.NoError(t, err)
	assert.True(t, stats.TotalDistanceM > 1600 && stats.TotalDistanceM < 1750)
	assert.Equal(t, 360.0, stats.MovingTimeS)

	listed, err := ts.List()
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestImportExplicitNameWins(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)

	track, err := ts.Import(context.Background(), strings.NewReader(importGPX), "my upload")
	assert.NoError(t, err)
	assert.Equal(t, "my upload", track.Name)
}

func TestImportRejectsMalformedGPX(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)

	_, err := ts.Import(context.Background(), strings.NewReader("<gpx><trk>"), "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, gpx.ErrUnreadable) || errors.Is(err, gpx.ErrMalformed))

	listed, err := ts.List()
	assert.NoError(t, err)
	assert.Len(t, listed, 0)
}

func TestImportWithEnrichment(t *testing.T) {
	backend := newWeatherBackend(t)
	ts, ws := newServices(t, backend.URL, true)
	ctx := context.Background()

	track, err := ts.Import(ctx, strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	features, summary, err := ws.Weather(track.ID)
	assert.NoError(t, err)
	assert.True(t, len(features.Features) > 0)
	assert.Equal(t, len(features.Features), summary.TotalPoints)

	windSeries, windSummary, err := ws.Wind(track.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, windSeries.Len())
	assert.NotNil(t, windSummary)

	status, err := ts.Status(ctx, track.ID)
	assert.NoError(t, err)
	assert.True(t, status.HasStats)
	assert.True(t, status.HasWeather)
	assert.True(t, status.HasWind)
	assert.Equal(t, "", status.WeatherError)
}

func TestWindDisabledLeavesNoWindArtifact(t *testing.T) {
	backend := newWeatherBackend(t)
	repo := newTestDB(t)
	log := quietLogger()
	c := cache.NewMemory()

	client := weather.NewClient(backend.URL, 5*time.Second, c, time.Hour, log)
	enricher := weather.NewEnricher(client, log)
	ws := NewWeatherService(repo, enricher, c, weather.Options{Enabled: true, StepKm: 1}, wind.Options{Enabled: false}, time.Hour, log)
	ts := NewTrackService(repo, ws, 1500, log)
	ctx := context.Background()

	track, err := ts.Import(ctx, strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	status, err := ts.Status(ctx, track.ID)
	assert.NoError(t, err)
	assert.True(t, status.HasWeather)
	assert.False(t, status.HasWind)

	_, _, err = ws.Wind(track.ID)
	assert.Error(t, err)
}

func TestImportSurvivesProviderOutage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(backend.Close)

	ts, _ := newServices(t, backend.URL, true)
	ctx := context.Background()

	track, err := ts.Import(ctx, strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	// Track exists and has statistics despite the failed enrichment.
	status, err := ts.Status(ctx, track.ID)
	assert.NoError(t, err)
	assert.True(t, status.HasStats)
	assert.False(t, status.HasWeather)
	assert.False(t, status.HasWind)
	assert.NotEqual(t, "", status.WeatherError)
}

func TestRenameBumpsModifiedAt(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)

	track, err := ts.Import(context.Background(), strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	renamed, err := ts.Rename(track.ID, "renamed ride")
	assert.NoError(t, err)
	assert.Equal(t, "renamed ride", renamed.Name)
	// Touch rewrites modified_at to the current time.
	assert.True(t, time.Since(renamed.ModifiedAt) < 5*time.Second)

	_, err = ts.Rename("nope", "x")
	assert.Error(t, err)
}

func TestGeometryCompression(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)

	track, err := ts.Import(context.Background(), strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	geom, err := ts.Geometry(track.ID, 0)
	assert.NoError(t, err)
	// Four points survive dynamic sizing untouched.
	assert.Len(t, geom.Indices, 4)
	assert.Len(t, geom.Offsets, 3)
	assert.Equal(t, 7.0, geom.Origin[0])
	assert.Equal(t, 46.0, geom.Origin[1])

	// An absurdly low explicit target is raised to the hard floor,
	// which the original count then caps.
	geom, err = ts.Geometry(track.ID, 1)
	assert.NoError(t, err)
	assert.Len(t, geom.Indices, 4)
}

func TestDeleteRemovesEverything(t *testing.T) {
	ts, _ := newServices(t, "http://invalid.localhost", false)
	ctx := context.Background()

	track, err := ts.Import(ctx, strings.NewReader(importGPX), "")
	assert.NoError(t, err)

	assert.NoError(t, ts.Delete(ctx, track.ID))

	_, err = ts.Get(track.ID)
	assert.Error(t, err)
	_, err = ts.Stats(track.ID)
	assert.Error(t, err)
}
