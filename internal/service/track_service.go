package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/gpx"
	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/repository"
	"github.com/bebablub/flyover-backend-go/internal/simplify"
	"github.com/bebablub/flyover-backend-go/internal/track"
)

// TrackService handles track import and retrieval. Parsing failures
// are fatal to an import; weather enrichment failures are not.
type TrackService struct {
	trackRepo      *repository.TrackRepository
	weather        *WeatherService
	simplifyTarget int
	log            *logrus.Entry
}

// NewTrackService creates a new track service. simplifyTarget is the
// admin default point budget for presentation geometry.
func NewTrackService(trackRepo *repository.TrackRepository, weather *WeatherService, simplifyTarget int, log *logrus.Logger) *TrackService {
	return &TrackService{
		trackRepo:      trackRepo,
		weather:        weather,
		simplifyTarget: simplifyTarget,
		log:            log.WithField("component", "track-service"),
	}
}

// Import parses a GPX stream, derives series and statistics, persists
// them, then runs best-effort weather enrichment. A parse failure
// persists nothing; an enrichment failure leaves the imported track
// usable without weather.
func (s *TrackService) Import(ctx context.Context, r io.Reader, name string) (*models.Track, error) {
	parsed, err := gpx.Parse(r)
	if err != nil {
		return nil, err
	}

	series, stats := track.Process(parsed.Points)

	if name == "" {
		name = parsed.Name
	}
	now := time.Now().UTC()
	t := &models.Track{
		ID:         uuid.NewString(),
		Name:       name,
		PointCount: series.Len(),
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.trackRepo.CreateWithAttributes(t, map[string]interface{}{
		repository.AttrSeries: series,
		repository.AttrStats:  stats,
	}); err != nil {
		return nil, err
	}

	// Weather and wind are best-effort: the import already succeeded.
	if err := s.weather.EnrichTrack(ctx, t, series); err != nil {
		s.log.WithField("track", t.ID).WithError(err).Warn("weather enrichment failed, track imported without weather")
	}

	return t, nil
}

// List returns all imported tracks.
func (s *TrackService) List() ([]models.Track, error) {
	return s.trackRepo.List()
}

// Get retrieves one track.
func (s *TrackService) Get(id string) (*models.Track, error) {
	t, err := s.trackRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("track %s not found", id)
	}
	return t, nil
}

// Rename updates a track's display name and bumps its modification
// time, so enrichment results fingerprinted on the old state miss the
// cache.
func (s *TrackService) Rename(id, name string) (*models.Track, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if err := s.trackRepo.UpdateName(id, name); err != nil {
		return nil, err
	}
	if err := s.trackRepo.Touch(id); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Stats returns the persisted ride statistics.
func (s *TrackService) Stats(id string) (*models.Stats, error) {
	var stats models.Stats
	ok, err := s.trackRepo.GetAttribute(id, repository.AttrStats, &stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("track %s has no statistics", id)
	}
	return &stats, nil
}

// Geometry simplifies the stored series to the requested point budget
// (0 = dynamic sizing from the admin default) and compresses it for
// transport, reslicing all co-indexed arrays with the kept indices.
func (s *TrackService) Geometry(id string, points int) (*models.CompressedTrack, error) {
	var series models.TrackSeries
	ok, err := s.trackRepo.GetAttribute(id, repository.AttrSeries, &series)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("track %s has no geometry", id)
	}

	target := simplify.ClampTarget(points, series.Len())
	if points <= 0 {
		target = simplify.TargetForSize(series.Len(), s.simplifyTarget)
	}

	indices := simplify.Indices(series.Coordinates, target)

	var wind models.WindSeries
	windPresent, err := s.trackRepo.GetAttribute(id, repository.AttrWindSeries, &wind)
	if err != nil {
		return nil, err
	}
	if windPresent {
		return simplify.Compress(&series, &wind, indices), nil
	}
	return simplify.Compress(&series, nil, indices), nil
}

// Status reports per-subsystem artifact availability for a track.
func (s *TrackService) Status(ctx context.Context, id string) (*models.TrackStatus, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	status := &models.TrackStatus{}
	var err error
	if status.HasStats, err = s.trackRepo.HasAttribute(id, repository.AttrStats); err != nil {
		return nil, err
	}
	if status.HasWeather, err = s.trackRepo.HasAttribute(id, repository.AttrWeatherData); err != nil {
		return nil, err
	}
	if status.HasWind, err = s.trackRepo.HasAttribute(id, repository.AttrWindSeries); err != nil {
		return nil, err
	}
	status.WeatherError = s.weather.LastError(ctx, id)

	return status, nil
}

// Delete removes a track, its attributes and any cached enrichment.
func (s *TrackService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.weather.Invalidate(ctx, id)
	return s.trackRepo.Delete(id)
}
