package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/cache"
	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/repository"
	"github.com/bebablub/flyover-backend-go/internal/weather"
	"github.com/bebablub/flyover-backend-go/internal/wind"
)

// enrichResult is the fully-assembled enrichment artifact cached per
// track identity, modification time and option fingerprint.
type enrichResult struct {
	Features *models.WeatherFeatureCollection `json:"features"`
	Summary  *models.WeatherSummary           `json:"summary"`
	Wind     *models.WindSeries               `json:"wind"`
}

// WeatherService orchestrates weather enrichment and wind
// interpolation for tracks. Runs are idempotent: a re-run replaces the
// prior artifacts wholesale.
type WeatherService struct {
	trackRepo *repository.TrackRepository
	enricher  *weather.Enricher
	cache     cache.Cache
	opts      weather.Options
	windOpts  wind.Options
	resultTTL time.Duration
	log       *logrus.Entry
}

// NewWeatherService creates a new weather service.
func NewWeatherService(trackRepo *repository.TrackRepository, enricher *weather.Enricher, c cache.Cache, opts weather.Options, windOpts wind.Options, resultTTL time.Duration, log *logrus.Logger) *WeatherService {
	return &WeatherService{
		trackRepo: trackRepo,
		enricher:  enricher,
		cache:     c,
		opts:      opts,
		windOpts:  windOpts,
		resultTTL: resultTTL,
		log:       log.WithField("component", "weather-service"),
	}
}

// EnrichTrack enriches one track with weather and wind data. series
// may be nil, in which case it is loaded from the repository. Errors
// are recorded transiently for status inspection and returned; the
// caller decides whether they are fatal (on-demand enrichment) or not
// (import).
func (s *WeatherService) EnrichTrack(ctx context.Context, t *models.Track, series *models.TrackSeries) error {
	if !s.opts.Enabled {
		return nil
	}

	if series == nil {
		var loaded models.TrackSeries
		ok, err := s.trackRepo.GetAttribute(t.ID, repository.AttrSeries, &loaded)
		if err != nil {
			return err
		}
		if !ok {
			return s.record(ctx, t.ID, weather.ErrNoGeometry)
		}
		series = &loaded
	}

	key := s.resultKey(t)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var result enrichResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return s.persist(ctx, t.ID, &result)
		}
	}

	features, summary, err := s.enricher.Enrich(ctx, series, s.opts)
	if err != nil {
		return s.record(ctx, t.ID, err)
	}
	if features == nil {
		// Enrichment disabled by configuration: no-op success.
		return nil
	}

	result := &enrichResult{
		Features: features,
		Summary:  summary,
	}
	// Disabled or unmatched wind yields an all-nil series; persisting it
	// would make the wind subsystem look populated.
	if ws := wind.Interpolate(series, features, s.windOpts); ws.HasValues() {
		result.Wind = ws
	}

	if err := s.persist(ctx, t.ID, result); err != nil {
		return err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, encoded, s.resultTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache enrichment result")
		}
	}

	return nil
}

// persist replaces the weather and wind artifacts wholesale and clears
// any recorded error.
func (s *WeatherService) persist(ctx context.Context, trackID string, result *enrichResult) error {
	if err := s.trackRepo.SetAttribute(trackID, repository.AttrWeatherData, result.Features); err != nil {
		return err
	}
	if err := s.trackRepo.SetAttribute(trackID, repository.AttrWeatherSummary, result.Summary); err != nil {
		return err
	}
	if result.Wind != nil {
		if err := s.trackRepo.SetAttribute(trackID, repository.AttrWindSeries, result.Wind); err != nil {
			return err
		}
	}

	if err := s.cache.Delete(ctx, s.errorKey(trackID)); err != nil {
		s.log.WithError(err).Warn("failed to clear enrichment error")
	}
	return nil
}

// record logs the failure with context and stores it transiently so
// the status endpoint can surface it.
func (s *WeatherService) record(ctx context.Context, trackID string, enrichErr error) error {
	s.log.WithField("track", trackID).WithError(enrichErr).Warn("weather enrichment failed")

	if err := s.cache.Set(ctx, s.errorKey(trackID), []byte(enrichErr.Error()), s.resultTTL); err != nil {
		s.log.WithError(err).Warn("failed to record enrichment error")
	}
	return enrichErr
}

// Weather returns the persisted feature collection and summary.
func (s *WeatherService) Weather(trackID string) (*models.WeatherFeatureCollection, *models.WeatherSummary, error) {
	var features models.WeatherFeatureCollection
	ok, err := s.trackRepo.GetAttribute(trackID, repository.AttrWeatherData, &features)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("track %s has no weather data", trackID)
	}

	var summary models.WeatherSummary
	if _, err := s.trackRepo.GetAttribute(trackID, repository.AttrWeatherSummary, &summary); err != nil {
		return nil, nil, err
	}
	return &features, &summary, nil
}

// Wind returns the persisted wind series with its summary.
func (s *WeatherService) Wind(trackID string) (*models.WindSeries, *models.WindSummary, error) {
	var series models.WindSeries
	ok, err := s.trackRepo.GetAttribute(trackID, repository.AttrWindSeries, &series)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("track %s has no wind data", trackID)
	}
	return &series, wind.Summarize(&series), nil
}

// LastError returns the most recently recorded enrichment error, empty
// when the last run succeeded or nothing ran yet.
func (s *WeatherService) LastError(ctx context.Context, trackID string) string {
	value, ok, err := s.cache.Get(ctx, s.errorKey(trackID))
	if err != nil || !ok {
		return ""
	}
	return string(value)
}

// Invalidate drops cached enrichment state for a track.
func (s *WeatherService) Invalidate(ctx context.Context, trackID string) {
	if err := s.cache.Delete(ctx, s.errorKey(trackID)); err != nil {
		s.log.WithError(err).Warn("failed to drop enrichment error key")
	}
}

// resultKey fingerprints track identity, modification time and the
// processing options, so geometry or option changes miss the cache.
func (s *WeatherService) resultKey(t *models.Track) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v|%v|%v|%v|%v|%v", s.opts.StepKm, s.opts.StepMin, s.opts.MultiPoint, s.opts.MultiPointDistanceKm, s.windOpts.Enabled, s.windOpts.Density)
	return fmt.Sprintf("enrich:%s:%d:%x", t.ID, t.ModifiedAt.Unix(), h.Sum64())
}

func (s *WeatherService) errorKey(trackID string) string {
	return "enricherr:" + trackID
}
