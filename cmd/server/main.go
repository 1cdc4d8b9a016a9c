package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/api"
	"github.com/bebablub/flyover-backend-go/internal/cache"
	"github.com/bebablub/flyover-backend-go/internal/config"
	"github.com/bebablub/flyover-backend-go/internal/database"
	"github.com/bebablub/flyover-backend-go/internal/handler"
	"github.com/bebablub/flyover-backend-go/internal/repository"
	"github.com/bebablub/flyover-backend-go/internal/service"
	"github.com/bebablub/flyover-backend-go/internal/weather"
	"github.com/bebablub/flyover-backend-go/internal/wind"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.Close()

	if err := database.RunMigrations(database.GetDB()); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Shared TTL cache: redis when configured, in-process otherwise.
	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPass)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisCache.Close()
		store = redisCache
	} else {
		store = cache.NewMemory()
	}

	provider := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherTimeout(), store, cfg.WeatherCacheTTL(), log)
	enricher := weather.NewEnricher(provider, log)

	weatherOpts := weather.Options{
		Enabled:              cfg.WeatherEnabled,
		StepKm:               cfg.SampleStepKm,
		StepMin:              cfg.SampleStepMin,
		MultiPoint:           cfg.MultiPoint,
		MultiPointDistanceKm: cfg.MultiPointKm,
	}
	windOpts := wind.Options{
		Enabled: cfg.WindEnabled,
		Density: cfg.WindDensity,
	}

	trackRepo := repository.NewTrackRepository(database.GetDB())
	weatherService := service.NewWeatherService(trackRepo, enricher, store, weatherOpts, windOpts, cfg.ResultCacheTTL(), log)
	trackService := service.NewTrackService(trackRepo, weatherService, cfg.SimplifyTarget, log)

	trackHandler := handler.NewTrackHandler(trackService)
	weatherHandler := handler.NewWeatherHandler(trackService, weatherService)

	router := api.SetupRouter(trackHandler, weatherHandler, log)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
