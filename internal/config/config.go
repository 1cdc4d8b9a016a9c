package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration, loaded from the
// environment with sensible defaults.
type Config struct {
	Port      string `mapstructure:"PORT"`
	DBPath    string `mapstructure:"DB_PATH"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisPass string `mapstructure:"REDIS_PASSWORD"`

	WeatherAPIURL      string  `mapstructure:"WEATHER_API_URL"`
	WeatherEnabled     bool    `mapstructure:"WEATHER_ENABLED"`
	WindEnabled        bool    `mapstructure:"WIND_ENABLED"`
	SampleStepKm       float64 `mapstructure:"WEATHER_STEP_KM"`
	SampleStepMin      float64 `mapstructure:"WEATHER_STEP_MIN"`
	MultiPoint         bool    `mapstructure:"WEATHER_MULTI_POINT"`
	MultiPointKm       float64 `mapstructure:"WEATHER_MULTI_POINT_KM"`
	WindDensity        int     `mapstructure:"WIND_DENSITY"`
	SimplifyTarget     int     `mapstructure:"SIMPLIFY_TARGET"`
	WeatherCacheTTLMin int     `mapstructure:"WEATHER_CACHE_TTL_MIN"`
	WeatherTimeoutSec  int     `mapstructure:"WEATHER_TIMEOUT_SEC"`
	ResultCacheTTLMin  int     `mapstructure:"RESULT_CACHE_TTL_MIN"`
}

// Load reads the configuration from the environment.
func Load() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("DB_PATH", "./data/tracks.db")
	viper.SetDefault("REDIS_ADDR", "") // empty = in-memory cache
	viper.SetDefault("REDIS_PASSWORD", "")

	viper.SetDefault("WEATHER_API_URL", "https://archive-api.open-meteo.com")
	viper.SetDefault("WEATHER_ENABLED", true)
	viper.SetDefault("WIND_ENABLED", true)
	viper.SetDefault("WEATHER_STEP_KM", 10.0)
	viper.SetDefault("WEATHER_STEP_MIN", 30.0)
	viper.SetDefault("WEATHER_MULTI_POINT", false)
	viper.SetDefault("WEATHER_MULTI_POINT_KM", 5.0)
	viper.SetDefault("WIND_DENSITY", 3)
	viper.SetDefault("SIMPLIFY_TARGET", 1500)
	viper.SetDefault("WEATHER_CACHE_TTL_MIN", 360)
	viper.SetDefault("WEATHER_TIMEOUT_SEC", 5)
	viper.SetDefault("RESULT_CACHE_TTL_MIN", 60)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return &cfg
}

// WeatherCacheTTL returns the TTL for raw provider responses.
func (c *Config) WeatherCacheTTL() time.Duration {
	return time.Duration(c.WeatherCacheTTLMin) * time.Minute
}

// WeatherTimeout returns the per-request provider timeout.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutSec) * time.Second
}

// ResultCacheTTL returns the TTL for assembled enrichment results.
func (c *Config) ResultCacheTTL() time.Duration {
	return time.Duration(c.ResultCacheTTLMin) * time.Minute
}
