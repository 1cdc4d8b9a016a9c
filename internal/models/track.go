package models

import "time"

// Track represents an imported GPS track recording
type Track struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	PointCount int       `json:"pointCount" db:"point_count"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	ModifiedAt time.Time `json:"modifiedAt" db:"modified_at"`
}

// TrackSeries holds the per-point parallel arrays derived from a parsed
// track. Every array is either empty or has exactly PointCount entries;
// nullable values are represented with pointer entries.
type TrackSeries struct {
	Coordinates        [][3]float64 `json:"coordinates"` // [lon, lat, ele]
	Timestamps         []*int64     `json:"timestamps"`  // unix seconds
	CumulativeDistance []float64    `json:"cumulativeDistance"`

	// Optional biometric arrays from trackpoint extensions
	HeartRates   []*float64 `json:"heartRates,omitempty"`
	Cadences     []*float64 `json:"cadences,omitempty"`
	Temperatures []*float64 `json:"temperatures,omitempty"`
	Powers       []*float64 `json:"powers,omitempty"`
}

// Len returns the point count of the series.
func (s *TrackSeries) Len() int {
	return len(s.Coordinates)
}

// Stats holds derived ride statistics. Recomputed from the series,
// never mutated in place.
type Stats struct {
	TotalDistanceM float64  `json:"totalDistanceM"`
	MovingTimeS    float64  `json:"movingTimeS"`
	AverageSpeedMS float64  `json:"averageSpeedMS"`
	ElevationGainM float64  `json:"elevationGainM"`
	MinElevationM  *float64 `json:"minElevationM"`
	MaxElevationM  *float64 `json:"maxElevationM"`

	// Bounds is [minLon, minLat, maxLon, maxLat]
	Bounds [4]float64 `json:"bounds"`
}

// CompressedTrack is a transport-optimized rendition of a simplified
// series. The first point is kept at full precision; every following
// point is an offset from it on a 1/100000 degree grid, elevation on a
// 0.1 m grid. Co-indexed arrays are resliced with the same kept-index
// set so index alignment survives simplification.
type CompressedTrack struct {
	Origin  [3]float64 `json:"origin"`  // [lon, lat, ele]
	Offsets [][3]int32 `json:"offsets"` // [dlon, dlat] in 1e-5 deg, [dele] in 0.1 m
	Indices []int      `json:"indices"` // kept indices into the source series

	Timestamps         []*int64  `json:"timestamps,omitempty"`
	CumulativeDistance []float64 `json:"cumulativeDistance,omitempty"`

	HeartRates   []*float64 `json:"heartRates,omitempty"`
	Cadences     []*float64 `json:"cadences,omitempty"`
	Temperatures []*float64 `json:"temperatures,omitempty"`
	Powers       []*float64 `json:"powers,omitempty"`

	WindSpeeds     []*float64 `json:"windSpeeds,omitempty"`
	WindDirections []*float64 `json:"windDirections,omitempty"`
	WindImpacts    []*float64 `json:"windImpacts,omitempty"`
}

// TrackStatus reports which derived artifacts exist for a track,
// inspectable per subsystem.
type TrackStatus struct {
	HasStats     bool   `json:"hasStats"`
	HasWeather   bool   `json:"hasWeather"`
	HasWind      bool   `json:"hasWind"`
	WeatherError string `json:"weatherError,omitempty"`
}
