package models

// SampleType describes how a weather sample position was chosen.
type SampleType string

const (
	SampleDistance   SampleType = "distance"
	SampleTime       SampleType = "time"
	SampleFallback   SampleType = "fallback"
	SampleMultiPoint SampleType = "multipoint"
)

// WeatherSample is a sparse sampling position along the track. Created
// by the sampler, consumed by the fetch stage, discarded after
// enrichment.
type WeatherSample struct {
	Lon         float64    `json:"lon"`
	Lat         float64    `json:"lat"`
	TimeUnix    *int64     `json:"timeUnix"`
	SourceIndex int        `json:"sourceIndex"` // index into the track series
	Type        SampleType `json:"sampleType"`
	Direction   string     `json:"direction,omitempty"` // north/south/east/west for multipoint samples
}

// PointGeometry is a GeoJSON point geometry.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

// WeatherProperties carries the scalar weather values derived for one
// sample. Missing provider data yields nil, never an error.
type WeatherProperties struct {
	RainMm              *float64   `json:"rainMm"`
	TemperatureC        *float64   `json:"temperatureC"`
	WindSpeedKmh        *float64   `json:"windSpeedKmh"`
	WindDirectionDeg    *float64   `json:"windDirectionDeg"`
	CloudCoverPct       *float64   `json:"cloudCoverPct"`
	SnowfallCm          *float64   `json:"snowfallCm"`
	FogIntensity        *float64   `json:"fogIntensity"`
	DewPointC           *float64   `json:"dewPointC"`
	Temperature2mC      *float64   `json:"temperature2mC"`
	RelativeHumidityPct *float64   `json:"relativeHumidityPct"`
	TimeUnix            *int64     `json:"timeUnix"`
	SampleType          SampleType `json:"sampleType"`
}

// WeatherFeature is one enriched sample in GeoJSON feature shape.
type WeatherFeature struct {
	Type       string            `json:"type"`
	Geometry   PointGeometry     `json:"geometry"`
	Properties WeatherProperties `json:"properties"`
}

// NewWeatherFeature builds a feature for the given sample position.
func NewWeatherFeature(lon, lat float64, props WeatherProperties) WeatherFeature {
	return WeatherFeature{
		Type: "Feature",
		Geometry: PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{lon, lat},
		},
		Properties: props,
	}
}

// WeatherFeatureCollection is the immutable enrichment snapshot
// persisted alongside a track. Re-enrichment replaces it wholesale.
type WeatherFeatureCollection struct {
	Type     string           `json:"type"`
	Features []WeatherFeature `json:"features"`
}

// WeatherSummary aggregates rain over all emitted features.
type WeatherSummary struct {
	MaxMm       float64 `json:"maxMm"`
	AvgMm       float64 `json:"avgMm"`
	WetPoints   int     `json:"wetPoints"`
	TotalPoints int     `json:"totalPoints"`
}
