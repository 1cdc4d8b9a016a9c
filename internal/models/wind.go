package models

// WindSeries holds per-track-point wind arrays, index-aligned with the
// track series. Entries are nil until interpolation fills them; tracks
// without any usable weather stay entirely nil.
type WindSeries struct {
	WindSpeeds     []*float64 `json:"windSpeeds"`     // km/h
	WindDirections []*float64 `json:"windDirections"` // degrees, meteorological
	WindImpacts    []*float64 `json:"windImpacts"`    // 1.0 = neutral, >1 tailwind, <1 headwind
}

// NewWindSeries returns an all-nil wind series of the given length.
func NewWindSeries(n int) *WindSeries {
	return &WindSeries{
		WindSpeeds:     make([]*float64, n),
		WindDirections: make([]*float64, n),
		WindImpacts:    make([]*float64, n),
	}
}

// Len returns the point count of the series.
func (w *WindSeries) Len() int {
	return len(w.WindSpeeds)
}

// HasValues reports whether any entry is filled. An all-nil series is
// the no-op result of disabled or failed interpolation and is not worth
// persisting.
func (w *WindSeries) HasValues() bool {
	for i := range w.WindSpeeds {
		if w.WindSpeeds[i] != nil || w.WindDirections[i] != nil || w.WindImpacts[i] != nil {
			return true
		}
	}
	return false
}

// WindSummary aggregates a wind series for display.
type WindSummary struct {
	PrevailingDirectionDeg *float64 `json:"prevailingDirectionDeg"`
	MeanSpeedKmh           *float64 `json:"meanSpeedKmh"`
	HeadwindShare          *float64 `json:"headwindShare"` // fraction of points with impact < 1
}
