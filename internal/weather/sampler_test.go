package weather

import (
	"math"
	"testing"

	"github.com/bebablub/flyover-backend-go/internal/models"
)

// seriesWithSpacing builds a series of n points heading north with the
// given spacing in meters and seconds.
func seriesWithSpacing(n int, spacingM float64, spacingS int64) *models.TrackSeries {
	s := &models.TrackSeries{
		Coordinates:        make([][3]float64, n),
		Timestamps:         make([]*int64, n),
		CumulativeDistance: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Coordinates[i] = [3]float64{7.0, 46.0 + float64(i)*spacingM/111000.0, 500}
		s.CumulativeDistance[i] = float64(i) * spacingM
		if spacingS > 0 {
			ts := 1686384000 + int64(i)*spacingS
			s.Timestamps[i] = &ts
		}
	}
	return s
}

func TestDistanceSampling(t *testing.T) {
	// 100 points, 500 m apart = 49.5 km; a 10 km step emits the start
	// sample plus one per crossed multiple.
	series := seriesWithSpacing(100, 500, 60)
	samples := SamplePositions(series, Options{StepKm: 10})

	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0].SourceIndex != 0 || samples[0].Type != models.SampleDistance {
		t.Errorf("expected a distance sample at the start, got %+v", samples[0])
	}
	if samples[1].SourceIndex != 20 {
		t.Errorf("expected second sample at index 20, got %d", samples[1].SourceIndex)
	}
}

func TestTimeSampling(t *testing.T) {
	// No usable distance: all points identical, 5 min apart. A 30 min
	// step keeps every 6th point.
	series := seriesWithSpacing(24, 0, 300)
	samples := SamplePositions(series, Options{StepKm: 10, StepMin: 30})

	if len(samples) != 4 {
		t.Fatalf("expected 4 time samples, got %d", len(samples))
	}
	for _, s := range samples {
		if s.Type != models.SampleTime {
			t.Errorf("expected time sample, got %s", s.Type)
		}
	}
}

func TestFallbackSamplingCapped(t *testing.T) {
	// Neither distance nor timestamps available.
	series := seriesWithSpacing(500, 0, 0)
	samples := SamplePositions(series, Options{StepKm: 10, StepMin: 30})

	if len(samples) == 0 || len(samples) > 20 {
		t.Fatalf("expected at most 20 fallback samples, got %d", len(samples))
	}
	for _, s := range samples {
		if s.Type != models.SampleFallback {
			t.Errorf("expected fallback sample, got %s", s.Type)
		}
	}
}

func TestFallbackSamplingSpansTrack(t *testing.T) {
	// 25 points just above the cap: samples must cover the whole track,
	// not bunch at the start.
	series := seriesWithSpacing(25, 0, 0)
	samples := SamplePositions(series, Options{})

	if len(samples) == 0 || len(samples) > 20 {
		t.Fatalf("expected at most 20 samples, got %d", len(samples))
	}
	// With a ceiling step of 2 the last sample lands on the last index.
	last := samples[len(samples)-1].SourceIndex
	if last != 24 {
		t.Errorf("samples end at index %d of 24, final stretch uncovered", last)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].SourceIndex <= samples[i-1].SourceIndex {
			t.Fatal("fallback sample indices must be strictly increasing")
		}
	}
}

func TestMultiPointAugmentation(t *testing.T) {
	series := seriesWithSpacing(10, 500, 60)
	opts := Options{StepKm: 100, MultiPoint: true, MultiPointDistanceKm: 5}
	samples := SamplePositions(series, opts)

	// One base sample (start) plus four compass offsets.
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples with multi-point, got %d", len(samples))
	}

	directions := map[string]bool{}
	for _, s := range samples[1:] {
		if s.Type != models.SampleMultiPoint {
			t.Errorf("expected multipoint sample, got %s", s.Type)
		}
		directions[s.Direction] = true
	}
	for _, d := range []string{"north", "south", "east", "west"} {
		if !directions[d] {
			t.Errorf("missing %s offset", d)
		}
	}

	base := samples[0]
	for _, s := range samples[1:] {
		if s.Direction == "north" && s.Lat <= base.Lat {
			t.Error("north offset did not move north")
		}
		if s.Direction == "west" && s.Lon >= base.Lon {
			t.Error("west offset did not move west")
		}
	}
}

func TestDedupeByCell(t *testing.T) {
	// 25 samples all inside one 0.1 degree cell collapse to one fetch.
	samples := make([]models.WeatherSample, 25)
	for i := range samples {
		samples[i] = models.WeatherSample{Lat: 46.001 + float64(i)*0.0001, Lon: 7.002}
	}

	order, groups := DedupeByCell(samples)
	if len(order) != 1 {
		t.Fatalf("expected 1 unique cell, got %d", len(order))
	}
	if len(groups[order[0]]) != 25 {
		t.Errorf("expected all 25 samples in the cell, got %d", len(groups[order[0]]))
	}
}

func TestDedupeByCellCap(t *testing.T) {
	// 30 samples in 30 distinct cells: only the first 20 survive.
	samples := make([]models.WeatherSample, 30)
	for i := range samples {
		samples[i] = models.WeatherSample{Lat: 40.0 + float64(i)*0.2, Lon: 7.0}
	}

	order, groups := DedupeByCell(samples)
	if len(order) != 20 {
		t.Fatalf("expected cell cap of 20, got %d", len(order))
	}
	if len(groups) != 20 {
		t.Errorf("expected 20 groups, got %d", len(groups))
	}
}

func TestCellFor(t *testing.T) {
	cell := CellFor(46.07, 7.24)
	if math.Abs(cell.Lat-46.1) > 1e-9 || math.Abs(cell.Lon-7.2) > 1e-9 {
		t.Errorf("unexpected cell: %+v", cell)
	}
}
