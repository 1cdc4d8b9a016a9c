package simplify

import (
	"math"
	"testing"

	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/spatial"
)

func testSeries(n int) *models.TrackSeries {
	s := &models.TrackSeries{
		Coordinates:        make([][3]float64, n),
		Timestamps:         make([]*int64, n),
		CumulativeDistance: make([]float64, n),
		HeartRates:         make([]*float64, n),
	}
	for i := 0; i < n; i++ {
		s.Coordinates[i] = [3]float64{7.0 + float64(i)*0.00123, 46.0 + float64(i)*0.00071, 1200 + float64(i)*0.37}
		ts := int64(1686384000 + i*10)
		s.Timestamps[i] = &ts
		s.CumulativeDistance[i] = float64(i) * 130
		hr := 120 + float64(i%40)
		s.HeartRates[i] = &hr
	}
	return s
}

func TestCompressRoundTrip(t *testing.T) {
	series := testSeries(100)
	indices := allIndices(100)

	ct := Compress(series, nil, indices)
	restored := Decompress(ct)

	if len(restored) != 100 {
		t.Fatalf("expected 100 restored points, got %d", len(restored))
	}

	for i, got := range restored {
		want := series.Coordinates[i]
		horizontal := spatial.HaversineDistance(want[1], want[0], got[1], got[0])
		if horizontal > 1.1 {
			t.Fatalf("point %d: horizontal error %.2f m exceeds grid precision", i, horizontal)
		}
		if math.Abs(got[2]-want[2]) > 0.1+1e-9 {
			t.Fatalf("point %d: elevation error %.3f m exceeds grid precision", i, math.Abs(got[2]-want[2]))
		}
	}
}

func TestCompressKeepsOriginExact(t *testing.T) {
	series := testSeries(10)
	ct := Compress(series, nil, allIndices(10))
	if ct.Origin != series.Coordinates[0] {
		t.Errorf("origin altered: %v != %v", ct.Origin, series.Coordinates[0])
	}
	if len(ct.Offsets) != 9 {
		t.Errorf("expected 9 offsets, got %d", len(ct.Offsets))
	}
}

func TestCompressReslicesCoIndexedArrays(t *testing.T) {
	series := testSeries(50)
	wind := models.NewWindSeries(50)
	speed := 12.5
	wind.WindSpeeds[30] = &speed

	indices := []int{0, 10, 30, 49}
	ct := Compress(series, wind, indices)

	if len(ct.Timestamps) != 4 || len(ct.CumulativeDistance) != 4 || len(ct.HeartRates) != 4 {
		t.Fatalf("co-indexed arrays not resliced to kept count")
	}
	if *ct.Timestamps[1] != *series.Timestamps[10] {
		t.Error("timestamp at kept index 10 misaligned")
	}
	if ct.CumulativeDistance[2] != series.CumulativeDistance[30] {
		t.Error("cumulative distance at kept index 30 misaligned")
	}
	if ct.WindSpeeds[2] == nil || *ct.WindSpeeds[2] != 12.5 {
		t.Error("wind array not resliced with the same kept indices")
	}
	if ct.WindSpeeds[1] != nil {
		t.Error("expected nil wind entry to stay nil")
	}
}

func TestCompressEmptyIndices(t *testing.T) {
	ct := Compress(testSeries(5), nil, nil)
	if Decompress(ct) != nil {
		t.Error("expected nil coordinates from empty compression")
	}
}
