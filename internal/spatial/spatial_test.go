package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// One hundredth of a degree of latitude is roughly 1.11 km
	d := HaversineDistance(0, 0, 0.01, 0)
	if math.Abs(d-1112) > 5 {
		t.Errorf("unexpected distance: %.1f", d)
	}

	if HaversineDistance(46, 7, 46, 7) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Bearing = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestPlanarDistanceDeg(t *testing.T) {
	d := PlanarDistanceDeg(0, 0, 3, 4)
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("expected 5, got %v", d)
	}
}

func TestCircularMeanDegrees(t *testing.T) {
	// Angles straddling north must average to north, not 180.
	got := CircularMeanDegrees([]float64{350, 10}, nil)
	if math.Abs(got) > 0.01 && math.Abs(got-360) > 0.01 {
		t.Errorf("expected mean ~0, got %.2f", got)
	}

	got = CircularMeanDegrees([]float64{80, 100}, nil)
	if math.Abs(got-90) > 0.01 {
		t.Errorf("expected mean 90, got %.2f", got)
	}
}

func TestAngularDifferenceDegrees(t *testing.T) {
	if d := AngularDifferenceDegrees(350, 10); math.Abs(d-20) > 1e-9 {
		t.Errorf("expected 20, got %v", d)
	}
	if d := AngularDifferenceDegrees(10, 350); math.Abs(d+20) > 1e-9 {
		t.Errorf("expected -20, got %v", d)
	}
}
