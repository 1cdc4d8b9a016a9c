package simplify

import (
	"math"

	"github.com/bebablub/flyover-backend-go/internal/models"
)

const (
	// coordinateGrid is 1/100000 degree, roughly 1.1 m at the equator.
	coordinateGrid = 1e-5

	// elevationGrid is 0.1 m.
	elevationGrid = 0.1
)

// Compress re-expresses the kept points as grid-rounded offsets from
// the first kept point. Purely a transport/precision optimization;
// Decompress restores coordinates within the grid error. Every array
// co-indexed with the coordinates is resliced with the same kept-index
// set so alignment is preserved. wind may be nil.
func Compress(series *models.TrackSeries, wind *models.WindSeries, indices []int) *models.CompressedTrack {
	if len(indices) == 0 {
		return &models.CompressedTrack{}
	}

	origin := series.Coordinates[indices[0]]
	ct := &models.CompressedTrack{
		Origin:             origin,
		Offsets:            make([][3]int32, 0, len(indices)-1),
		Indices:            indices,
		Timestamps:         resliceInt64Ptr(series.Timestamps, indices),
		CumulativeDistance: resliceFloat(series.CumulativeDistance, indices),
		HeartRates:         resliceFloatPtr(series.HeartRates, indices),
		Cadences:           resliceFloatPtr(series.Cadences, indices),
		Temperatures:       resliceFloatPtr(series.Temperatures, indices),
		Powers:             resliceFloatPtr(series.Powers, indices),
	}

	if wind != nil && wind.Len() > 0 {
		ct.WindSpeeds = resliceFloatPtr(wind.WindSpeeds, indices)
		ct.WindDirections = resliceFloatPtr(wind.WindDirections, indices)
		ct.WindImpacts = resliceFloatPtr(wind.WindImpacts, indices)
	}

	for _, idx := range indices[1:] {
		c := series.Coordinates[idx]
		ct.Offsets = append(ct.Offsets, [3]int32{
			int32(math.Round((c[0] - origin[0]) / coordinateGrid)),
			int32(math.Round((c[1] - origin[1]) / coordinateGrid)),
			int32(math.Round((c[2] - origin[2]) / elevationGrid)),
		})
	}

	return ct
}

// Decompress expands a compressed track back to full [lon, lat, ele]
// coordinates, exact to within the grid precision.
func Decompress(ct *models.CompressedTrack) [][3]float64 {
	if len(ct.Indices) == 0 {
		return nil
	}

	coords := make([][3]float64, 0, len(ct.Offsets)+1)
	coords = append(coords, ct.Origin)
	for _, off := range ct.Offsets {
		coords = append(coords, [3]float64{
			ct.Origin[0] + float64(off[0])*coordinateGrid,
			ct.Origin[1] + float64(off[1])*coordinateGrid,
			ct.Origin[2] + float64(off[2])*elevationGrid,
		})
	}
	return coords
}

func resliceFloat(values []float64, indices []int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, 0, len(indices))
	for _, idx := range indices {
		out = append(out, values[idx])
	}
	return out
}

func resliceFloatPtr(values []*float64, indices []int) []*float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]*float64, 0, len(indices))
	for _, idx := range indices {
		out = append(out, values[idx])
	}
	return out
}

func resliceInt64Ptr(values []*int64, indices []int) []*int64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]*int64, 0, len(indices))
	for _, idx := range indices {
		out = append(out, values[idx])
	}
	return out
}
