package wind

import (
	"github.com/bebablub/flyover-backend-go/internal/models"
	"github.com/bebablub/flyover-backend-go/internal/spatial"
)

// Summarize aggregates a wind series: prevailing direction as the
// circular mean of the per-point directions, mean speed, and the share
// of points riding into headwind. Nil on series without any values.
func Summarize(ws *models.WindSeries) *models.WindSummary {
	if ws == nil || ws.Len() == 0 {
		return nil
	}

	var directions []float64
	var speedSum float64
	speedCount := 0
	headwind, impactCount := 0, 0

	for i := 0; i < ws.Len(); i++ {
		if d := ws.WindDirections[i]; d != nil {
			directions = append(directions, *d)
		}
		if s := ws.WindSpeeds[i]; s != nil {
			speedSum += *s
			speedCount++
		}
		if im := ws.WindImpacts[i]; im != nil {
			impactCount++
			if *im < 1 {
				headwind++
			}
		}
	}

	if len(directions) == 0 && speedCount == 0 && impactCount == 0 {
		return nil
	}

	summary := &models.WindSummary{}
	if len(directions) > 0 {
		mean := spatial.CircularMeanDegrees(directions, nil)
		summary.PrevailingDirectionDeg = &mean
	}
	if speedCount > 0 {
		mean := speedSum / float64(speedCount)
		summary.MeanSpeedKmh = &mean
	}
	if impactCount > 0 {
		share := float64(headwind) / float64(impactCount)
		summary.HeadwindShare = &share
	}

	return summary
}
