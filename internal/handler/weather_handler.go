package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bebablub/flyover-backend-go/internal/service"
	"github.com/bebablub/flyover-backend-go/pkg/response"
)

// WeatherHandler handles HTTP requests for weather and wind artifacts
type WeatherHandler struct {
	trackService   *service.TrackService
	weatherService *service.WeatherService
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(trackService *service.TrackService, weatherService *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{
		trackService:   trackService,
		weatherService: weatherService,
	}
}

// Enrich handles POST /api/v1/tracks/:id/weather. On-demand enrichment
// surfaces provider failures to the caller, unlike the best-effort run
// during import.
func (h *WeatherHandler) Enrich(c *gin.Context) {
	id := c.Param("id")

	track, err := h.trackService.Get(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	if err := h.weatherService.EnrichTrack(c.Request.Context(), track, nil); err != nil {
		response.BadGateway(c, err.Error())
		return
	}

	features, summary, err := h.weatherService.Weather(id)
	if err != nil {
		// Enrichment disabled by configuration: nothing was produced.
		response.Success(c, nil)
		return
	}

	response.Success(c, gin.H{"features": features, "summary": summary})
}

// Weather handles GET /api/v1/tracks/:id/weather
func (h *WeatherHandler) Weather(c *gin.Context) {
	features, summary, err := h.weatherService.Weather(c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"features": features, "summary": summary})
}

// Wind handles GET /api/v1/tracks/:id/wind
func (h *WeatherHandler) Wind(c *gin.Context) {
	series, summary, err := h.weatherService.Wind(c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"series": series, "summary": summary})
}
