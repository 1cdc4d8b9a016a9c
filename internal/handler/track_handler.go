package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bebablub/flyover-backend-go/internal/gpx"
	"github.com/bebablub/flyover-backend-go/internal/service"
	"github.com/bebablub/flyover-backend-go/pkg/response"
)

// TrackHandler handles HTTP requests for tracks
type TrackHandler struct {
	trackService *service.TrackService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(trackService *service.TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
	}
}

// Import handles POST /api/v1/tracks. The GPX file arrives either as
// the multipart field "file" or as the raw request body.
func (h *TrackHandler) Import(c *gin.Context) {
	name := c.Query("name")

	reader := c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			response.BadRequest(c, "cannot read uploaded file")
			return
		}
		defer opened.Close()
		reader = opened
		if name == "" {
			name = strings.TrimSuffix(file.Filename, ".gpx")
		}
	}

	track, err := h.trackService.Import(c.Request.Context(), reader, name)
	if err != nil {
		switch {
		case errors.Is(err, gpx.ErrEmpty), errors.Is(err, gpx.ErrMalformed), errors.Is(err, gpx.ErrUnreadable):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Created(c, track)
}

// List handles GET /api/v1/tracks
func (h *TrackHandler) List(c *gin.Context) {
	tracks, err := h.trackService.List()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  tracks,
		"count": len(tracks),
	})
}

// Get handles GET /api/v1/tracks/:id, returning the track with its
// statistics.
func (h *TrackHandler) Get(c *gin.Context) {
	id := c.Param("id")

	track, err := h.trackService.Get(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	stats, err := h.trackService.Stats(id)
	if err != nil {
		response.Success(c, gin.H{"track": track})
		return
	}

	response.Success(c, gin.H{"track": track, "stats": stats})
}

// Rename handles PATCH /api/v1/tracks/:id
func (h *TrackHandler) Rename(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}

	track, err := h.trackService.Rename(c.Param("id"), req.Name)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, track)
}

// Geometry handles GET /api/v1/tracks/:id/geometry, returning the
// simplified and compressed track. points=0 picks a dynamic target.
func (h *TrackHandler) Geometry(c *gin.Context) {
	id := c.Param("id")

	points, err := strconv.Atoi(c.DefaultQuery("points", "0"))
	if err != nil || points < 0 {
		response.BadRequest(c, "invalid points parameter")
		return
	}

	compressed, err := h.trackService.Geometry(id, points)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, compressed)
}

// Status handles GET /api/v1/tracks/:id/status
func (h *TrackHandler) Status(c *gin.Context) {
	status, err := h.trackService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, status)
}

// Delete handles DELETE /api/v1/tracks/:id
func (h *TrackHandler) Delete(c *gin.Context) {
	if err := h.trackService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, nil)
}
