package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/handler"
	"github.com/bebablub/flyover-backend-go/internal/middleware"
)

// SetupRouter wires handlers into the HTTP surface.
func SetupRouter(trackHandler *handler.TrackHandler, weatherHandler *handler.WeatherHandler, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Track pipeline API is running",
		})
	})

	// On-demand enrichment hits the external weather provider, so it
	// gets its own limiter.
	enrichLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := r.Group("/api/v1")
	{
		tracks := api.Group("/tracks")
		{
			tracks.POST("", trackHandler.Import)
			tracks.GET("", trackHandler.List)
			tracks.GET("/:id", trackHandler.Get)
			tracks.PATCH("/:id", trackHandler.Rename)
			tracks.GET("/:id/geometry", trackHandler.Geometry)
			tracks.GET("/:id/status", trackHandler.Status)
			tracks.DELETE("/:id", trackHandler.Delete)

			tracks.GET("/:id/weather", weatherHandler.Weather)
			tracks.GET("/:id/wind", weatherHandler.Wind)
			tracks.POST("/:id/weather", enrichLimiter.Middleware(), weatherHandler.Enrich)
		}
	}

	return r
}
