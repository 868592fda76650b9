package handlers

import (
	"errors"
	"net/http"
	"time"

	"video-tracking-system/internal/metrics"
	"video-tracking-system/internal/models"
	"video-tracking-system/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func (s *Server) PostAnalytics(c *gin.Context) {
	var req models.AnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IngestRejected.WithLabelValues("http", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.analytics.Apply(ctx, req); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidArgument):
			metrics.IngestRejected.WithLabelValues("http", "invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			metrics.IngestRejected.WithLabelValues("http", "not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		default:
			s.logger.WithError(err).WithField("video_id", req.VideoID).Error("Analytics error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) GetAnalytics(c *gin.Context) {
	videoID := c.Query("videoId")
	if videoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video ID is required"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	stats, err := s.analytics.GetStats(ctx, videoID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, services.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.logger.WithError(err).WithField("video_id", videoID).Error("Analytics fetch error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) Health(c *gin.Context) {
	if s.opts.HealthCheck != nil {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		if err := s.opts.HealthCheck(ctx); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   "1.0.0",
	})
}

// bindingErrorMessage turns a bind/validation failure into a client message.
// A missing video ID wins over every other complaint.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}

	switch {
	case failed["VideoID"]:
		return "Video ID is required"
	case failed["Action"]:
		return "Invalid action"
	case failed["WatchPercentage"]:
		return "watchPercentage must be between 0 and 100"
	case failed["WatchDuration"]:
		return "watchDuration must be non-negative"
	default:
		return "Invalid request body"
	}
}
