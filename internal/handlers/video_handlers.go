package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"video-tracking-system/internal/services"

	"github.com/gin-gonic/gin"
)

func (s *Server) PostUpload(c *gin.Context) {
	if s.opts.MaxUploadBytes > 0 {
		if c.Request.ContentLength > s.opts.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Video file too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Video file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload video"})
		return
	}
	defer file.Close()

	res, err := s.uploads.Upload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.WithError(err).Error("Upload error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload video"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) GetVideo(c *gin.Context) {
	videoID := c.Param("id")

	ctx, cancel := s.requestContext(c)
	defer cancel()

	video, err := s.analytics.GetVideo(ctx, videoID)
	if err != nil {
		s.writeLookupError(c, err, videoID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video":    video,
		"url":      "/uploads/" + video.Filename,
		"shareUrl": "/watch/" + video.ID,
	})
}

func (s *Server) GetWatchEvents(c *gin.Context) {
	videoID := c.Param("id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	events, err := s.analytics.ListWatchEvents(ctx, videoID, limit, offset)
	if err != nil {
		s.writeLookupError(c, err, videoID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(events),
		},
	})
}

func (s *Server) writeLookupError(c *gin.Context, err error, videoID string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.WithError(err).WithField("video_id", videoID).Error("Video lookup error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
	}
}
