package handlers

import (
	"context"
	"io"
	"time"

	"video-tracking-system/internal/middleware"
	"video-tracking-system/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type AnalyticsAPI interface {
	Apply(ctx context.Context, req models.AnalyticsRequest) error
	GetStats(ctx context.Context, videoID string) (*models.VideoStats, error)
	GetVideo(ctx context.Context, videoID string) (*models.VideoMetadata, error)
	ListWatchEvents(ctx context.Context, videoID string, limit, offset int) ([]models.WatchEvent, error)
}

type UploadAPI interface {
	Upload(ctx context.Context, src io.Reader, originalName string) (*models.UploadResponse, error)
}

type Options struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	// UploadDir is served read-only under /uploads when set.
	UploadDir   string
	HealthCheck func(ctx context.Context) error
}

type Server struct {
	analytics AnalyticsAPI
	uploads   UploadAPI
	logger    *logrus.Logger
	opts      Options
}

func NewServer(analytics AnalyticsAPI, uploads UploadAPI, logger *logrus.Logger, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	return &Server{
		analytics: analytics,
		uploads:   uploads,
		logger:    logger,
		opts:      opts,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggingMiddleware(s.logger))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/analytics", s.PostAnalytics)
		api.GET("/analytics", s.GetAnalytics)

		api.POST("/upload", s.PostUpload)
		api.GET("/videos/:id", s.GetVideo)
		api.GET("/videos/:id/events", s.GetWatchEvents)
	}

	if s.opts.UploadDir != "" {
		r.Static("/uploads", s.opts.UploadDir)
	}

	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
}
