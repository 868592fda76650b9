package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"video-tracking-system/internal/metrics"
	"video-tracking-system/internal/models"
	"video-tracking-system/internal/repository"

	"github.com/sirupsen/logrus"
)

const maxEventPageSize = 500

// EventPublisher receives events after they are committed. Publish must not
// block; a false return means the event was dropped.
type EventPublisher interface {
	Publish(event models.AnalyticsEvent) bool
}

// VideoCache holds immutable video metadata. A miss is (nil, nil).
type VideoCache interface {
	GetVideo(ctx context.Context, id string) (*models.VideoMetadata, error)
	SetVideo(ctx context.Context, video *models.VideoMetadata) error
}

// AnalyticsService is both the ingestion write path and the stats read
// path. It holds no mutable state of its own.
type AnalyticsService struct {
	repo      repository.VideoRepository
	publisher EventPublisher
	cache     VideoCache
	logger    *logrus.Logger
}

func NewAnalyticsService(repo repository.VideoRepository, publisher EventPublisher, cache VideoCache, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Apply dispatches one analytics report by action.
func (s *AnalyticsService) Apply(ctx context.Context, req models.AnalyticsRequest) error {
	if req.VideoID == "" {
		return invalidArgument("video ID is required")
	}

	switch req.Action {
	case models.ActionView:
		return s.RecordView(ctx, req.VideoID)
	case models.ActionWatch:
		return s.RecordWatch(ctx, req.VideoID, req.WatchPercentage, req.WatchDuration, req.Completed)
	default:
		return invalidArgument("invalid action %q", req.Action)
	}
}

func (s *AnalyticsService) RecordView(ctx context.Context, videoID string) error {
	if videoID == "" {
		return invalidArgument("video ID is required")
	}

	if err := s.repo.IncrementViews(ctx, videoID); err != nil {
		return s.storeError(err, "Failed to record view", videoID)
	}

	metrics.ViewsRecorded.Inc()
	s.publish(models.AnalyticsEvent{
		Action:    models.ActionView,
		VideoID:   videoID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// RecordWatch appends a watch event and adds its duration (and completion,
// if any) to the video's counters as one unit. Reports are not deduplicated:
// an identical retry is counted again.
func (s *AnalyticsService) RecordWatch(ctx context.Context, videoID string, watchPercentage, watchDurationSeconds float64, completed bool) error {
	if videoID == "" {
		return invalidArgument("video ID is required")
	}
	if math.IsNaN(watchPercentage) || watchPercentage < 0 || watchPercentage > 100 {
		return invalidArgument("watch percentage %v outside [0, 100]", watchPercentage)
	}
	if math.IsNaN(watchDurationSeconds) || math.IsInf(watchDurationSeconds, 0) || watchDurationSeconds < 0 {
		return invalidArgument("watch duration %v must be a non-negative number", watchDurationSeconds)
	}

	event := &models.WatchEvent{
		VideoID:         videoID,
		WatchPercentage: watchPercentage,
		WatchDuration:   watchDurationSeconds,
		Completed:       completed,
	}
	if err := s.repo.RecordWatch(ctx, event); err != nil {
		return s.storeError(err, "Failed to record watch event", videoID)
	}

	metrics.WatchEventsRecorded.WithLabelValues(strconv.FormatBool(completed)).Inc()
	metrics.WatchSecondsRecorded.Add(watchDurationSeconds)

	s.logger.WithFields(logrus.Fields{
		"video_id":         videoID,
		"event_id":         event.ID,
		"watch_percentage": watchPercentage,
		"watch_duration":   watchDurationSeconds,
		"completed":        completed,
	}).Debug("Recorded watch event")

	s.publish(models.AnalyticsEvent{
		Action:          models.ActionWatch,
		VideoID:         videoID,
		WatchPercentage: watchPercentage,
		WatchDuration:   watchDurationSeconds,
		Completed:       completed,
		EventID:         event.ID,
		Timestamp:       event.CreatedAt,
	})
	return nil
}

func (s *AnalyticsService) GetStats(ctx context.Context, videoID string) (*models.VideoStats, error) {
	if videoID == "" {
		return nil, invalidArgument("video ID is required")
	}

	stats, err := s.repo.GetStats(ctx, videoID)
	if err != nil {
		return nil, s.storeError(err, "Failed to fetch stats", videoID)
	}
	return stats, nil
}

// GetVideo returns the immutable metadata for the watch page. Counters are
// never served from here.
func (s *AnalyticsService) GetVideo(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if videoID == "" {
		return nil, invalidArgument("video ID is required")
	}

	if s.cache != nil {
		meta, err := s.cache.GetVideo(ctx, videoID)
		if err != nil {
			s.logger.WithError(err).WithField("video_id", videoID).Warn("Video cache read failed")
		} else if meta != nil {
			return meta, nil
		}
	}

	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, s.storeError(err, "Failed to fetch video", videoID)
	}

	meta := video.Metadata()
	if s.cache != nil {
		if err := s.cache.SetVideo(ctx, &meta); err != nil {
			s.logger.WithError(err).WithField("video_id", videoID).Warn("Video cache write failed")
		}
	}
	return &meta, nil
}

func (s *AnalyticsService) ListWatchEvents(ctx context.Context, videoID string, limit, offset int) ([]models.WatchEvent, error) {
	if videoID == "" {
		return nil, invalidArgument("video ID is required")
	}
	if limit <= 0 || limit > maxEventPageSize {
		return nil, invalidArgument("limit must be between 1 and %d", maxEventPageSize)
	}
	if offset < 0 {
		return nil, invalidArgument("offset must be non-negative")
	}

	if _, err := s.repo.GetByID(ctx, videoID); err != nil {
		return nil, s.storeError(err, "Failed to fetch video", videoID)
	}

	events, err := s.repo.ListWatchEvents(ctx, videoID, limit, offset)
	if err != nil {
		return nil, s.storeError(err, "Failed to list watch events", videoID)
	}
	return events, nil
}

func (s *AnalyticsService) publish(event models.AnalyticsEvent) {
	if s.publisher == nil {
		return
	}
	if !s.publisher.Publish(event) {
		s.logger.WithFields(logrus.Fields{
			"video_id": event.VideoID,
			"action":   event.Action,
		}).Warn("Analytics event dropped from publish queue")
	}
}

func (s *AnalyticsService) storeError(err error, msg, videoID string) error {
	translated := translateStoreError(err)
	if translated != ErrNotFound {
		s.logger.WithError(err).WithField("video_id", videoID).Error(msg)
	}
	return translated
}
