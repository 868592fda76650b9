package services

import (
	"context"
	"io"
	"sync"

	"video-tracking-system/internal/logger"
	"video-tracking-system/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Logger {
	return logger.New(io.Discard, "error")
}

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	args := m.Called(ctx, id)
	video, _ := args.Get(0).(*models.Video)
	return video, args.Error(1)
}

func (m *MockVideoRepository) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVideoRepository) RecordWatch(ctx context.Context, event *models.WatchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockVideoRepository) GetStats(ctx context.Context, id string) (*models.VideoStats, error) {
	args := m.Called(ctx, id)
	stats, _ := args.Get(0).(*models.VideoStats)
	return stats, args.Error(1)
}

func (m *MockVideoRepository) ListWatchEvents(ctx context.Context, id string, limit, offset int) ([]models.WatchEvent, error) {
	args := m.Called(ctx, id, limit, offset)
	events, _ := args.Get(0).([]models.WatchEvent)
	return events, args.Error(1)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.AnalyticsEvent
	reject bool
}

func (p *fakePublisher) Publish(event models.AnalyticsEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false
	}
	p.events = append(p.events, event)
	return true
}

func (p *fakePublisher) published() []models.AnalyticsEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.AnalyticsEvent(nil), p.events...)
}

type fakeCache struct {
	videos map[string]models.VideoMetadata
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{videos: map[string]models.VideoMetadata{}}
}

func (c *fakeCache) GetVideo(_ context.Context, id string) (*models.VideoMetadata, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	meta, ok := c.videos[id]
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

func (c *fakeCache) SetVideo(_ context.Context, meta *models.VideoMetadata) error {
	c.sets++
	c.videos[meta.ID] = *meta
	return nil
}
