package repository

import (
	"context"
	"errors"
	"fmt"

	"video-tracking-system/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VideoRepository is the store behind the analytics core. Every counter
// change is a single in-database increment; nothing reads a counter back
// to write it.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	RecordWatch(ctx context.Context, event *models.WatchEvent) error
	GetStats(ctx context.Context, id string) (*models.VideoStats, error)
	ListWatchEvents(ctx context.Context, id string, limit, offset int) ([]models.WatchEvent, error)
}

type videoRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewVideoRepository(db *gorm.DB, logger *logrus.Logger) VideoRepository {
	return &videoRepository{
		db:     db,
		logger: logger,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	video.Views = 0
	video.TotalWatchTime = 0
	video.Completions = 0

	if err := r.db.WithContext(ctx).Omit("WatchEvents").Create(video).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("video %s: %w", video.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	r.logger.WithFields(logrus.Fields{
		"video_id": video.ID,
		"filename": video.Filename,
		"size":     video.Size,
	}).Info("Created video record")

	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return &video, nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordWatch bumps the parent counters and appends the event in one
// transaction. The UPDATE runs first so that it takes the row lock and
// doubles as the existence check; an unknown video rolls back before the
// insert is attempted.
func (r *videoRepository) RecordWatch(ctx context.Context, event *models.WatchEvent) error {
	var completion int64
	if event.Completed {
		completion = 1
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Video{}).
			Where("id = ?", event.VideoID).
			UpdateColumns(map[string]interface{}{
				"total_watch_time": gorm.Expr("total_watch_time + ?", event.WatchDuration),
				"completions":      gorm.Expr("completions + ?", completion),
			})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateFailed, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateFailed, err)
		}
		return nil
	})
}

func (r *videoRepository) ListWatchEvents(ctx context.Context, id string, limit, offset int) ([]models.WatchEvent, error) {
	var events []models.WatchEvent
	err := r.db.WithContext(ctx).
		Where("video_id = ?", id).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return events, nil
}
