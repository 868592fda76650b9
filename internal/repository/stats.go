package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"video-tracking-system/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetStats reads the stored counters and averages the event log inside one
// read-only REPEATABLE READ transaction, so both halves of the result come
// from the same snapshot.
func (r *videoRepository) GetStats(ctx context.Context, id string) (*models.VideoStats, error) {
	var stats models.VideoStats

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var video models.Video
		err := tx.Select("id", "views", "completions", "total_watch_time").
			Where("id = ?", id).
			Take(&video).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}

		var result struct {
			AvgPercentage float64
			EventCount    int64
		}
		query := `
			SELECT
				COALESCE(AVG(watch_percentage), 0) AS avg_percentage,
				COUNT(*) AS event_count
			FROM watch_events
			WHERE video_id = ?
		`
		if err := tx.Raw(query, id).Scan(&result).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}

		stats = models.VideoStats{
			Views:              video.Views,
			Completions:        video.Completions,
			AvgWatchPercentage: result.AvgPercentage,
			TotalWatchTime:     video.TotalWatchTime,
		}

		r.logger.WithFields(logrus.Fields{
			"video_id":    id,
			"views":       video.Views,
			"completions": video.Completions,
			"events":      result.EventCount,
		}).Debug("Retrieved video stats")

		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
