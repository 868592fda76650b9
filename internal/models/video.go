package models

import "time"

type Video struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Filename       string       `json:"filename" gorm:"not null"`
	OriginalName   string       `json:"original_name"`
	Size           int64        `json:"size"`
	Views          int64        `json:"views" gorm:"not null;default:0;check:chk_videos_views,views >= 0"`
	TotalWatchTime float64      `json:"total_watch_time" gorm:"not null;default:0;check:chk_videos_total_watch_time,total_watch_time >= 0"`
	Completions    int64        `json:"completions" gorm:"not null;default:0;check:chk_videos_completions,completions >= 0"`
	CreatedAt      time.Time    `json:"created_at"`
	WatchEvents    []WatchEvent `json:"-" gorm:"foreignKey:VideoID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

// WatchEvent is one append-only playback report. WatchPercentage is the
// furthest position at report time, WatchDuration the seconds played since
// the previous report.
type WatchEvent struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	VideoID         string    `json:"video_id" gorm:"type:varchar(64);not null;index"`
	WatchPercentage float64   `json:"watch_percentage" gorm:"not null;check:chk_watch_events_percentage,watch_percentage >= 0 AND watch_percentage <= 100"`
	WatchDuration   float64   `json:"watch_duration" gorm:"not null;check:chk_watch_events_duration,watch_duration >= 0"`
	Completed       bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

// AnalyticsRequest is the body accepted by POST /api/analytics and by the
// watch-reports topic.
type AnalyticsRequest struct {
	Action          string  `json:"action" binding:"required"`
	VideoID         string  `json:"videoId" binding:"required"`
	WatchPercentage float64 `json:"watchPercentage" binding:"gte=0,lte=100"`
	WatchDuration   float64 `json:"watchDuration" binding:"gte=0"`
	Completed       bool    `json:"completed"`
}

const (
	ActionView  = "view"
	ActionWatch = "watch"
)

type VideoStats struct {
	Views              int64   `json:"views"`
	Completions        int64   `json:"completions"`
	AvgWatchPercentage float64 `json:"avgWatchPercentage"`
	TotalWatchTime     float64 `json:"totalWatchTime"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	ShareURL string `json:"shareUrl"`
	Filename string `json:"filename"`
}

// AnalyticsEvent is published to the event topic after a write commits.
type AnalyticsEvent struct {
	Action          string    `json:"action"`
	VideoID         string    `json:"video_id"`
	WatchPercentage float64   `json:"watch_percentage,omitempty"`
	WatchDuration   float64   `json:"watch_duration,omitempty"`
	Completed       bool      `json:"completed,omitempty"`
	EventID         uint      `json:"event_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// VideoMetadata is the immutable part of a Video, safe to cache.
type VideoMetadata struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

func (v *Video) Metadata() VideoMetadata {
	return VideoMetadata{
		ID:           v.ID,
		Filename:     v.Filename,
		OriginalName: v.OriginalName,
		Size:         v.Size,
		CreatedAt:    v.CreatedAt,
	}
}
