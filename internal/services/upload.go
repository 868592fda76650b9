package services

import (
	"context"
	"io"
	"path/filepath"

	"video-tracking-system/internal/metrics"
	"video-tracking-system/internal/models"
	"video-tracking-system/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const uploadExtension = ".webm"

// BlobStore persists uploaded media under an opaque name.
type BlobStore interface {
	Save(ctx context.Context, name string, src io.Reader) (int64, error)
	Delete(ctx context.Context, name string) error
}

type UploadService struct {
	store  BlobStore
	repo   repository.VideoRepository
	logger *logrus.Logger
}

func NewUploadService(store BlobStore, repo repository.VideoRepository, logger *logrus.Logger) *UploadService {
	return &UploadService{
		store:  store,
		repo:   repo,
		logger: logger,
	}
}

// Upload stores the blob as <id>.webm and registers its video record. If the
// record cannot be created the blob is removed again.
func (s *UploadService) Upload(ctx context.Context, src io.Reader, originalName string) (*models.UploadResponse, error) {
	id := uuid.New().String()
	filename := id + uploadExtension

	size, err := s.store.Save(ctx, filename, src)
	if err != nil {
		s.logger.WithError(err).WithField("filename", filename).Error("Failed to store uploaded video")
		return nil, translateStoreError(err)
	}

	if _, err := s.CreateVideoRecord(ctx, id, filename, filepath.Base(originalName), size); err != nil {
		if delErr := s.store.Delete(ctx, filename); delErr != nil {
			s.logger.WithError(delErr).WithField("filename", filename).Warn("Failed to remove orphaned upload")
		}
		return nil, err
	}

	metrics.VideosUploaded.Inc()

	return &models.UploadResponse{
		Success:  true,
		ID:       id,
		ShareURL: "/watch/" + id,
		Filename: filename,
	}, nil
}

// CreateVideoRecord registers an uploaded asset. It must be called exactly
// once per id; a second call for the same id fails with ErrConflict.
func (s *UploadService) CreateVideoRecord(ctx context.Context, id, storageRef, originalName string, sizeBytes int64) (*models.Video, error) {
	if id == "" {
		return nil, invalidArgument("video ID is required")
	}
	if storageRef == "" {
		return nil, invalidArgument("storage reference is required")
	}
	if sizeBytes < 0 {
		return nil, invalidArgument("size must be non-negative")
	}

	video := &models.Video{
		ID:           id,
		Filename:     storageRef,
		OriginalName: originalName,
		Size:         sizeBytes,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		translated := translateStoreError(err)
		s.logger.WithError(err).WithField("video_id", id).Error("Failed to create video record")
		return nil, translated
	}
	return video, nil
}
