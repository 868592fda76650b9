package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"video-tracking-system/internal/metrics"
	"video-tracking-system/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// IngestWorker applies analytics reports arriving on a broker topic through
// the same write path as the HTTP API. Bad reports are logged and skipped;
// nothing is retried.
type IngestWorker struct {
	reader    MessageReader
	analytics *AnalyticsService
	validate  *validator.Validate
	logger    *logrus.Logger
	backoff   time.Duration
}

func NewIngestWorker(reader MessageReader, analytics *AnalyticsService, logger *logrus.Logger) *IngestWorker {
	v := validator.New()
	v.SetTagName("binding")

	return &IngestWorker{
		reader:    reader,
		analytics: analytics,
		validate:  v,
		logger:    logger,
		backoff:   time.Second,
	}
}

func (w *IngestWorker) Run(ctx context.Context) error {
	w.logger.Info("Ingest worker started")
	defer w.logger.Info("Ingest worker stopped")

	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.WithError(err).Error("Failed to read analytics report")
			select {
			case <-time.After(w.backoff):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		w.handle(ctx, msg)
	}
}

func (w *IngestWorker) handle(ctx context.Context, msg kafka.Message) {
	log := w.logger.WithFields(logrus.Fields{
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var req models.AnalyticsRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		metrics.IngestRejected.WithLabelValues("kafka", "malformed").Inc()
		log.WithError(err).Warn("Skipping malformed analytics report")
		return
	}
	if err := w.validate.Struct(req); err != nil {
		metrics.IngestRejected.WithLabelValues("kafka", "invalid").Inc()
		log.WithError(err).Warn("Skipping invalid analytics report")
		return
	}

	err := w.analytics.Apply(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		metrics.IngestRejected.WithLabelValues("kafka", "invalid").Inc()
		log.WithError(err).Warn("Skipping invalid analytics report")
	case errors.Is(err, ErrNotFound):
		metrics.IngestRejected.WithLabelValues("kafka", "not_found").Inc()
		log.WithField("video_id", req.VideoID).Warn("Skipping analytics report for unknown video")
	default:
		log.WithError(err).WithField("video_id", req.VideoID).Error("Failed to apply analytics report")
	}
}
