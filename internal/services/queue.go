package services

import (
	"context"
	"time"

	"video-tracking-system/internal/metrics"
	"video-tracking-system/internal/models"

	"github.com/sirupsen/logrus"
)

// BatchPublisher delivers a batch of committed analytics events downstream.
type BatchPublisher interface {
	PublishEvents(ctx context.Context, events []models.AnalyticsEvent) error
}

// EventQueue buffers committed events and publishes them in batches. It is
// best effort: a full queue drops events and a failed batch is logged after
// the last retry.
type EventQueue struct {
	events         chan models.AnalyticsEvent
	publisher      BatchPublisher
	logger         *logrus.Logger
	batchSize      int
	batchTimeout   time.Duration
	maxRetries     int
	retryDelay     time.Duration
	publishTimeout time.Duration
}

func NewEventQueue(publisher BatchPublisher, logger *logrus.Logger, bufferSize, batchSize int, batchTimeout time.Duration) *EventQueue {
	return &EventQueue{
		events:         make(chan models.AnalyticsEvent, bufferSize),
		publisher:      publisher,
		logger:         logger,
		batchSize:      batchSize,
		batchTimeout:   batchTimeout,
		maxRetries:     3,
		retryDelay:     time.Second,
		publishTimeout: 10 * time.Second,
	}
}

func (q *EventQueue) Publish(event models.AnalyticsEvent) bool {
	select {
	case q.events <- event:
		metrics.QueueSize.Set(float64(len(q.events)))
		return true
	default:
		metrics.EventsPublished.WithLabelValues("dropped").Inc()
		return false
	}
}

func (q *EventQueue) Len() int {
	return len(q.events)
}

// StartProcessor runs until ctx is cancelled, then flushes whatever is
// still buffered before returning.
func (q *EventQueue) StartProcessor(ctx context.Context) {
	batch := make([]models.AnalyticsEvent, 0, q.batchSize)
	timer := time.NewTimer(q.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			batch = q.drain(batch)
			if len(batch) > 0 {
				q.processBatch(batch)
			}
			metrics.QueueSize.Set(0)
			return
		case event := <-q.events:
			batch = append(batch, event)
			if len(batch) >= q.batchSize {
				q.processBatch(batch)
				batch = batch[:0]
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(q.batchTimeout)
			}
		case <-timer.C:
			if len(batch) > 0 {
				q.processBatch(batch)
				batch = batch[:0]
			}
			timer.Reset(q.batchTimeout)
		}
		metrics.QueueSize.Set(float64(len(q.events)))
	}
}

func (q *EventQueue) drain(batch []models.AnalyticsEvent) []models.AnalyticsEvent {
	for {
		select {
		case event := <-q.events:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

// processBatch gives every attempt its own deadline so that the final flush
// still runs after the processor's context is cancelled.
func (q *EventQueue) processBatch(events []models.AnalyticsEvent) {
	if len(events) == 0 {
		return
	}

	for i := 0; i < q.maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), q.publishTimeout)
		err := q.publisher.PublishEvents(ctx, events)
		cancel()
		if err == nil {
			metrics.EventsPublished.WithLabelValues("ok").Add(float64(len(events)))
			return
		}

		q.logger.WithError(err).Warnf("Failed to publish event batch (attempt %d/%d)", i+1, q.maxRetries)
		if i == q.maxRetries-1 {
			q.logger.WithError(err).WithField("events", len(events)).Error("Dropping analytics events after all retries")
			metrics.EventsPublished.WithLabelValues("failed").Add(float64(len(events)))
			return
		}
		time.Sleep(time.Duration(i+1) * q.retryDelay)
	}
}
