package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-tracking-system/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokerURL, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokerURL),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// Producer publishes analytics events keyed by video ID, so every event of
// a video lands on the same partition.
type Producer struct {
	writer MessageWriter
}

func NewProducer(writer MessageWriter) *Producer {
	return &Producer{writer: writer}
}

func (p *Producer) PublishEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal analytics event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.VideoID),
			Value: value,
			Time:  event.Timestamp,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write messages to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
