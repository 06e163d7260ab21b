// Package kafkabus relays aggregates to a Kafka topic.
package kafkabus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes one JSON message per aggregate, keyed by device id so all
// readings of a node land on the same partition
type Producer struct {
	w      writer
	topic  string
	logger *slog.Logger
}

// NewProducer creates a synchronous producer for topic
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		WriteTimeout: 10 * time.Second,
	}
	return newProducer(w, topic, logger)
}

func newProducer(w writer, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		w:      w,
		topic:  topic,
		logger: logging.Component(logger, "kafka").With(slog.String("topic", topic)),
	}
}

// PublishAggregate encodes and writes agg
func (p *Producer) PublishAggregate(ctx context.Context, agg models.Aggregate) error {
	b, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(agg.DeviceID),
		Value: b,
		Time:  agg.Timestamp,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to %s: %w", p.topic, err)
	}
	p.logger.Debug("published aggregate", "device", agg.DeviceID)
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.w.Close()
}
