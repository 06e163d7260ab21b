package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lisandre-begon/Smart-Environment/internal/database"
	"github.com/lisandre-begon/Smart-Environment/internal/kafkabus"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
	"github.com/lisandre-begon/Smart-Environment/internal/mqtt"
)

// MQTTTransport publishes through the broker, connecting on first use
type MQTTTransport struct {
	client    *mqtt.Client
	publisher *mqtt.Publisher
}

// NewMQTT wraps an MQTT client and publisher
func NewMQTT(client *mqtt.Client, publisher *mqtt.Publisher) *MQTTTransport {
	return &MQTTTransport{client: client, publisher: publisher}
}

func (t *MQTTTransport) Name() string { return MQTT }

func (t *MQTTTransport) Upload(ctx context.Context, agg models.Aggregate) error {
	return t.publisher.PublishAggregate(ctx, agg)
}

func (t *MQTTTransport) Close() error {
	t.client.Close()
	return nil
}

// ClickHouseTransport inserts rows, opening the connection on first use so an
// unreachable server only costs the current upload cycle
type ClickHouseTransport struct {
	cfg    database.Config
	logger *slog.Logger

	mu sync.Mutex
	db *database.ClickHouseDB
}

// NewClickHouse creates a lazily connected ClickHouse transport
func NewClickHouse(cfg database.Config, logger *slog.Logger) *ClickHouseTransport {
	return &ClickHouseTransport{cfg: cfg, logger: logger}
}

func (t *ClickHouseTransport) Name() string { return ClickHouse }

func (t *ClickHouseTransport) Upload(ctx context.Context, agg models.Aggregate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		db, err := database.NewClickHouseDB(ctx, t.cfg, t.logger)
		if err != nil {
			return fmt.Errorf("clickhouse unavailable: %w", err)
		}
		t.db = db
	}
	return t.db.SaveReading(ctx, agg)
}

func (t *ClickHouseTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// KafkaTransport writes aggregates to a Kafka topic
type KafkaTransport struct {
	producer *kafkabus.Producer
}

// NewKafka wraps a producer
func NewKafka(producer *kafkabus.Producer) *KafkaTransport {
	return &KafkaTransport{producer: producer}
}

func (t *KafkaTransport) Name() string { return Kafka }

func (t *KafkaTransport) Upload(ctx context.Context, agg models.Aggregate) error {
	return t.producer.PublishAggregate(ctx, agg)
}

func (t *KafkaTransport) Close() error {
	return t.producer.Close()
}
