package uploader

import (
	"log/slog"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/database"
	"github.com/lisandre-begon/Smart-Environment/internal/kafkabus"
	"github.com/lisandre-begon/Smart-Environment/internal/mqtt"
)

// Settings carries everything any transport may need
type Settings struct {
	Transport string
	Timeout   time.Duration

	ThingSpeakServer string
	ThingSpeakAPIKey string

	MQTT     mqtt.ClientConfig
	Topics   mqtt.Topics
	QoS      byte
	BootedAt time.Time

	ClickHouse database.Config

	KafkaBrokers []string
	KafkaTopic   string
}

// Select resolves the configured transport and builds it. No transport
// connects here; the first upload does.
func Select(s Settings, logger *slog.Logger) (Transport, error) {
	kind, err := Resolve(s.Transport, s.ThingSpeakAPIKey)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ThingSpeak:
		return NewThingSpeak(s.ThingSpeakServer, s.ThingSpeakAPIKey, s.Timeout, logger), nil
	case ClickHouse:
		return NewClickHouse(s.ClickHouse, logger), nil
	case Kafka:
		return NewKafka(kafkabus.NewProducer(s.KafkaBrokers, s.KafkaTopic, logger)), nil
	default:
		if s.MQTT.ConnectTimeout <= 0 {
			s.MQTT.ConnectTimeout = s.Timeout
		}
		client := mqtt.NewClient(s.MQTT, logger)
		return NewMQTT(client, mqtt.NewPublisher(client, s.Topics, s.QoS, s.BootedAt, logger)), nil
	}
}
