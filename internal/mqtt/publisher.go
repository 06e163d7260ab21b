package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// Topics are the per-signal publish topics
type Topics struct {
	Temperature string
	Humidity    string
	Light       string
	Status      string
}

// DefaultTopics returns the envnode/<signal> topic layout
func DefaultTopics() Topics {
	return Topics{
		Temperature: "envnode/temperature",
		Humidity:    "envnode/humidity",
		Light:       "envnode/light",
		Status:      "envnode/status",
	}
}

// Publisher publishes one aggregate as plain-text values on four topics
type Publisher struct {
	client   *Client
	topics   Topics
	qos      byte
	bootedAt time.Time
	logger   *slog.Logger
}

// NewPublisher creates a new MQTT publisher
func NewPublisher(client *Client, topics Topics, qos byte, bootedAt time.Time, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:   client,
		topics:   topics,
		qos:      qos,
		bootedAt: bootedAt,
		logger:   logging.Component(logger, "mqtt-publisher"),
	}
}

// PublishAggregate connects if needed and publishes temperature, humidity,
// light and a status line. Missing climate values are not published. ctx
// bounds the whole upload.
func (p *Publisher) PublishAggregate(ctx context.Context, agg models.Aggregate) error {
	if err := p.client.EnsureConnected(ctx); err != nil {
		return err
	}

	msgs := make([]message, 0, 4)
	if !math.IsNaN(agg.Temperature) {
		msgs = append(msgs, message{p.topics.Temperature, FormatFloat(agg.Temperature)})
	}
	if !math.IsNaN(agg.Humidity) {
		msgs = append(msgs, message{p.topics.Humidity, FormatFloat(agg.Humidity)})
	}
	msgs = append(msgs,
		message{p.topics.Light, strconv.Itoa(agg.Light)},
		message{p.topics.Status, StatusPayload(agg.Timestamp.Sub(p.bootedAt))},
	)

	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.client.Publish(ctx, m.topic, p.qos, false, []byte(m.payload)); err != nil {
			return err
		}
	}

	p.logger.Debug("published aggregate", "device", agg.DeviceID, "messages", len(msgs))
	return nil
}

type message struct {
	topic   string
	payload string
}

// FormatFloat renders a value right-aligned in six columns with two decimals
func FormatFloat(v float64) string {
	return fmt.Sprintf("%6.2f", v)
}

// StatusPayload is "OK <uptime in milliseconds>"
func StatusPayload(uptime time.Duration) string {
	return "OK " + strconv.FormatInt(uptime.Milliseconds(), 10)
}
