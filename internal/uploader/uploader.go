// Package uploader relays smoothed readings to a cloud endpoint.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// Transport names
const (
	Auto       = "auto"
	ThingSpeak = "thingspeak"
	MQTT       = "mqtt"
	ClickHouse = "clickhouse"
	Kafka      = "kafka"
)

// PlaceholderAPIKey is the sample key shipped in example configs; it never selects ThingSpeak
const PlaceholderAPIKey = "YourThingSpeakAPIKey"

// ErrUnknownTransport is returned for an unsupported transport name
var ErrUnknownTransport = errors.New("unknown upload transport")

// Transport uploads one aggregate. Implementations may connect lazily.
type Transport interface {
	Name() string
	Upload(ctx context.Context, agg models.Aggregate) error
	Close() error
}

// Resolve maps the configured transport to a concrete one. "auto" picks
// ThingSpeak when a real API key is configured and MQTT otherwise.
func Resolve(kind, thingSpeakAPIKey string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "", Auto:
		if thingSpeakAPIKey != "" && thingSpeakAPIKey != PlaceholderAPIKey {
			return ThingSpeak, nil
		}
		return MQTT, nil
	case ThingSpeak, MQTT, ClickHouse, Kafka:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransport, kind)
	}
}
