package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
)

// ErrNotConnected is returned when the broker cannot be reached
var ErrNotConnected = errors.New("mqtt: not connected")

var errTimeout = errors.New("timed out")

// Client manages the MQTT connection (low-level connection management only)
// For publishing readings, use Publisher
type Client struct {
	client mqtt.Client
	config ClientConfig
	logger *slog.Logger
}

// ClientConfig holds MQTT client configuration
type ClientConfig struct {
	Broker         string
	ClientID       string // base id, a random suffix is appended per process
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// NewClient prepares an MQTT client. It does not connect: the connection is
// made lazily by EnsureConnected so a missing broker never blocks startup.
func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 10 * time.Second
	}

	c := &Client{
		config: config,
		logger: logging.Component(logger, "mqtt"),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(SessionClientID(config.ClientID))
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	c.client = mqtt.NewClient(opts)
	return c
}

// SessionClientID makes a client id unique to this process so a restarted
// node does not collide with its own stale session on the broker
func SessionClientID(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

// EnsureConnected connects if the client is not already connected. The wait
// ends at ConnectTimeout or when ctx is done, whichever comes first.
func (c *Client) EnsureConnected(ctx context.Context) error {
	if c.client.IsConnected() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	if err := c.wait(ctx, c.client.Connect()); err != nil {
		return fmt.Errorf("%w: connect to %s: %w", ErrNotConnected, c.config.Broker, err)
	}
	return nil
}

// Publish sends a payload and waits for the broker to acknowledge it
func (c *Client) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	if err := c.wait(ctx, c.client.Publish(topic, qos, retained, payload)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(c.config.ConnectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errTimeout
	}
}

// IsConnected returns whether the client is currently connected
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close closes the MQTT client connection
func (c *Client) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("disconnected")
	}
}

func (c *Client) onConnect(mqtt.Client) {
	c.logger.Info("connection established", "broker", c.config.Broker)
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.logger.Warn("connection lost", "error", err)
}
