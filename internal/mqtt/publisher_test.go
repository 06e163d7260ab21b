package mqtt

import (
	"context"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

type received struct {
	mu       sync.Mutex
	payloads map[string]string
}

func (r *received) add(topic string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[topic] = string(payload)
}

func (r *received) snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.payloads))
	for k, v := range r.payloads {
		out[k] = v
	}
	return out
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// startBroker runs an embedded broker and records every message under envnode/#
func startBroker(t *testing.T) (string, *received) {
	t.Helper()

	server := mochi.New(&mochi.Options{InlineClient: true})
	require.NoError(t, server.AddHook(new(auth.AllowHook), nil))

	addr := freeAddr(t)
	require.NoError(t, server.AddListener(listeners.NewTCP(listeners.Config{
		Type:    "tcp",
		ID:      "test",
		Address: addr,
	})))
	require.NoError(t, server.Serve())
	t.Cleanup(func() { _ = server.Close() })

	rec := &received{payloads: map[string]string{}}
	require.NoError(t, server.Subscribe("envnode/#", 1, func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
		rec.add(pk.TopicName, pk.Payload)
	}))
	return addr, rec
}

func TestPublishAggregate(t *testing.T) {
	addr, rec := startBroker(t)

	client := NewClient(ClientConfig{Broker: "tcp://" + addr, ClientID: "envnode-test", ConnectTimeout: 5 * time.Second}, nil)
	t.Cleanup(client.Close)

	boot := time.Unix(1_700_000_000, 0)
	pub := NewPublisher(client, DefaultTopics(), 1, boot, nil)

	err := pub.PublishAggregate(context.Background(), models.Aggregate{
		Timestamp:   boot.Add(1500 * time.Millisecond),
		DeviceID:    "node-1",
		Temperature: 21.5,
		Humidity:    40.25,
		Light:       900,
	})
	require.NoError(t, err)
	assert.True(t, client.IsConnected())

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 4 }, 5*time.Second, 20*time.Millisecond)
	got := rec.snapshot()
	assert.Equal(t, " 21.50", got["envnode/temperature"])
	assert.Equal(t, " 40.25", got["envnode/humidity"])
	assert.Equal(t, "900", got["envnode/light"])
	assert.Equal(t, "OK 1500", got["envnode/status"])
}

func TestPublishAggregateSkipsMissingClimate(t *testing.T) {
	addr, rec := startBroker(t)

	client := NewClient(ClientConfig{Broker: "tcp://" + addr, ClientID: "envnode-test"}, nil)
	t.Cleanup(client.Close)

	boot := time.Now()
	pub := NewPublisher(client, DefaultTopics(), 0, boot, nil)
	require.NoError(t, pub.PublishAggregate(context.Background(), models.Aggregate{
		Timestamp:   boot,
		Temperature: math.NaN(),
		Humidity:    math.NaN(),
		Light:       12,
	}))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 5*time.Second, 20*time.Millisecond)
	got := rec.snapshot()
	assert.NotContains(t, got, "envnode/temperature")
	assert.NotContains(t, got, "envnode/humidity")
	assert.Equal(t, "12", got["envnode/light"])
}

func TestEnsureConnectedUnreachable(t *testing.T) {
	client := NewClient(ClientConfig{Broker: "tcp://" + freeAddr(t), ClientID: "envnode-test", ConnectTimeout: 2 * time.Second}, nil)

	err := client.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPublishAggregateHonoursContext(t *testing.T) {
	addr, rec := startBroker(t)

	client := NewClient(ClientConfig{Broker: "tcp://" + addr, ClientID: "envnode-test", ConnectTimeout: 5 * time.Second}, nil)
	t.Cleanup(client.Close)
	pub := NewPublisher(client, DefaultTopics(), 1, time.Now(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.PublishAggregate(ctx, models.Aggregate{Timestamp: time.Now(), Temperature: 20, Humidity: 40, Light: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, client.IsConnected())
	assert.Empty(t, rec.snapshot())
}

func TestEnsureConnectedBoundedByContext(t *testing.T) {
	// a listener that accepts but never answers CONNECT
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	client := NewClient(ClientConfig{Broker: "tcp://" + ln.Addr().String(), ClientID: "envnode-test", ConnectTimeout: time.Minute}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = client.EnsureConnected(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestSessionClientID(t *testing.T) {
	a := SessionClientID("ESP32_EnvNode")
	b := SessionClientID("ESP32_EnvNode")

	assert.Regexp(t, `^ESP32_EnvNode-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "  5.00", FormatFloat(5))
	assert.Equal(t, "-12.50", FormatFloat(-12.5))
	assert.Equal(t, "OK 30000", StatusPayload(30*time.Second))
}
