package uploader

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisandre-begon/Smart-Environment/internal/models"
	"github.com/lisandre-begon/Smart-Environment/internal/mqtt"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		kind   string
		apiKey string
		want   string
	}{
		{"auto", "ABCDEF123", ThingSpeak},
		{"auto", PlaceholderAPIKey, MQTT},
		{"auto", "", MQTT},
		{"", "ABCDEF123", ThingSpeak},
		{"MQTT", "ABCDEF123", MQTT},
		{"clickhouse", "", ClickHouse},
		{" kafka ", "", Kafka},
		{"thingspeak", "", ThingSpeak},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.kind, tt.apiKey)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "kind=%q key=%q", tt.kind, tt.apiKey)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("carrier-pigeon", "")
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

type thingSpeakStub struct {
	mu      sync.Mutex
	queries []map[string]string
	status  int
	body    string
}

func (s *thingSpeakStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := map[string]string{"path": r.URL.Path}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	s.queries = append(s.queries, q)
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func (s *thingSpeakStub) recorded() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.queries...)
}

func TestThingSpeakUpload(t *testing.T) {
	stub := &thingSpeakStub{status: http.StatusOK, body: "42"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	ts := NewThingSpeak(srv.URL, "KEY123", 5*time.Second, nil)
	t.Cleanup(func() { _ = ts.Close() })

	err := ts.Upload(context.Background(), models.Aggregate{Temperature: 21.457, Humidity: 48, Light: 1024})
	require.NoError(t, err)

	queries := stub.recorded()
	require.Len(t, queries, 1)
	q := queries[0]
	assert.Equal(t, "/update", q["path"])
	assert.Equal(t, "KEY123", q["api_key"])
	assert.Equal(t, "21.46", q["field1"])
	assert.Equal(t, "48.00", q["field2"])
	assert.Equal(t, "1024", q["field3"])
}

func TestThingSpeakOmitsMissingFields(t *testing.T) {
	stub := &thingSpeakStub{status: http.StatusOK, body: "7"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	ts := NewThingSpeak(srv.URL, "KEY123", 5*time.Second, nil)
	require.NoError(t, ts.Upload(context.Background(), models.Aggregate{Temperature: math.NaN(), Humidity: math.NaN(), Light: 5}))

	queries := stub.recorded()
	require.Len(t, queries, 1)
	q := queries[0]
	assert.NotContains(t, q, "field1")
	assert.NotContains(t, q, "field2")
	assert.Equal(t, "5", q["field3"])
}

func TestThingSpeakErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"server error", http.StatusInternalServerError, "", func(t *testing.T, err error) {
			assert.ErrorContains(t, err, "HTTP 500")
		}},
		{"rejected", http.StatusOK, "0", func(t *testing.T, err error) {
			assert.True(t, errors.Is(err, ErrRejected))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(&thingSpeakStub{status: tt.status, body: tt.body})
			t.Cleanup(srv.Close)

			err := NewThingSpeak(srv.URL, "KEY123", 5*time.Second, nil).
				Upload(context.Background(), models.Aggregate{Temperature: 20, Humidity: 40})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestThingSpeakBaseURL(t *testing.T) {
	ts := NewThingSpeak("api.thingspeak.com", "K", time.Second, nil)
	assert.Equal(t, "http://api.thingspeak.com/update?api_key=K&field1=20.00&field2=40.00&field3=9",
		ts.updateURL(models.Aggregate{Temperature: 20, Humidity: 40, Light: 9}))
}

func TestSelect(t *testing.T) {
	base := Settings{
		Timeout:          time.Second,
		ThingSpeakServer: "api.thingspeak.com",
		MQTT:             mqtt.ClientConfig{Broker: "tcp://127.0.0.1:1", ClientID: "node"},
		Topics:           mqtt.DefaultTopics(),
		KafkaBrokers:     []string{"127.0.0.1:9092"},
		KafkaTopic:       "readings",
	}

	tests := []struct {
		transport string
		apiKey    string
		want      string
	}{
		{"auto", "REALKEY", ThingSpeak},
		{"auto", PlaceholderAPIKey, MQTT},
		{"clickhouse", "", ClickHouse},
		{"kafka", "", Kafka},
	}
	for _, tt := range tests {
		s := base
		s.Transport = tt.transport
		s.ThingSpeakAPIKey = tt.apiKey

		tr, err := Select(s, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tr.Name())
		assert.NoError(t, tr.Close())
	}

	_, err := Select(Settings{Transport: "fax"}, nil)
	assert.ErrorIs(t, err, ErrUnknownTransport)
}
