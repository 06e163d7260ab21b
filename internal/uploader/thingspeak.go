package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// ErrRejected is returned when ThingSpeak answers 0, meaning the update was
// not stored (bad key or rate limit)
var ErrRejected = errors.New("thingspeak: update rejected")

// ThingSpeakTransport sends field1..3 through the ThingSpeak update API
type ThingSpeakTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewThingSpeak creates a ThingSpeak transport. server is a host name
// (api.thingspeak.com) or a full base URL.
func NewThingSpeak(server, apiKey string, timeout time.Duration, logger *slog.Logger) *ThingSpeakTransport {
	base := strings.TrimRight(server, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &ThingSpeakTransport{
		baseURL: base,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.Component(logger, "thingspeak"),
	}
}

func (t *ThingSpeakTransport) Name() string { return ThingSpeak }

// Upload issues GET /update?api_key=..&field1=temp&field2=humidity&field3=light
func (t *ThingSpeakTransport) Upload(ctx context.Context, agg models.Aggregate) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.updateURL(agg), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("thingspeak request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64))
	t.logger.Debug("response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("thingspeak returned HTTP %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) == "0" {
		return ErrRejected
	}
	return nil
}

func (t *ThingSpeakTransport) updateURL(agg models.Aggregate) string {
	q := url.Values{}
	q.Set("api_key", t.apiKey)
	if !math.IsNaN(agg.Temperature) {
		q.Set("field1", strconv.FormatFloat(agg.Temperature, 'f', 2, 64))
	}
	if !math.IsNaN(agg.Humidity) {
		q.Set("field2", strconv.FormatFloat(agg.Humidity, 'f', 2, 64))
	}
	q.Set("field3", strconv.Itoa(agg.Light))
	return t.baseURL + "/update?" + q.Encode()
}

func (t *ThingSpeakTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
