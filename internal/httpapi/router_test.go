package httpapi

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

type staticStatus models.Status

func (s staticStatus) Status() models.Status { return models.Status(s) }

func newTestServer(t *testing.T, st models.Status) *httptest.Server {
	t.Helper()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "envnode_link_up 1\n")
	})
	srv := httptest.NewServer(NewServer(":0", NewRouter(staticStatus(st), metrics), io.Discard, nil).srv.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, models.Status{
		Device: models.Device{DeviceID: "node-1", FirmwareVersion: "1.0.0"},
		Readings: models.Aggregate{
			Timestamp:   time.Unix(0, 0).UTC(),
			Temperature: math.NaN(),
			Humidity:    51.5,
			Light:       300,
		},
		Alert:  "light_low",
		LinkUp: true,
	})

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Device   models.Device  `json:"device"`
		Readings map[string]any `json:"readings"`
		Alert    string         `json:"alert"`
		LinkUp   bool           `json:"link_up"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "node-1", body.Device.DeviceID)
	assert.Nil(t, body.Readings["temperature"])
	assert.Equal(t, 51.5, body.Readings["humidity"])
	assert.Equal(t, "light_low", body.Alert)
	assert.True(t, body.LinkUp)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t, models.Status{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(b), "envnode_link_up 1")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, models.Status{})

	resp, err := http.Post(srv.URL+"/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusLastUploadOmittedUntilSet(t *testing.T) {
	fetch := func(st models.Status) map[string]any {
		srv := newTestServer(t, st)
		resp, err := http.Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	assert.NotContains(t, fetch(models.Status{}), "last_upload")

	at := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	body := fetch(models.Status{LastUpload: &at})
	assert.Equal(t, "2024-01-01T00:01:00Z", body["last_upload"])
}
