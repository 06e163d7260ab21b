// Package metrics exposes node readings and counters to Prometheus.
package metrics

import (
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// Upload results
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Metrics holds the node collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	light       prometheus.Gauge
	alertState  prometheus.Gauge
	linkUp      prometheus.Gauge
	rejected    *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envnode_temperature_celsius",
			Help: "Smoothed temperature; NaN until a valid sample arrives.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envnode_humidity_percent",
			Help: "Smoothed relative humidity; NaN until a valid sample arrives.",
		}),
		light: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envnode_light_raw",
			Help: "Smoothed raw light level (0-4095).",
		}),
		alertState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envnode_alert_state",
			Help: "Current alert state (0 normal, 1 temp_high, 2 temp_low, 3 humid_high, 4 humid_low, 5 light_low).",
		}),
		linkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envnode_link_up",
			Help: "1 when the uplink probe succeeds.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "envnode_samples_rejected_total",
			Help: "Samples dropped because they were NaN or out of range.",
		}, []string{"signal"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "envnode_uploads_total",
			Help: "Upload attempts by transport and result.",
		}, []string{"transport", "result"}),
	}

	m.registry.MustRegister(
		m.temperature,
		m.humidity,
		m.light,
		m.alertState,
		m.linkUp,
		m.rejected,
		m.uploads,
		collectors.NewGoCollector(),
	)
	m.temperature.Set(math.NaN())
	m.humidity.Set(math.NaN())
	return m
}

// ObserveReadings records the latest smoothed values and alert state
func (m *Metrics) ObserveReadings(agg models.Aggregate, alertState int) {
	m.temperature.Set(agg.Temperature)
	m.humidity.Set(agg.Humidity)
	m.light.Set(float64(agg.Light))
	m.alertState.Set(float64(alertState))
}

// SetLink records the uplink state
func (m *Metrics) SetLink(up bool) {
	if up {
		m.linkUp.Set(1)
	} else {
		m.linkUp.Set(0)
	}
}

// SampleRejected counts a dropped sample for signal
func (m *Metrics) SampleRejected(signal string) {
	m.rejected.WithLabelValues(signal).Inc()
}

// Upload counts an upload attempt
func (m *Metrics) Upload(transport, result string) {
	m.uploads.WithLabelValues(transport, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
