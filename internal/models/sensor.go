package models

import (
	"encoding/json"
	"math"
	"time"
)

// Aggregate is one set of smoothed readings as displayed and uploaded
type Aggregate struct {
	Timestamp   time.Time `json:"timestamp"`
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"` // Celsius, NaN when no valid sample yet
	Humidity    float64   `json:"humidity"`    // Percentage 0-100, NaN when no valid sample yet
	Light       int       `json:"light"`       // Raw ADC 0-4095
	Alert       string    `json:"alert,omitempty"`
}

// HasClimate reports whether both temperature and humidity carry a value
func (a Aggregate) HasClimate() bool {
	return !math.IsNaN(a.Temperature) && !math.IsNaN(a.Humidity)
}

// MarshalJSON encodes missing (NaN) temperature or humidity as null,
// which encoding/json cannot do for a bare float.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp   time.Time `json:"timestamp"`
		DeviceID    string    `json:"device_id"`
		Temperature *float64  `json:"temperature"`
		Humidity    *float64  `json:"humidity"`
		Light       int       `json:"light"`
		Alert       string    `json:"alert,omitempty"`
	}{
		Timestamp:   a.Timestamp,
		DeviceID:    a.DeviceID,
		Temperature: nullable(a.Temperature),
		Humidity:    nullable(a.Humidity),
		Light:       a.Light,
		Alert:       a.Alert,
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
