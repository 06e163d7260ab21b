package aggregator

import (
	"log/slog"
	"math"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// ValidRange is the inclusive interval a raw sample must fall in to be kept
type ValidRange struct {
	Min float64
	Max float64
}

// Ranges holds the valid range of each signal
type Ranges struct {
	Temperature ValidRange // Celsius
	Humidity    ValidRange // Percentage
	Light       ValidRange // Raw ADC counts
}

// DefaultRanges returns the DHT11 / 12-bit ADC ranges
func DefaultRanges() Ranges {
	return Ranges{
		Temperature: ValidRange{Min: -40, Max: 80},
		Humidity:    ValidRange{Min: 0, Max: 100},
		Light:       ValidRange{Min: 0, Max: 4095},
	}
}

// IsValid reports whether value is a number inside [min, max]
func IsValid(value, min, max float64) bool {
	return !math.IsNaN(value) && value >= min && value <= max
}

// SensorBuffer smooths temperature, humidity and light through one
// moving average each. Invalid samples never reach a filter.
type SensorBuffer struct {
	deviceID string
	ranges   Ranges
	logger   *slog.Logger

	temperature *MovingAverage
	humidity    *MovingAverage
	light       *MovingAverage
}

// NewSensorBuffer creates a sensor buffer with the given window and ranges
func NewSensorBuffer(deviceID string, window int, ranges Ranges, logger *slog.Logger) *SensorBuffer {
	return &SensorBuffer{
		deviceID:    deviceID,
		ranges:      ranges,
		logger:      logging.Component(logger, "aggregator"),
		temperature: NewMovingAverage(window),
		humidity:    NewMovingAverage(window),
		light:       NewMovingAverage(window),
	}
}

// AddTemperature adds a temperature sample if it is valid and reports whether it was kept
func (sb *SensorBuffer) AddTemperature(value float64) bool {
	return sb.add(sb.temperature, "temperature", value, sb.ranges.Temperature)
}

// AddHumidity adds a humidity sample if it is valid and reports whether it was kept
func (sb *SensorBuffer) AddHumidity(value float64) bool {
	return sb.add(sb.humidity, "humidity", value, sb.ranges.Humidity)
}

// AddLight adds a light sample if it is valid and reports whether it was kept
func (sb *SensorBuffer) AddLight(value int) bool {
	return sb.add(sb.light, "light", float64(value), sb.ranges.Light)
}

func (sb *SensorBuffer) add(f *MovingAverage, signal string, value float64, r ValidRange) bool {
	if !IsValid(value, r.Min, r.Max) {
		sb.logger.Debug("rejected sample", "signal", signal, "value", value, "min", r.Min, "max", r.Max)
		return false
	}
	f.Add(value)
	return true
}

// Snapshot returns the current smoothed values. Temperature and humidity are
// NaN until their filter holds a sample; light is truncated to an integer.
func (sb *SensorBuffer) Snapshot(now time.Time) models.Aggregate {
	agg := models.Aggregate{
		Timestamp:   now,
		DeviceID:    sb.deviceID,
		Temperature: math.NaN(),
		Humidity:    math.NaN(),
		Light:       int(sb.light.Average()),
	}
	if sb.temperature.Len() > 0 {
		agg.Temperature = sb.temperature.Average()
	}
	if sb.humidity.Len() > 0 {
		agg.Humidity = sb.humidity.Average()
	}
	return agg
}

// Reset empties all three filters
func (sb *SensorBuffer) Reset() {
	sb.temperature.Reset()
	sb.humidity.Reset()
	sb.light.Reset()
}

// Window returns the configured window size
func (sb *SensorBuffer) Window() int {
	return sb.temperature.Cap()
}
