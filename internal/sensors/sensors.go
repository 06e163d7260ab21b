// Package sensors reads raw climate and light samples.
//
// Climate sensors report NaN for a failed read instead of an error; the
// sampling loop gates NaN and out-of-range values before they reach a filter.
// Light sensors report LightUnavailable, which lies outside every valid
// range, for the same purpose.
package sensors

import "github.com/lisandre-begon/Smart-Environment/internal/mathx"

// Light ADC bounds (12-bit)
const (
	LightMin = 0
	LightMax = 4095

	// LightUnavailable marks a failed light read
	LightUnavailable = -1
)

// ClimateSensor reads temperature (Celsius) and relative humidity (percent)
type ClimateSensor interface {
	ReadTemperature() float64
	ReadHumidity() float64
}

// LightSensor reads the raw ambient light level, LightUnavailable on failure
type LightSensor interface {
	ReadRaw() int
}

// ClampLight constrains a raw reading to the ADC range
func ClampLight(v int) int {
	return mathx.Clamp(v, LightMin, LightMax)
}
