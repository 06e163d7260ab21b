package sensors

import (
	"math"
	"math/rand"

	"github.com/lisandre-begon/Smart-Environment/internal/mathx"
)

// SimulatedConfig controls the simulated source
type SimulatedConfig struct {
	Seed        int64
	FailureRate float64 // probability in [0, 1] that a climate read returns NaN

	Temperature float64 // starting values
	Humidity    float64
	Light       int
}

// DefaultSimulatedConfig starts from a comfortable indoor room
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Seed:        1,
		Temperature: 22,
		Humidity:    50,
		Light:       1800,
	}
}

// Simulated is a bounded random walk standing in for a DHT11 and an LDR.
// It satisfies both ClimateSensor and LightSensor.
type Simulated struct {
	rng         *rand.Rand
	failureRate float64

	temperature float64
	humidity    float64
	light       int
}

// NewSimulated creates a simulated sensor source
func NewSimulated(cfg SimulatedConfig) *Simulated {
	return &Simulated{
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		failureRate: mathx.Clamp(cfg.FailureRate, 0, 1),
		temperature: cfg.Temperature,
		humidity:    cfg.Humidity,
		light:       ClampLight(cfg.Light),
	}
}

// ReadTemperature steps the temperature walk by up to ±0.5 °C
func (s *Simulated) ReadTemperature() float64 {
	s.temperature = mathx.Clamp(s.temperature+s.step(0.5), 0, 50)
	if s.fail() {
		return math.NaN()
	}
	return s.temperature
}

// ReadHumidity steps the humidity walk by up to ±2 %
func (s *Simulated) ReadHumidity() float64 {
	s.humidity = mathx.Clamp(s.humidity+s.step(2), 20, 90)
	if s.fail() {
		return math.NaN()
	}
	return s.humidity
}

// ReadRaw steps the light walk by up to ±150 counts
func (s *Simulated) ReadRaw() int {
	s.light = ClampLight(s.light + int(s.step(150)))
	return s.light
}

func (s *Simulated) step(max float64) float64 {
	return (s.rng.Float64()*2 - 1) * max
}

func (s *Simulated) fail() bool {
	return s.failureRate > 0 && s.rng.Float64() < s.failureRate
}
