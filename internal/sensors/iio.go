package sensors

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
)

// IIO attribute names exposed by the kernel dht11 driver
const (
	iioTemperatureFile = "in_temp_input"             // milli-degrees Celsius
	iioHumidityFile    = "in_humidityrelative_input" // milli-percent
)

// IIOClimate reads a DHT-style sensor through /sys/bus/iio/devices/iio:deviceN
type IIOClimate struct {
	Dir    string
	logger *slog.Logger
}

// NewIIOClimate creates a climate sensor rooted at an IIO device directory
func NewIIOClimate(dir string, logger *slog.Logger) *IIOClimate {
	return &IIOClimate{
		Dir:    dir,
		logger: logging.Component(logger, "iio-climate"),
	}
}

// ReadTemperature returns degrees Celsius or NaN if the read failed
func (s *IIOClimate) ReadTemperature() float64 {
	return s.readMilli(iioTemperatureFile)
}

// ReadHumidity returns percent relative humidity or NaN if the read failed
func (s *IIOClimate) ReadHumidity() float64 {
	return s.readMilli(iioHumidityFile)
}

func (s *IIOClimate) readMilli(name string) float64 {
	v, err := readInt(filepath.Join(s.Dir, name))
	if err != nil {
		// dht11 returns EIO/ETIMEDOUT on a bad checksum; the next cycle retries
		s.logger.Debug("sensor read failed", "attribute", name, "error", err)
		return math.NaN()
	}
	return float64(v) / 1000
}

// IIOLight reads a raw ADC channel such as in_voltage0_raw or in_illuminance_raw
type IIOLight struct {
	Path   string
	logger *slog.Logger
}

// NewIIOLight creates a light sensor reading the given sysfs attribute
func NewIIOLight(path string, logger *slog.Logger) *IIOLight {
	return &IIOLight{
		Path:   path,
		logger: logging.Component(logger, "iio-light"),
	}
}

// ReadRaw returns the clamped ADC value, or LightUnavailable if the read failed
func (s *IIOLight) ReadRaw() int {
	v, err := readInt(s.Path)
	if err != nil {
		s.logger.Debug("sensor read failed", "path", s.Path, "error", err)
		return LightUnavailable
	}
	return ClampLight(v)
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}
