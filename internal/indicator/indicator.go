// Package indicator drives the alert output. Implementations satisfy
// alert.Indicator and never return errors: a failed write is logged and the
// next evaluation drives the output again.
package indicator

import (
	"log/slog"
	"os"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
)

// SysfsLED drives an LED through the Linux LED class interface,
// e.g. /sys/class/leds/led0/brightness.
type SysfsLED struct {
	Path   string
	logger *slog.Logger
}

// NewSysfsLED creates an LED indicator writing to the given brightness file
func NewSysfsLED(path string, logger *slog.Logger) *SysfsLED {
	return &SysfsLED{
		Path:   path,
		logger: logging.Component(logger, "led"),
	}
}

// SetActive turns the LED on or off
func (l *SysfsLED) SetActive(active bool) {
	value := []byte("0")
	if active {
		value = []byte("1")
	}
	if err := os.WriteFile(l.Path, value, 0o644); err != nil {
		l.logger.Warn("failed to drive LED", "path", l.Path, "active", active, "error", err)
	}
}

// Log is an indicator for hosts without an LED; it records the level in the log
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging indicator
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.Component(logger, "indicator")}
}

// SetActive logs the indicator level
func (l *Log) SetActive(active bool) {
	l.logger.Debug("indicator", "active", active)
}
