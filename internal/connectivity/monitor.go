// Package connectivity tracks whether the uplink is usable.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
)

// DialFunc opens a connection; it matches (*net.Dialer).DialContext
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config holds the link probe settings
type Config struct {
	ProbeAddr     string        // host:port reached through the uplink, e.g. the broker
	Timeout       time.Duration // bound on a single connection attempt
	RetryInterval time.Duration // spacing between attempts
}

// Monitor probes the uplink by dialing a TCP address. It is driven from the
// control loop and is not safe for concurrent use.
type Monitor struct {
	cfg         Config
	dial        DialFunc
	logger      *slog.Logger
	connected   bool
	lastAttempt time.Time
}

// NewMonitor creates a link monitor. A nil dial uses net.Dialer.
func NewMonitor(cfg Config, dial DialFunc, logger *slog.Logger) *Monitor {
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Monitor{
		cfg:    cfg,
		dial:   dial,
		logger: logging.Component(logger, "link"),
	}
}

// Connect probes the uplink once and records the result
func (m *Monitor) Connect(ctx context.Context) bool {
	return m.attempt(ctx, time.Now())
}

// IsConnected returns the result of the last probe
func (m *Monitor) IsConnected() bool {
	return m.connected
}

// Loop re-probes once RetryInterval has elapsed since the last attempt.
// While the link is up this detects loss; while down it retries.
func (m *Monitor) Loop(ctx context.Context, now time.Time) {
	if now.Sub(m.lastAttempt) < m.cfg.RetryInterval {
		return
	}
	m.attempt(ctx, now)
}

func (m *Monitor) attempt(ctx context.Context, now time.Time) bool {
	m.lastAttempt = now
	if m.cfg.ProbeAddr == "" {
		// nothing to probe: assume the OS keeps the link up
		m.setConnected(true, nil)
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", m.cfg.ProbeAddr)
	if err != nil {
		m.setConnected(false, err)
		return false
	}
	_ = conn.Close()
	m.setConnected(true, nil)
	return true
}

func (m *Monitor) setConnected(up bool, err error) {
	switch {
	case up && !m.connected:
		m.logger.Info("link up", "probe", m.cfg.ProbeAddr)
	case !up && m.connected:
		m.logger.Warn("link lost", "probe", m.cfg.ProbeAddr, "error", err)
	case !up:
		m.logger.Debug("link still down", "probe", m.cfg.ProbeAddr, "error", err)
	}
	m.connected = up
}
