package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/aggregator"
	"github.com/lisandre-begon/Smart-Environment/internal/alert"
	"github.com/lisandre-begon/Smart-Environment/internal/display"
	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/metrics"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
	"github.com/lisandre-begon/Smart-Environment/internal/sensors"
	"github.com/lisandre-begon/Smart-Environment/internal/uploader"
)

// BootStatus is shown on the display before the first readings
const BootStatus = "Booting..."

// Link reports uplink availability; connectivity.Monitor implements it
type Link interface {
	Connect(ctx context.Context) bool
	Loop(ctx context.Context, now time.Time)
	IsConnected() bool
}

// NodeConfig holds the loop timing
type NodeConfig struct {
	Device                models.Device
	SensorReadInterval    time.Duration
	DisplayUpdateInterval time.Duration
	CloudUploadInterval   time.Duration
	UploadTimeout         time.Duration
	LoopDelay             time.Duration
}

// DefaultNodeConfig returns the stock timing
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		SensorReadInterval:    5 * time.Second,
		DisplayUpdateInterval: 2 * time.Second,
		CloudUploadInterval:   30 * time.Second,
		UploadTimeout:         10 * time.Second,
		LoopDelay:             10 * time.Millisecond,
	}
}

// NodeDeps are the collaborators owned by a Node. Uploader, Metrics and
// Logger may be nil.
type NodeDeps struct {
	Climate    sensors.ClimateSensor
	Light      sensors.LightSensor
	Buffer     *aggregator.SensorBuffer
	Classifier *alert.Classifier
	Display    display.Display
	Uploader   uploader.Transport
	Link       Link
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Node runs the sample, display and upload cycles. Step is driven from a
// single goroutine; Status may be read concurrently.
type Node struct {
	cfg  NodeConfig
	deps NodeDeps

	lastSample  time.Time
	lastDisplay time.Time
	lastUpload  time.Time

	samples      uint64
	rejected     uint64
	uploads      uint64
	uploadErrors uint64
	uploadedAt   time.Time

	mu     sync.RWMutex
	status models.Status
}

// NewNode creates a node whose timers start at bootedAt
func NewNode(cfg NodeConfig, deps NodeDeps, bootedAt time.Time) *Node {
	deps.Logger = logging.Component(deps.Logger, "node")
	if deps.Display == nil {
		deps.Display = display.Nop{}
	}
	cfg.Device.BootedAt = bootedAt

	n := &Node{
		cfg:         cfg,
		deps:        deps,
		lastSample:  bootedAt,
		lastDisplay: bootedAt,
		lastUpload:  bootedAt,
	}
	n.publishStatus(bootedAt)
	return n
}

// Run shows the boot status, probes the link once, then steps the node every
// LoopDelay until ctx is cancelled
func (n *Node) Run(ctx context.Context) {
	n.deps.Logger.Info("starting",
		"device", n.cfg.Device.DeviceID,
		"firmware", n.cfg.Device.FirmwareVersion,
		"window", n.deps.Buffer.Window(),
		"transport", n.transportName())

	n.deps.Display.Clear()
	n.deps.Display.ShowStatus(BootStatus)
	n.deps.Link.Connect(ctx)

	ticker := time.NewTicker(n.cfg.LoopDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.deps.Logger.Info("shutting down")
			return
		case now := <-ticker.C:
			n.Step(ctx, now)
		}
	}
}

// Step runs the link monitor and every cycle whose interval has elapsed
func (n *Node) Step(ctx context.Context, now time.Time) {
	n.deps.Link.Loop(ctx, now)
	if n.deps.Metrics != nil {
		n.deps.Metrics.SetLink(n.deps.Link.IsConnected())
	}

	if now.Sub(n.lastSample) >= n.cfg.SensorReadInterval {
		n.lastSample = now
		n.sample()
	}

	if now.Sub(n.lastDisplay) >= n.cfg.DisplayUpdateInterval {
		n.lastDisplay = now
		n.refresh(now)
	}

	if now.Sub(n.lastUpload) >= n.cfg.CloudUploadInterval {
		n.lastUpload = now
		if n.deps.Link.IsConnected() {
			n.upload(ctx, now)
		} else if n.deps.Uploader != nil {
			n.deps.Logger.Debug("link down, upload skipped")
			n.recordUpload(metrics.ResultSkipped)
		}
	}

	n.publishStatus(now)
}

func (n *Node) sample() {
	n.samples++
	n.gate("temperature", n.deps.Buffer.AddTemperature(n.deps.Climate.ReadTemperature()))
	n.gate("humidity", n.deps.Buffer.AddHumidity(n.deps.Climate.ReadHumidity()))
	n.gate("light", n.deps.Buffer.AddLight(n.deps.Light.ReadRaw()))
}

func (n *Node) gate(signal string, accepted bool) {
	if accepted {
		return
	}
	n.rejected++
	if n.deps.Metrics != nil {
		n.deps.Metrics.SampleRejected(signal)
	}
}

func (n *Node) refresh(now time.Time) {
	agg := n.deps.Buffer.Snapshot(now)
	n.deps.Display.Clear()
	n.deps.Display.ShowReadings(agg.Temperature, agg.Humidity, agg.Light)

	prev := n.deps.Classifier.State()
	state := n.deps.Classifier.Evaluate(agg.Temperature, agg.Humidity, agg.Light)
	if state != prev {
		n.deps.Logger.Info("alert state changed", "from", prev.String(), "to", state.String())
	}
	if n.deps.Metrics != nil {
		n.deps.Metrics.ObserveReadings(agg, int(state))
	}
}

func (n *Node) upload(ctx context.Context, now time.Time) {
	if n.deps.Uploader == nil {
		return
	}

	agg := n.deps.Buffer.Snapshot(now)
	agg.Alert = n.deps.Classifier.State().String()

	ctx, cancel := context.WithTimeout(ctx, n.cfg.UploadTimeout)
	defer cancel()

	if err := n.deps.Uploader.Upload(ctx, agg); err != nil {
		n.uploadErrors++
		n.deps.Logger.Warn("upload failed", "transport", n.deps.Uploader.Name(), "error", err)
		n.recordUpload(metrics.ResultError)
		return
	}
	n.uploads++
	n.uploadedAt = now
	n.deps.Logger.Debug("uploaded", "transport", n.deps.Uploader.Name(),
		"temperature", agg.Temperature, "humidity", agg.Humidity, "light", agg.Light)
	n.recordUpload(metrics.ResultOK)
}

func (n *Node) recordUpload(result string) {
	if n.deps.Metrics != nil {
		n.deps.Metrics.Upload(n.deps.Uploader.Name(), result)
	}
}

func (n *Node) transportName() string {
	if n.deps.Uploader == nil {
		return "none"
	}
	return n.deps.Uploader.Name()
}

func (n *Node) publishStatus(now time.Time) {
	st := models.Status{
		Device:       n.cfg.Device,
		Readings:     n.deps.Buffer.Snapshot(now),
		Alert:        n.deps.Classifier.State().String(),
		LinkUp:       n.deps.Link.IsConnected(),
		Transport:    n.transportName(),
		Samples:      n.samples,
		Rejected:     n.rejected,
		Uploads:      n.uploads,
		UploadErrors: n.uploadErrors,
		UpdatedAt:    now,
	}
	st.Readings.Alert = st.Alert
	if !n.uploadedAt.IsZero() {
		at := n.uploadedAt
		st.LastUpload = &at
	}

	n.mu.Lock()
	n.status = st
	n.mu.Unlock()
}

// Status returns the snapshot published after the last step
func (n *Node) Status() models.Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}
