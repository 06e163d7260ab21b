package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lisandre-begon/Smart-Environment/internal/aggregator"
	"github.com/lisandre-begon/Smart-Environment/internal/alert"
	"github.com/lisandre-begon/Smart-Environment/internal/connectivity"
	"github.com/lisandre-begon/Smart-Environment/internal/database"
	"github.com/lisandre-begon/Smart-Environment/internal/display"
	"github.com/lisandre-begon/Smart-Environment/internal/httpapi"
	"github.com/lisandre-begon/Smart-Environment/internal/indicator"
	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/metrics"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
	"github.com/lisandre-begon/Smart-Environment/internal/mqtt"
	"github.com/lisandre-begon/Smart-Environment/internal/sensors"
	"github.com/lisandre-begon/Smart-Environment/internal/services"
	"github.com/lisandre-begon/Smart-Environment/internal/uploader"
	"github.com/lisandre-begon/Smart-Environment/pkg/config"
)

const (
	deviceName       = "Smart Environment Node"
	firmwareVersion  = "1.0.0"
	hardwareRevision = "v1.0"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logging.New(cfg.LogLevel, cfg.LogNoColor, os.Stderr)
	log.Info("starting "+deviceName, "firmware", firmwareVersion, "device", cfg.DeviceID)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	bootedAt := time.Now()

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === Sensors ===
	var (
		climate sensors.ClimateSensor
		light   sensors.LightSensor
	)
	switch cfg.SensorSource {
	case config.SourceIIO:
		climate = sensors.NewIIOClimate(cfg.IIOClimateDir, log)
		light = sensors.NewIIOLight(cfg.IIOLightFile, log)
	default:
		simCfg := sensors.DefaultSimulatedConfig()
		simCfg.Seed = cfg.SimSeed
		simCfg.FailureRate = cfg.SimFailureRate
		sim := sensors.NewSimulated(simCfg)
		climate, light = sim, sim
	}
	log.Info("sensors ready", "source", cfg.SensorSource)

	// === Alert indicator ===
	var ind alert.Indicator = indicator.NewLog(log)
	if cfg.LEDPath != "" {
		ind = indicator.NewSysfsLED(cfg.LEDPath, log)
	}

	thresholds := alert.Thresholds{
		TempHigh:  cfg.TempHighThreshold,
		TempLow:   cfg.TempLowThreshold,
		HumidHigh: cfg.HumidHighThreshold,
		HumidLow:  cfg.HumidLowThreshold,
		LightLow:  cfg.LightLowThreshold,
	}
	classifier := alert.NewClassifier(ind, thresholds)
	for _, rule := range classifier.Rules() {
		log.Debug("alert rule", "rule", rule.String())
	}

	// === Filters ===
	buffer := aggregator.NewSensorBuffer(cfg.DeviceID, cfg.FilterWindowSize, aggregator.Ranges{
		Temperature: aggregator.ValidRange{Min: cfg.TempMin, Max: cfg.TempMax},
		Humidity:    aggregator.ValidRange{Min: cfg.HumidMin, Max: cfg.HumidMax},
		Light:       aggregator.ValidRange{Min: cfg.LightMin, Max: cfg.LightMax},
	}, log)

	// === Uplink and upload transport ===
	link := connectivity.NewMonitor(connectivity.Config{
		ProbeAddr:     cfg.LinkProbeAddr,
		Timeout:       cfg.LinkTimeout,
		RetryInterval: cfg.LinkRetryInterval,
	}, nil, log)

	transport, err := uploader.Select(uploader.Settings{
		Transport:        cfg.UploadTransport,
		Timeout:          cfg.UploadTimeout,
		ThingSpeakServer: cfg.ThingSpeakServer,
		ThingSpeakAPIKey: cfg.ThingSpeakAPIKey,
		MQTT: mqtt.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		},
		Topics: mqtt.Topics{
			Temperature: cfg.MQTTTopicTemperature,
			Humidity:    cfg.MQTTTopicHumidity,
			Light:       cfg.MQTTTopicLight,
			Status:      cfg.MQTTTopicStatus,
		},
		QoS:      byte(cfg.MQTTQoS),
		BootedAt: bootedAt,
		ClickHouse: database.Config{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePass,
		},
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaTopic:   cfg.KafkaTopic,
	}, log)
	if err != nil {
		log.Error("failed to select upload transport", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			log.Warn("failed to close transport", "error", err)
		}
	}()
	log.Info("upload transport selected", "transport", transport.Name(), "interval", cfg.CloudUploadInterval)

	// === Node ===
	m := metrics.New()
	nodeCfg := services.DefaultNodeConfig()
	nodeCfg.Device = models.Device{
		DeviceID:         cfg.DeviceID,
		Name:             deviceName,
		FirmwareVersion:  firmwareVersion,
		HardwareRevision: hardwareRevision,
	}
	nodeCfg.SensorReadInterval = cfg.SensorReadInterval
	nodeCfg.DisplayUpdateInterval = cfg.DisplayUpdateInterval
	nodeCfg.CloudUploadInterval = cfg.CloudUploadInterval
	nodeCfg.UploadTimeout = cfg.UploadTimeout

	node := services.NewNode(nodeCfg, services.NodeDeps{
		Climate:    climate,
		Light:      light,
		Buffer:     buffer,
		Classifier: classifier,
		Display:    display.NewText(os.Stdout),
		Uploader:   transport,
		Link:       link,
		Metrics:    m,
		Logger:     log,
	}, bootedAt)

	// === Status API ===
	var api *httpapi.Server
	if cfg.HTTPAddr != "" {
		api = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(node, m.Handler()), os.Stderr, log)
		api.Start()
	}

	node.Run(ctx)

	// === Graceful shutdown ===
	if api != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Warn("status API shutdown", "error", err)
		}
	}
	log.Info("shutdown complete")
}
