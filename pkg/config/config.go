package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Sensor sources
const (
	SourceSimulated = "sim"
	SourceIIO       = "iio"
)

type Config struct {
	// Device identity
	DeviceID string

	// Sensor configuration
	SensorSource   string
	IIOClimateDir  string
	IIOLightFile   string
	SimSeed        int64
	SimFailureRate float64
	LEDPath        string

	// Filtering and valid ranges
	FilterWindowSize int
	TempMin          float64
	TempMax          float64
	HumidMin         float64
	HumidMax         float64
	LightMin         float64
	LightMax         float64

	// Alert thresholds
	TempHighThreshold  float64
	TempLowThreshold   float64
	HumidHighThreshold float64
	HumidLowThreshold  float64
	LightLowThreshold  int

	// Timing
	SensorReadInterval    time.Duration
	DisplayUpdateInterval time.Duration
	CloudUploadInterval   time.Duration

	// Uplink monitor
	LinkProbeAddr     string
	LinkTimeout       time.Duration
	LinkRetryInterval time.Duration

	// Upload transport
	UploadTransport  string
	UploadTimeout    time.Duration
	ThingSpeakServer string
	ThingSpeakAPIKey string

	// MQTT Configuration
	MQTTBroker           string
	MQTTClientID         string
	MQTTUsername         string
	MQTTPassword         string
	MQTTQoS              int
	MQTTTopicTemperature string
	MQTTTopicHumidity    string
	MQTTTopicLight       string
	MQTTTopicStatus      string

	// ClickHouse Configuration
	ClickHouseAddr string
	ClickHouseDB   string
	ClickHouseUser string
	ClickHousePass string

	// Kafka Configuration
	KafkaBrokers []string
	KafkaTopic   string

	// Local surfaces
	HTTPAddr   string
	LogLevel   string
	LogNoColor bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		DeviceID: getEnv("DEVICE_ID", "envnode-1"),

		SensorSource:   strings.ToLower(getEnv("SENSOR_SOURCE", SourceSimulated)),
		IIOClimateDir:  getEnv("IIO_CLIMATE_DIR", "/sys/bus/iio/devices/iio:device0"),
		IIOLightFile:   getEnv("IIO_LIGHT_FILE", "/sys/bus/iio/devices/iio:device1/in_voltage0_raw"),
		SimSeed:        int64(getEnvInt("SIM_SEED", 1)),
		SimFailureRate: getEnvFloat("SIM_FAILURE_RATE", 0),
		LEDPath:        getEnv("LED_PATH", ""),

		FilterWindowSize: getEnvInt("FILTER_WINDOW_SIZE", 5),
		TempMin:          getEnvFloat("TEMP_MIN", -40),
		TempMax:          getEnvFloat("TEMP_MAX", 80),
		HumidMin:         getEnvFloat("HUMID_MIN", 0),
		HumidMax:         getEnvFloat("HUMID_MAX", 100),
		LightMin:         getEnvFloat("LIGHT_MIN", 0),
		LightMax:         getEnvFloat("LIGHT_MAX", 4095),

		TempHighThreshold:  getEnvFloat("TEMP_HIGH_THRESHOLD", 30),
		TempLowThreshold:   getEnvFloat("TEMP_LOW_THRESHOLD", 15),
		HumidHighThreshold: getEnvFloat("HUMID_HIGH_THRESHOLD", 80),
		HumidLowThreshold:  getEnvFloat("HUMID_LOW_THRESHOLD", 30),
		LightLowThreshold:  getEnvInt("LIGHT_LOW_THRESHOLD", 500),

		SensorReadInterval:    getEnvDuration("SENSOR_READ_INTERVAL", 5*time.Second),
		DisplayUpdateInterval: getEnvDuration("DISPLAY_UPDATE_INTERVAL", 2*time.Second),
		CloudUploadInterval:   getEnvDuration("CLOUD_UPLOAD_INTERVAL", 30*time.Second),

		LinkProbeAddr:     getEnv("LINK_PROBE_ADDR", ""),
		LinkTimeout:       getEnvDuration("LINK_TIMEOUT", 15*time.Second),
		LinkRetryInterval: getEnvDuration("LINK_RETRY_INTERVAL", 30*time.Second),

		UploadTransport:  strings.ToLower(getEnv("UPLOAD_TRANSPORT", "auto")),
		UploadTimeout:    getEnvDuration("UPLOAD_TIMEOUT", 10*time.Second),
		ThingSpeakServer: getEnv("THINGSPEAK_SERVER", "api.thingspeak.com"),
		ThingSpeakAPIKey: getEnv("THINGSPEAK_API_KEY", ""),

		MQTTBroker:           getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "ESP32_EnvNode"),
		MQTTUsername:         getEnv("MQTT_USERNAME", ""),
		MQTTPassword:         getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:              getEnvInt("MQTT_QOS", 0),
		MQTTTopicTemperature: getEnv("MQTT_TOPIC_TEMPERATURE", "envnode/temperature"),
		MQTTTopicHumidity:    getEnv("MQTT_TOPIC_HUMIDITY", "envnode/humidity"),
		MQTTTopicLight:       getEnv("MQTT_TOPIC_LIGHT", "envnode/light"),
		MQTTTopicStatus:      getEnv("MQTT_TOPIC_STATUS", "envnode/status"),

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "iot"),
		ClickHouseUser: getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass: getEnv("CLICKHOUSE_PASS", ""),

		KafkaBrokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "envnode.readings"),

		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogNoColor: getEnvBool("LOG_NO_COLOR", false),
	}
}

// Validate rejects settings the node cannot run with
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.DeviceID != "", "DEVICE_ID is empty")
	check(c.SensorSource == SourceSimulated || c.SensorSource == SourceIIO,
		"SENSOR_SOURCE %q is not %q or %q", c.SensorSource, SourceSimulated, SourceIIO)
	check(c.SimFailureRate >= 0 && c.SimFailureRate <= 1, "SIM_FAILURE_RATE %v outside [0, 1]", c.SimFailureRate)
	check(c.FilterWindowSize > 0, "FILTER_WINDOW_SIZE must be positive, got %d", c.FilterWindowSize)

	check(c.TempMin < c.TempMax, "TEMP_MIN %v must be below TEMP_MAX %v", c.TempMin, c.TempMax)
	check(c.HumidMin < c.HumidMax, "HUMID_MIN %v must be below HUMID_MAX %v", c.HumidMin, c.HumidMax)
	check(c.LightMin < c.LightMax, "LIGHT_MIN %v must be below LIGHT_MAX %v", c.LightMin, c.LightMax)
	check(c.LightMin >= 0 && c.LightMax <= math.MaxUint16,
		"LIGHT_MIN/LIGHT_MAX %v..%v outside [0, %d]", c.LightMin, c.LightMax, math.MaxUint16)
	check(c.TempLowThreshold < c.TempHighThreshold,
		"TEMP_LOW_THRESHOLD %v must be below TEMP_HIGH_THRESHOLD %v", c.TempLowThreshold, c.TempHighThreshold)
	check(c.HumidLowThreshold < c.HumidHighThreshold,
		"HUMID_LOW_THRESHOLD %v must be below HUMID_HIGH_THRESHOLD %v", c.HumidLowThreshold, c.HumidHighThreshold)

	check(c.SensorReadInterval > 0, "SENSOR_READ_INTERVAL must be positive")
	check(c.DisplayUpdateInterval > 0, "DISPLAY_UPDATE_INTERVAL must be positive")
	check(c.CloudUploadInterval > 0, "CLOUD_UPLOAD_INTERVAL must be positive")
	check(c.LinkTimeout > 0, "LINK_TIMEOUT must be positive")
	check(c.LinkRetryInterval > 0, "LINK_RETRY_INTERVAL must be positive")
	check(c.UploadTimeout > 0, "UPLOAD_TIMEOUT must be positive")

	switch c.UploadTransport {
	case "", "auto", "thingspeak", "mqtt", "clickhouse", "kafka":
	default:
		check(false, "UPLOAD_TRANSPORT %q is not supported", c.UploadTransport)
	}
	check(c.MQTTQoS >= 0 && c.MQTTQoS <= 2, "MQTT_QOS %d outside [0, 2]", c.MQTTQoS)

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("failed to parse env as int, using default", "key", key, "error", err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("failed to parse env as float, using default", "key", key, "error", err)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("failed to parse env as bool, using default", "key", key, "error", err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration accepts Go durations ("5s") or a bare number of milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("failed to parse env as duration, using default", "key", key, "error", err)
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
