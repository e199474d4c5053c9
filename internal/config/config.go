package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Points     PointsConfig
	Redemption RedemptionConfig
	Hardware   HardwareConfig
	Classifier ClassifierConfig
	Camera     CameraConfig
	MQTT       MQTTConfig
	RateLimit  RateLimitConfig
	Scheduler  SchedulerConfig
	Alerting   AlertingConfig
}

// PointsConfig controls how disposals translate into reward points.
type PointsConfig struct {
	Rates       map[string]int64
	DefaultRate int64
	MinAward    int64
}

// RedemptionConfig controls cash-out policy.
type RedemptionConfig struct {
	MinPoints      int64
	PKRPerPoint    float64
	VoucherPrefix  string
	VoucherTTLDays int
	RefundOnReject bool
}

// HardwareConfig controls the smart-bin device choreography.
type HardwareConfig struct {
	DeviceBaseURL            string
	RequestTimeout           time.Duration
	LidSettle                time.Duration
	CompartmentSettle        time.Duration
	FallbackOnCaptureFailure bool
	FallbackCategory         string
	FallbackConfidence       float64
}

// ClassifierConfig points at the external waste classification service.
type ClassifierConfig struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration
	MinConfidence float64
}

// CameraConfig controls QR scan stream sessions.
type CameraConfig struct {
	SessionTTL  time.Duration
	MaxSessions int
}

// MQTTConfig controls bin telemetry ingest.
type MQTTConfig struct {
	Enabled   bool
	BrokerURL string
	ClientID  string
	Topic     string
	QoS       byte
}

// RateLimitConfig controls the redis-backed disposal trigger limits.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DisposeRate       float64
	DisposeBurst      int
	BinLockTTLSeconds int64
	UserRate          float64
	UserBurst         int
}

// AlertingConfig controls operational Slack alerts. An empty webhook URL
// disables alerting entirely.
type AlertingConfig struct {
	SlackWebhookURL string
	SlackChannel    string
	Timeout         time.Duration
}

// SchedulerConfig controls the background maintenance loop.
type SchedulerConfig struct {
	Enabled         bool
	RunInterval     time.Duration
	BatchSize       int
	BinOfflineAfter time.Duration
	EnabledJobs     []string
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "trash2cash"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "trash2cash"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		Points: PointsConfig{
			Rates:       parseRates(getenv("POINTS_RATES", "")),
			DefaultRate: getenvInt64("POINTS_DEFAULT_RATE", 10),
			MinAward:    getenvInt64("POINTS_MIN_AWARD", 5),
		},
		Redemption: RedemptionConfig{
			MinPoints:      getenvInt64("REDEMPTION_MIN_POINTS", 70),
			PKRPerPoint:    getenvFloat("REDEMPTION_PKR_PER_POINT", 0.5),
			VoucherPrefix:  getenv("REDEMPTION_VOUCHER_PREFIX", "T2C-"),
			VoucherTTLDays: int(getenvInt64("REDEMPTION_VOUCHER_TTL_DAYS", 30)),
			RefundOnReject: getenvBool("REDEMPTION_REFUND_ON_REJECT", true),
		},
		Hardware: HardwareConfig{
			DeviceBaseURL:            getenv("HARDWARE_DEVICE_URL", "http://localhost:9000"),
			RequestTimeout:           getenvDuration("HARDWARE_REQUEST_TIMEOUT", 10*time.Second),
			LidSettle:                getenvDuration("HARDWARE_LID_SETTLE", 5*time.Second),
			CompartmentSettle:        getenvDuration("HARDWARE_COMPARTMENT_SETTLE", 2*time.Second),
			FallbackOnCaptureFailure: getenvBool("HARDWARE_FALLBACK_ON_CAPTURE_FAILURE", true),
			FallbackCategory:         getenv("HARDWARE_FALLBACK_CATEGORY", "plastic"),
			FallbackConfidence:       getenvFloat("HARDWARE_FALLBACK_CONFIDENCE", 85.0),
		},
		Classifier: ClassifierConfig{
			Endpoint:      getenv("CLASSIFIER_ENDPOINT", "http://localhost:8500/classify"),
			APIKey:        strings.TrimSpace(getenv("CLASSIFIER_API_KEY", "")),
			Timeout:       getenvDuration("CLASSIFIER_TIMEOUT", 15*time.Second),
			MinConfidence: getenvFloat("CLASSIFIER_MIN_CONFIDENCE", 0),
		},
		Camera: CameraConfig{
			SessionTTL:  getenvDuration("CAMERA_SESSION_TTL", 2*time.Minute),
			MaxSessions: int(getenvInt64("CAMERA_MAX_SESSIONS", 32)),
		},
		MQTT: MQTTConfig{
			Enabled:   getenvBool("MQTT_ENABLED", false),
			BrokerURL: getenv("MQTT_BROKER_URL", "tcp://localhost:1883"),
			ClientID:  getenv("MQTT_CLIENT_ID", "trash2cash-api"),
			Topic:     getenv("MQTT_TELEMETRY_TOPIC", "bins/+/status"),
			QoS:       byte(getenvInt64("MQTT_QOS", 1)),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getenvBool("SCHEDULER_ENABLED", true),
			RunInterval:     getenvDuration("SCHEDULER_RUN_INTERVAL", time.Minute),
			BatchSize:       int(getenvInt64("SCHEDULER_BATCH_SIZE", 50)),
			BinOfflineAfter: getenvDuration("SCHEDULER_BIN_OFFLINE_AFTER", 10*time.Minute),
			EnabledJobs:     parseList(getenv("SCHEDULER_ENABLED_JOBS", "")),
		},
		Alerting: AlertingConfig{
			SlackWebhookURL: strings.TrimSpace(getenv("ALERT_SLACK_WEBHOOK_URL", "")),
			SlackChannel:    getenv("ALERT_SLACK_CHANNEL", "#ops-bins"),
			Timeout:         getenvDuration("ALERT_SLACK_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:         getenv("RATE_LIMIT_REDIS_ADDR", ""),
			RedisPassword:     getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:           int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			DisposeRate:       getenvFloat("RATE_LIMIT_DISPOSE_RATE", 1),
			DisposeBurst:      int(getenvInt64("RATE_LIMIT_DISPOSE_BURST", 3)),
			BinLockTTLSeconds: getenvInt64("RATE_LIMIT_BIN_LOCK_TTL_SECONDS", 60),
			UserRate:          getenvFloat("RATE_LIMIT_USER_RATE", 0.5),
			UserBurst:         int(getenvInt64("RATE_LIMIT_USER_BURST", 5)),
		},
	}

	return cfg
}

// parseRates parses "plastic=20,paper=15" style overrides for per-category
// point rates. Unknown categories are allowed so deployments can extend the
// taxonomy without a code change.
func parseRates(raw string) map[string]int64 {
	rates := map[string]int64{
		"plastic":   20,
		"paper":     15,
		"metal":     25,
		"glass":     15,
		"organic":   10,
		"cardboard": 15,
		"trash":     5,
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || parsed < 0 {
			continue
		}
		rates[strings.ToLower(strings.TrimSpace(key))] = parsed
	}
	return rates
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
