package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV  string
		Name string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr      string
		Password  string
		DB        int
		SignalTTL time.Duration
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host string
		Port string
	}

	Feed struct {
		BatchSize     int
		MaxBatch      int
		CandidatePool int
		WeightsFile   string
	}

	Kafka struct {
		Brokers      []string
		SignalsTopic string
		Group        string
		Workers      int
	}

	AMQP struct {
		URL      string
		Exchange string
	}

	Telemetry struct {
		OTLPEndpoint string
		ServiceName  string
	}
}

// New builds the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")
	cfg.App.Name = getEnvDefault("APP_NAME", "barter-core")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "grpc_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "barter")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.SignalTTL = getEnvDuration("SIGNAL_TTL", 30*24*time.Hour)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP gateway
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Feed
	cfg.Feed.MaxBatch = getEnvInt("FEED_MAX_BATCH", 50)
	cfg.Feed.BatchSize = getEnvInt("FEED_BATCH_SIZE", 30)
	if cfg.Feed.BatchSize > cfg.Feed.MaxBatch {
		cfg.Feed.BatchSize = cfg.Feed.MaxBatch
	}
	cfg.Feed.CandidatePool = getEnvInt("FEED_CANDIDATE_POOL", 500)
	cfg.Feed.WeightsFile = getEnvDefault("RANKING_WEIGHTS_FILE", "")

	// Kafka: no brokers means signals go straight to Redis
	cfg.Kafka.Brokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.SignalsTopic = getEnvDefault("SIGNALS_KAFKA_TOPIC", "barter.signals")
	cfg.Kafka.Group = getEnvDefault("SIGNALS_KAFKA_GROUP", "signal-worker")
	cfg.Kafka.Workers = getEnvInt("SIGNALS_WORKERS", 2)

	// AMQP: empty URL means noop publisher
	cfg.AMQP.URL = getEnvDefault("AMQP_URL", "")
	cfg.AMQP.Exchange = getEnvDefault("AMQP_EXCHANGE", "barter.events")

	cfg.Telemetry.OTLPEndpoint = getEnvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg.Telemetry.ServiceName = getEnvDefault("OTEL_SERVICE_NAME", cfg.App.Name)

	return cfg
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.ENV, "development")
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
