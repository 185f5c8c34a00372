package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	JWTSecret         string
	TokenTTL          time.Duration
	AutoBatchInterval time.Duration
	AutoBatchSize     int
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
	BatchTimezone     string
	BatchLocation     *time.Location
	KafkaBrokers      []string
	KafkaStatusTopic  string
	StatusWebhookURL  string
	OTLPEndpoint      string
	ServiceName       string
	AdminLogin        string
	AdminPassword     string
}

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultTokenTTL          = 24 * time.Hour
	defaultAutoBatchInterval = time.Minute
	defaultAutoBatchSize     = 100
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultBatchTimezone     = "UTC"
	defaultKafkaStatusTopic  = "shipment-status"
	defaultServiceName       = "nge-brain"
	defaultEnvFile           = ".env"
)

// Load parses configuration from flags, environment variables and an optional .env file.
func Load() (*Config, error) {
	path := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		path = v
	}
	lookup, err := withDotEnv(os.LookupEnv, path)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], lookup)
}

type envLookup func(string) (string, bool)

// withDotEnv layers values from a .env file under the process environment.
// A missing file is not an error.
func withDotEnv(lookup envLookup, path string) (envLookup, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		JWTSecret:         getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		AutoBatchInterval: getDuration(lookup, "AUTO_BATCH_INTERVAL", defaultAutoBatchInterval),
		AutoBatchSize:     getInt(lookup, "AUTO_BATCH_SIZE", defaultAutoBatchSize),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		BatchTimezone:     getString(lookup, "BATCH_TIMEZONE", defaultBatchTimezone),
		KafkaStatusTopic:  getString(lookup, "KAFKA_STATUS_TOPIC", defaultKafkaStatusTopic),
		StatusWebhookURL:  getString(lookup, "STATUS_WEBHOOK_URL", ""),
		OTLPEndpoint:      getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       getString(lookup, "OTEL_SERVICE_NAME", defaultServiceName),
		AdminLogin:        getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:     getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("ngebrain", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		batchIntervalStr   = cfg.AutoBatchInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		kafkaBrokersStr    = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&batchIntervalStr, "batch-interval", batchIntervalStr, "Interval between auto batching runs")
	fs.IntVar(&cfg.AutoBatchSize, "batch-size", cfg.AutoBatchSize, "Maximum unbatched orders per run")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent batch workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.BatchTimezone, "batch-tz", cfg.BatchTimezone, "Time zone defining a departure day")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated Kafka brokers for status events")
	fs.StringVar(&cfg.KafkaStatusTopic, "kafka-topic", cfg.KafkaStatusTopic, "Kafka topic for status events")
	fs.StringVar(&cfg.StatusWebhookURL, "status-webhook", cfg.StatusWebhookURL, "URL notified on status changes")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP HTTP endpoint for traces")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.AutoBatchInterval, err = time.ParseDuration(batchIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid batch interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.BatchTimezone == "Local" {
		return nil, fmt.Errorf("invalid batch timezone: %q has no database equivalent, use an IANA name such as Asia/Dubai", cfg.BatchTimezone)
	}
	if cfg.BatchLocation, err = time.LoadLocation(cfg.BatchTimezone); err != nil {
		return nil, fmt.Errorf("invalid batch timezone: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.AutoBatchSize <= 0 {
		cfg.AutoBatchSize = defaultAutoBatchSize
	}

	if cfg.AutoBatchInterval <= 0 {
		cfg.AutoBatchInterval = defaultAutoBatchInterval
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
