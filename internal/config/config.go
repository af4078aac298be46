package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string
	SessionTTL  time.Duration
	ServiceName string
	LogLevel    string

	PaymentProviderAddress string
	PaymentSecretKey       string
	WebhookSecret          string
	WebhookTolerance       time.Duration
	PaymentTimeout         time.Duration
	Currency               string

	PaymentPollInterval time.Duration
	PaymentPollGrace    time.Duration
	WorkerPoolSize      int
	MaxOrdersBatch      int
	ShutdownTimeout     time.Duration

	RedisAddress         string
	NotificationDedupTTL time.Duration
	KafkaBrokers         []string
	KafkaTopic           string

	// ReleaseStockOnPaymentFailure returns reserved stock to the pool when a
	// failure notification cancels an order. Off by default: only an explicit
	// cancel releases stock.
	ReleaseStockOnPaymentFailure bool
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultSessionTTL          = 24 * time.Hour
	defaultServiceName         = "storefront"
	defaultLogLevel            = "info"
	defaultWebhookTolerance    = 5 * time.Minute
	defaultPaymentTimeout      = 10 * time.Second
	defaultCurrency            = "usd"
	defaultPaymentPollInterval = 30 * time.Second
	defaultPaymentPollGrace    = 2 * time.Minute
	defaultWorkerPoolSize      = 4
	defaultMaxOrdersBatch      = 32
	defaultShutdownTimeout     = 10 * time.Second
	defaultDedupTTL            = 48 * time.Hour
	defaultKafkaTopic          = "storefront.orders"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	lookup, err := withEnvFile(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], lookup)
}

type envLookup func(string) (string, bool)

// withEnvFile overlays variables from the dotenv file named by ENV_FILE.
// Process environment wins over the file.
func withEnvFile(lookup envLookup) (envLookup, error) {
	path, ok := lookup("ENV_FILE")
	if !ok || path == "" {
		return lookup, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
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
		RunAddress:                   getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:                  getString(lookup, "DATABASE_URI", ""),
		JWTSecret:                    getString(lookup, "JWT_SECRET", defaultJWTSecret),
		SessionTTL:                   getDuration(lookup, "SESSION_TTL", defaultSessionTTL),
		ServiceName:                  getString(lookup, "SERVICE_NAME", defaultServiceName),
		LogLevel:                     getString(lookup, "LOG_LEVEL", defaultLogLevel),
		PaymentProviderAddress:       getString(lookup, "PAYMENT_PROVIDER_ADDRESS", ""),
		PaymentSecretKey:             getString(lookup, "PAYMENT_SECRET_KEY", ""),
		WebhookSecret:                getString(lookup, "PAYMENT_WEBHOOK_SECRET", ""),
		WebhookTolerance:             getDuration(lookup, "PAYMENT_WEBHOOK_TOLERANCE", defaultWebhookTolerance),
		PaymentTimeout:               getDuration(lookup, "PAYMENT_TIMEOUT", defaultPaymentTimeout),
		Currency:                     getString(lookup, "PAYMENT_CURRENCY", defaultCurrency),
		PaymentPollInterval:          getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentPollGrace:             getDuration(lookup, "PAYMENT_POLL_GRACE", defaultPaymentPollGrace),
		WorkerPoolSize:               getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxOrdersBatch:               getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),
		ShutdownTimeout:              getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		RedisAddress:                 getString(lookup, "REDIS_ADDRESS", ""),
		NotificationDedupTTL:         getDuration(lookup, "NOTIFICATION_DEDUP_TTL", defaultDedupTTL),
		KafkaTopic:                   getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		ReleaseStockOnPaymentFailure: getBool(lookup, "RELEASE_STOCK_ON_PAYMENT_FAILURE", false),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr     = cfg.PaymentPollInterval.String()
		pollGraceStr        = cfg.PaymentPollGrace.String()
		shutdownTimeoutStr  = cfg.ShutdownTimeout.String()
		paymentTimeoutStr   = cfg.PaymentTimeout.String()
		webhookToleranceStr = cfg.WebhookTolerance.String()
		dedupTTLStr         = cfg.NotificationDedupTTL.String()
		sessionTTLStr       = cfg.SessionTTL.String()
		kafkaBrokersStr     = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&sessionTTLStr, "session-ttl", sessionTTLStr, "Lifetime of issued session tokens")
	fs.StringVar(&cfg.ServiceName, "service-name", cfg.ServiceName, "Service name used in logs and events")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn or error")
	fs.StringVar(&cfg.PaymentProviderAddress, "p", cfg.PaymentProviderAddress, "Payment provider base URL")
	fs.StringVar(&cfg.PaymentSecretKey, "payment-key", cfg.PaymentSecretKey, "Payment provider API key")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Secret for payment notification signatures")
	fs.StringVar(&webhookToleranceStr, "webhook-tolerance", webhookToleranceStr, "Accepted age of signed notifications")
	fs.StringVar(&paymentTimeoutStr, "payment-timeout", paymentTimeoutStr, "Timeout of payment provider calls")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Currency of payment intents")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between payment status polls")
	fs.StringVar(&pollGraceStr, "poll-grace", pollGraceStr, "Age of pending orders before polling the provider")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment poll workers")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per polling batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for notification dedup")
	fs.StringVar(&dedupTTLStr, "dedup-ttl", dedupTTLStr, "Retention of processed notification ids")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for order events")
	fs.BoolVar(&cfg.ReleaseStockOnPaymentFailure, "release-on-failure", cfg.ReleaseStockOnPaymentFailure, "Release stock when payment fails")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PaymentPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}
	if cfg.PaymentPollGrace, err = time.ParseDuration(pollGraceStr); err != nil {
		return nil, fmt.Errorf("invalid poll grace: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.PaymentTimeout, err = time.ParseDuration(paymentTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid payment timeout: %w", err)
	}
	if cfg.WebhookTolerance, err = time.ParseDuration(webhookToleranceStr); err != nil {
		return nil, fmt.Errorf("invalid webhook tolerance: %w", err)
	}
	if cfg.NotificationDedupTTL, err = time.ParseDuration(dedupTTLStr); err != nil {
		return nil, fmt.Errorf("invalid dedup ttl: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(sessionTTLStr); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}
	cfg.KafkaBrokers = splitCSV(kafkaBrokersStr)

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
	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}
	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}
	if cfg.PaymentPollGrace <= 0 {
		cfg.PaymentPollGrace = defaultPaymentPollGrace
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = defaultPaymentTimeout
	}
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = defaultWebhookTolerance
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.NotificationDedupTTL <= 0 {
		cfg.NotificationDedupTTL = defaultDedupTTL
	}
	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if cfg.PaymentProviderAddress == "" {
		return nil, fmt.Errorf("payment provider address must be provided")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("payment webhook secret must be provided")
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

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
