// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every setting the hosts read.
type Config struct {
	HTTPPort string
	LogLevel slog.Level

	StoreBackend           string
	SignatureRequestsTable string
	UsersTable             string
	DatabaseURL            string

	QueueRateLimit     int
	QueueMaxConcurrent int
	QueueIdleInterval  time.Duration
	CommandTimeout     time.Duration
	PollSchedule       string

	SafeAPIKey      string
	SafeServiceURLs map[int64]string
	SafeHTTPTimeout time.Duration
	SafeHTTPRetries int

	DeadLetterQueueURL    string
	DeadLetterMaxAttempts int
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		StoreBackend:           strings.ToLower(getEnv("STORE_BACKEND", BackendDynamoDB)),
		SignatureRequestsTable: os.Getenv("DYNAMODB_SIGNATURE_REQUESTS_TABLE_NAME"),
		UsersTable:             os.Getenv("DYNAMODB_USERS_TABLE_NAME"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		PollSchedule:           getEnv("POLL_SCHEDULE", "@every 30s"),
		SafeAPIKey:             os.Getenv("SAFE_API_KEY"),
		DeadLetterQueueURL:     os.Getenv("DEADLETTER_QUEUE_URL"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cfg.QueueRateLimit = getEnvInt("QUEUE_RATE_LIMIT", 5, &errs)
	cfg.QueueMaxConcurrent = getEnvInt("QUEUE_MAX_CONCURRENT", 5, &errs)
	cfg.QueueIdleInterval = getEnvDuration("QUEUE_IDLE_INTERVAL", 50*time.Millisecond, &errs)
	cfg.CommandTimeout = getEnvDuration("COMMAND_TIMEOUT", 30*time.Second, &errs)
	cfg.SafeHTTPTimeout = getEnvDuration("SAFE_HTTP_TIMEOUT", 10*time.Second, &errs)
	cfg.SafeHTTPRetries = getEnvInt("SAFE_HTTP_RETRIES", 3, &errs)
	cfg.DeadLetterMaxAttempts = getEnvInt("DEADLETTER_MAX_ATTEMPTS", 0, &errs)

	urls, err := parseServiceURLs(os.Getenv("SAFE_TX_SERVICE_URLS"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.SafeServiceURLs = urls

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.SignatureRequestsTable == "" || c.UsersTable == "" {
			errs = append(errs, errors.New("one or more DynamoDB table name environment variables are not set"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendDynamoDB, BackendPostgres, c.StoreBackend))
	}
	if c.QueueRateLimit <= 0 {
		errs = append(errs, errors.New("QUEUE_RATE_LIMIT must be positive"))
	}
	if c.QueueMaxConcurrent <= 0 {
		errs = append(errs, errors.New("QUEUE_MAX_CONCURRENT must be positive"))
	}
	if c.DeadLetterMaxAttempts < 0 {
		errs = append(errs, errors.New("DEADLETTER_MAX_ATTEMPTS must not be negative"))
	}
	return errors.Join(errs...)
}

// NewLogger returns a JSON logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

// parseServiceURLs reads "chainId=url" pairs separated by commas.
func parseServiceURLs(s string) (map[int64]string, error) {
	out := make(map[int64]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, url, ok := strings.Cut(pair, "=")
		if !ok || url == "" {
			return nil, fmt.Errorf("SAFE_TX_SERVICE_URLS: malformed entry %q", pair)
		}
		chainID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SAFE_TX_SERVICE_URLS: bad chain id in %q: %w", pair, err)
		}
		out[chainID] = strings.TrimSpace(url)
	}
	return out, nil
}
