// Package config centralises configuration parsing for the ingestion job.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// PrintModeSentinel selects the local print sink instead of a live endpoint.
const PrintModeSentinel = "PRINT_MODE"

// Config captures runtime configuration values for an ingestion run.
type Config struct {
	DataDir         string
	SinkURL         string        // Ingest endpoint, or PrintModeSentinel for a dry run.
	BatchSize       int           // Summaries buffered before a batch is dispatched.
	MaxConcurrency  int           // Upper bound on in-flight deliveries per chunk.
	FlushThreshold  int           // Ingested records between periodic flush scans.
	MaxAttempts     int           // Total delivery attempts per summary.
	RetryBaseDelay  time.Duration // Base delay used for exponential backoff.
	RequestTimeout  time.Duration // Total per-delivery timeout.
	ConnectTimeout  time.Duration // Dial timeout for the sink connection.
	ResponseTimeout time.Duration // Time allowed for the sink to start responding.
	MetricsAddress  string
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
func Load() Config {
	return Config{
		DataDir:         getEnv("DATA_DIR", "./data"),
		SinkURL:         getEnv("SINK_URL", "http://localhost:5000/ingest"),
		BatchSize:       getIntEnv("BATCH_SIZE", 100),
		MaxConcurrency:  getIntEnv("MAX_CONCURRENCY", 10),
		FlushThreshold:  getIntEnv("FLUSH_THRESHOLD", 50000),
		MaxAttempts:     getIntEnv("MAX_ATTEMPTS", 3),
		RetryBaseDelay:  getDurationEnv("RETRY_BASE_DELAY", 500*time.Millisecond),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 60*time.Second),
		ConnectTimeout:  getDurationEnv("CONNECT_TIMEOUT", 10*time.Second),
		ResponseTimeout: getDurationEnv("RESPONSE_TIMEOUT", 30*time.Second),
		MetricsAddress:  getEnv("METRICS_ADDRESS", ":9090"),
	}
}

// PrintMode reports whether the run should render summaries locally.
func (c Config) PrintMode() bool {
	return strings.TrimSpace(c.SinkURL) == PrintModeSentinel
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
