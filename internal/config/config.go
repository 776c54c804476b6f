package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	RazorpayBaseURL       string
	AdminTokenSecret      string
	OrderNumberPrefix     string
	NotifyPollInterval    time.Duration
	NotifyBatchSize       int
	WorkerPoolSize        int
	ShutdownTimeout       time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultRazorpayBaseURL    = "https://api.razorpay.com"
	defaultAdminTokenSecret   = "change-me-in-production"
	defaultOrderNumberPrefix  = "ORD"
	defaultNotifyPollInterval = 3 * time.Second
	defaultNotifyBatchSize    = 32
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		RazorpayKeyID:         getString(lookup, "RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getString(lookup, "RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getString(lookup, "RAZORPAY_WEBHOOK_SECRET", ""),
		RazorpayBaseURL:       getString(lookup, "RAZORPAY_BASE_URL", defaultRazorpayBaseURL),
		AdminTokenSecret:      getString(lookup, "ADMIN_TOKEN_SECRET", defaultAdminTokenSecret),
		OrderNumberPrefix:     getString(lookup, "ORDER_NUMBER_PREFIX", defaultOrderNumberPrefix),
		NotifyPollInterval:    getDuration(lookup, "NOTIFY_POLL_INTERVAL", defaultNotifyPollInterval),
		NotifyBatchSize:       getInt(lookup, "NOTIFY_BATCH_SIZE", defaultNotifyBatchSize),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("orderdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.NotifyPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RazorpayBaseURL, "razorpay-url", cfg.RazorpayBaseURL, "Razorpay API base URL")
	fs.StringVar(&cfg.OrderNumberPrefix, "order-prefix", cfg.OrderNumberPrefix, "Prefix for generated order numbers")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notifier workers")
	fs.StringVar(&pollIntervalStr, "notify-interval", pollIntervalStr, "Interval between notifier polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.NotifyBatchSize, "notify-batch", cfg.NotifyBatchSize, "Maximum orders per notifier batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.NotifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid notify interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	// Secrets may be mounted as files instead of raw env values.
	for _, secret := range []struct {
		envKey string
		target *string
	}{
		{"RAZORPAY_KEY_SECRET_FILE", &cfg.RazorpayKeySecret},
		{"RAZORPAY_WEBHOOK_SECRET_FILE", &cfg.RazorpayWebhookSecret},
		{"ADMIN_TOKEN_SECRET_FILE", &cfg.AdminTokenSecret},
	} {
		if file, ok := lookup(secret.envKey); ok && file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read secret file %s: %w", secret.envKey, err)
			}
			*secret.target = string(content)
		}
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.NotifyBatchSize <= 0 {
		cfg.NotifyBatchSize = defaultNotifyBatchSize
	}

	if cfg.NotifyPollInterval <= 0 {
		cfg.NotifyPollInterval = defaultNotifyPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("razorpay key secret must be provided")
	}

	if cfg.RazorpayWebhookSecret == "" {
		return nil, fmt.Errorf("razorpay webhook secret must be provided")
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
