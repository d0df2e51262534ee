package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	// PublicURL is this service's externally reachable base, used to build
	// the redirectUrl echoed back by the customer's browser.
	PublicURL string
	// ShopURL is the storefront base used for customer-facing redirects.
	ShopURL string

	Enabled         bool
	Title           string
	Description     string
	TestMode        bool
	AppID           string
	APIKey          string
	Currency        string
	DisableRedirect bool

	OrderPollInterval time.Duration
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
	MaxOrdersBatch    int
}

const (
	defaultRunAddress        = ":8080"
	defaultTitle             = "Bank of Maldives"
	defaultDescription       = "Pay securely using your BML account."
	defaultCurrency          = "MVR"
	defaultOrderPollInterval = time.Minute
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultMaxOrdersBatch    = 32
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		PublicURL:         getString(lookup, "PUBLIC_URL", ""),
		ShopURL:           getString(lookup, "SHOP_URL", ""),
		Enabled:           getBool(lookup, "BML_ENABLED", true),
		Title:             getString(lookup, "BML_TITLE", defaultTitle),
		Description:       getString(lookup, "BML_DESCRIPTION", defaultDescription),
		TestMode:          getBool(lookup, "BML_TEST_MODE", true),
		AppID:             getString(lookup, "BML_APP_ID", ""),
		APIKey:            getString(lookup, "BML_API_KEY", ""),
		Currency:          getString(lookup, "BML_CURRENCY", defaultCurrency),
		DisableRedirect:   getBool(lookup, "BML_DISABLE_REDIRECT", false),
		OrderPollInterval: getDuration(lookup, "ORDER_POLL_INTERVAL", defaultOrderPollInterval),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxOrdersBatch:    getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),
	}

	fs := flag.NewFlagSet("bmlconnect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.OrderPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Externally reachable base URL of this service")
	fs.StringVar(&cfg.ShopURL, "shop-url", cfg.ShopURL, "Storefront base URL for customer redirects")
	fs.StringVar(&cfg.AppID, "bml-app-id", cfg.AppID, "BML Connect App ID (client_id)")
	fs.StringVar(&cfg.APIKey, "bml-api-key", cfg.APIKey, "BML Connect API key (client_secret)")
	fs.StringVar(&cfg.Currency, "bml-currency", cfg.Currency, "Settlement currency (MVR or USD)")
	fs.BoolVar(&cfg.TestMode, "bml-test-mode", cfg.TestMode, "Use the BML sandbox environment")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between pending order polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OrderPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if keyFile, ok := lookup("BML_API_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read api key file: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.OrderPollInterval <= 0 {
		cfg.OrderPollInterval = defaultOrderPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("public URL must be provided")
	}

	if cfg.ShopURL == "" {
		return nil, fmt.Errorf("shop URL must be provided")
	}

	if cfg.Currency != "MVR" && cfg.Currency != "USD" {
		return nil, fmt.Errorf("unsupported settlement currency %q", cfg.Currency)
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.ShopURL = strings.TrimRight(cfg.ShopURL, "/")

	return cfg, nil
}

// CredentialsConfigured reports whether both merchant identifiers are present.
func (c *Config) CredentialsConfigured() bool {
	return c.AppID != "" && c.APIKey != ""
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
