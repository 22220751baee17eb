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
	RunAddress  string
	DatabaseURI string
	LogLevel    string

	// Rate resolution pipeline.
	BCVProviderURL      string
	DolarAPIProviderURL string
	ERAPIProviderURL    string
	ProviderTimeout     time.Duration
	PairBase            string
	PairQuote           string
	RateMin             float64
	RateMax             float64
	DefaultRate         float64
	RateFreshness       time.Duration
	RateRetention       time.Duration
	SweepInterval       time.Duration
	RateRefreshInterval time.Duration

	// Notification dispatch.
	DedupeWindow time.Duration

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultLogLevel        = "info"
	defaultProviderTimeout = 8 * time.Second
	defaultPairBase        = "USD"
	defaultPairQuote       = "VES"
	defaultRateMin         = 1
	defaultRateMax         = 1000
	defaultRate            = 40.0
	defaultRateFreshness   = 24 * time.Hour
	defaultRateRetention   = 30 * 24 * time.Hour
	defaultSweepInterval   = 6 * time.Hour
	defaultDedupeWindow    = 12 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		BCVProviderURL:      getString(lookup, "BCV_PROVIDER_URL", ""),
		DolarAPIProviderURL: getString(lookup, "DOLARAPI_PROVIDER_URL", ""),
		ERAPIProviderURL:    getString(lookup, "ERAPI_PROVIDER_URL", ""),
		ProviderTimeout:     getDuration(lookup, "PROVIDER_TIMEOUT", defaultProviderTimeout),
		PairBase:            getString(lookup, "PAIR_BASE", defaultPairBase),
		PairQuote:           getString(lookup, "PAIR_QUOTE", defaultPairQuote),
		RateMin:             getFloat(lookup, "RATE_MIN", defaultRateMin),
		RateMax:             getFloat(lookup, "RATE_MAX", defaultRateMax),
		DefaultRate:         getFloat(lookup, "DEFAULT_RATE", defaultRate),
		RateFreshness:       getDuration(lookup, "RATE_FRESHNESS", defaultRateFreshness),
		RateRetention:       getDuration(lookup, "RATE_RETENTION", defaultRateRetention),
		SweepInterval:       getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		RateRefreshInterval: getDuration(lookup, "RATE_REFRESH_INTERVAL", 0),
		DedupeWindow:        getDuration(lookup, "DEDUPE_WINDOW", defaultDedupeWindow),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("cargotrack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		providerTimeoutStr = cfg.ProviderTimeout.String()
		freshnessStr       = cfg.RateFreshness.String()
		retentionStr       = cfg.RateRetention.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		dedupeWindowStr    = cfg.DedupeWindow.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log verbosity: debug, info, warn or error")
	fs.StringVar(&cfg.BCVProviderURL, "bcv-url", cfg.BCVProviderURL, "BCV rate provider URL")
	fs.StringVar(&cfg.DolarAPIProviderURL, "dolarapi-url", cfg.DolarAPIProviderURL, "DolarAPI rate provider URL")
	fs.StringVar(&cfg.ERAPIProviderURL, "erapi-url", cfg.ERAPIProviderURL, "ExchangeRate-API provider URL")
	fs.StringVar(&providerTimeoutStr, "provider-timeout", providerTimeoutStr, "Per-provider fetch timeout")
	fs.Float64Var(&cfg.RateMin, "rate-min", cfg.RateMin, "Lower plausibility bound for fetched rates")
	fs.Float64Var(&cfg.RateMax, "rate-max", cfg.RateMax, "Upper plausibility bound for fetched rates")
	fs.Float64Var(&cfg.DefaultRate, "default-rate", cfg.DefaultRate, "Hardcoded rate of last resort")
	fs.StringVar(&freshnessStr, "rate-freshness", freshnessStr, "Horizon for replaying history as fallback")
	fs.StringVar(&retentionStr, "rate-retention", retentionStr, "Retention horizon for the rate history")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between retention sweeps")
	fs.StringVar(&dedupeWindowStr, "dedupe-window", dedupeWindowStr, "Window for time-bounded notification dedupe")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ProviderTimeout, err = time.ParseDuration(providerTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid provider timeout: %w", err)
	}
	if cfg.RateFreshness, err = time.ParseDuration(freshnessStr); err != nil {
		return nil, fmt.Errorf("invalid rate freshness: %w", err)
	}
	if cfg.RateRetention, err = time.ParseDuration(retentionStr); err != nil {
		return nil, fmt.Errorf("invalid rate retention: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if cfg.DedupeWindow, err = time.ParseDuration(dedupeWindowStr); err != nil {
		return nil, fmt.Errorf("invalid dedupe window: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.RateFreshness <= 0 {
		cfg.RateFreshness = defaultRateFreshness
	}
	if cfg.RateRetention <= 0 {
		cfg.RateRetention = defaultRateRetention
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = defaultDedupeWindow
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.RateMin <= 0 || cfg.RateMax <= cfg.RateMin {
		return nil, fmt.Errorf("rate bounds must satisfy 0 < min < max")
	}
	if cfg.DefaultRate <= 0 {
		return nil, fmt.Errorf("default rate must be positive")
	}
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
