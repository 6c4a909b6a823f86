package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide runtime configuration, fixed at startup.
type Config struct {
	StatsAPIBaseURL string
	SavantBaseURL   string
	CacheRoot       string
	CacheBackend    string
	RedisAddr       string
	HTTPTimeout     time.Duration
	HTTPMaxAttempts int
	Season          int
	Concurrency     int
	WebhookURL      string
	Port            string
	RefreshInterval time.Duration
	Metrics         MetricsConfig
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		StatsAPIBaseURL: envOrDefault(envStatsAPIBaseURL, defaultStatsAPIBaseURL),
		SavantBaseURL:   envOrDefault(envSavantBaseURL, defaultSavantBaseURL),
		CacheRoot:       envOrDefault(envCacheRoot, defaultCacheRoot),
		CacheBackend:    envOrDefault(envCacheBackend, defaultCacheBackend),
		RedisAddr:       envOrDefault(envRedisAddr, defaultRedisAddr),
		HTTPTimeout:     durationEnvOrDefault(envHTTPTimeout, defaultHTTPTimeout),
		HTTPMaxAttempts: intEnvOrDefault(envHTTPMaxAttempts, defaultHTTPMaxAttempts),
		Season:          intEnvOrDefault(envSeason, time.Now().Year()),
		Concurrency:     intEnvOrDefault(envConcurrency, defaultConcurrency),
		WebhookURL:      envOrDefault(envWebhookURL, ""),
		Port:            envOrDefault(envPort, defaultPort),
		RefreshInterval: durationEnvOrDefault(envRefreshInterval, defaultRefreshInterval),
		Metrics:         loadMetrics(),
	}
}

// Validate rejects configurations the pipeline cannot run with. Config errors
// are the only fatal startup errors.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case BackendDisk, BackendRedis:
	default:
		return fmt.Errorf("config: unknown cache backend %q (want %s or %s)", c.CacheBackend, BackendDisk, BackendRedis)
	}
	if c.CacheBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("config: redis backend selected but no redis address")
	}
	if c.Season < 1900 || c.Season > 2100 {
		return fmt.Errorf("config: implausible season %d", c.Season)
	}
	return nil
}
