package config

import "time"

const (
	envStatsAPIBaseURL = "STATSAPI_BASE_URL"
	envSavantBaseURL   = "SAVANT_BASE_URL"
	envCacheRoot       = "CACHE_ROOT"
	envCacheBackend    = "CACHE_BACKEND"
	envRedisAddr       = "REDIS_ADDR"
	envHTTPTimeout     = "HTTP_TIMEOUT"
	envHTTPMaxAttempts = "HTTP_MAX_ATTEMPTS"
	envSeason          = "SEASON"
	envConcurrency     = "CONCURRENCY"
	envWebhookURL      = "WEBHOOK_URL"
	envPort            = "PORT"
	envRefreshInterval = "REFRESH_INTERVAL"
	envMetricsOn       = "METRICS_ENABLED"
	envMetricsPort     = "METRICS_PORT"
	envOtelEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService     = "OTEL_SERVICE_NAME"
	envOtelInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultStatsAPIBaseURL = "https://statsapi.mlb.com/api/v1"
	defaultSavantBaseURL   = "https://baseballsavant.mlb.com/statcast_search/csv"
	defaultCacheRoot       = "./cache"
	defaultCacheBackend    = BackendDisk
	defaultRedisAddr       = "localhost:6379"
	// The Stats API is slow; a generous total deadline beats mid-flight cancels.
	defaultHTTPTimeout     = 30 * time.Second
	defaultHTTPMaxAttempts = 3
	defaultConcurrency     = 4
	defaultPort            = "8080"
	// Serve mode re-builds today's briefings on this cadence; the schedule
	// cache TTL (1h) already bounds upstream traffic.
	defaultRefreshInterval = 30 * time.Minute
	defaultMetricsPort     = "9090"
)

// Cache backend selectors.
const (
	BackendDisk  = "disk"
	BackendRedis = "redis"
)
