package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
)

// Redis is the alternative cache backend for deployments where several
// briefing processes share one warm cache. Keys are "<namespace>:<key>" and
// expiry is delegated to Redis, so entries read back are valid by definition.
type Redis struct {
	client   *redis.Client
	logger   *slog.Logger
	recorder *metrics.Recorder
	now      func() time.Time
}

// NewRedis constructs a redis-backed cache against the given address.
func NewRedis(addr string, logger *slog.Logger, recorder *metrics.Recorder) *Redis {
	return &Redis{
		client:   redis.NewClient(&redis.Options{Addr: addr}),
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

func redisKey(ns Namespace, key string) string {
	return fmt.Sprintf("%s:%s", ns, key)
}

// Get decodes a live entry into out. Connectivity problems read as misses.
func (r *Redis) Get(ctx context.Context, ns Namespace, key string, out any) bool {
	if r == nil {
		return false
	}
	hit := r.read(ctx, ns, key, out)
	r.recorder.RecordCacheLookup(string(ns), hit)
	return hit
}

func (r *Redis) read(ctx context.Context, ns Namespace, key string, out any) bool {
	if r == nil || key == "" {
		return false
	}
	data, err := r.client.Get(ctx, redisKey(ns, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Warn(r.logger, "redis read failed",
				logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		}
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		logging.Warn(r.logger, "redis entry corrupt",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return false
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		logging.Warn(r.logger, "redis payload corrupt",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return false
	}
	return true
}

// Put stores the entry with the namespace TTL as the key expiry. Failures are
// logged and dropped.
func (r *Redis) Put(ctx context.Context, ns Namespace, key string, payload any) {
	if r == nil || key == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logging.Warn(r.logger, "redis payload marshal failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return
	}
	data, err := json.Marshal(entry{Payload: raw, Timestamp: r.now().UTC()})
	if err != nil {
		logging.Warn(r.logger, "redis entry marshal failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKey(ns, key), data, TTL(ns)).Err(); err != nil {
		logging.Warn(r.logger, "redis write failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
	}
}

// Freshness scans each namespace prefix and reports live-entry counts. Redis
// expires keys itself, so every surviving entry counts as fresh.
func (r *Redis) Freshness(ctx context.Context) []NamespaceFreshness {
	report := make([]NamespaceFreshness, 0, len(All()))
	for _, ns := range All() {
		summary := NamespaceFreshness{Namespace: ns, TTL: TTL(ns)}
		iter := r.client.Scan(ctx, 0, string(ns)+":*", 0).Iterator()
		for iter.Next(ctx) {
			summary.Entries++
			summary.Fresh++
		}
		if err := iter.Err(); err != nil {
			logging.Warn(r.logger, "redis scan failed",
				logging.FieldNamespace, string(ns), "error", err)
		}
		report = append(report, summary)
	}
	return report
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
