package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
)

// entry is the on-disk envelope: {"payload": <T>, "timestamp": ISO-8601}.
type entry struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is the filesystem-backed cache. Writes are temp-file-then-rename so
// concurrent readers never observe torn files; producers are idempotent, so
// same-key write races are harmless.
type Store struct {
	root     string
	logger   *slog.Logger
	recorder *metrics.Recorder
	now      func() time.Time
}

// NewStore constructs a disk cache rooted at root.
func NewStore(root string, logger *slog.Logger, recorder *metrics.Recorder) *Store {
	return &Store{
		root:     root,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Get decodes a valid entry into out and reports whether one existed.
// Missing, expired, and corrupt entries all read as absent.
func (s *Store) Get(_ context.Context, ns Namespace, key string, out any) bool {
	if s == nil {
		return false
	}
	hit := s.read(ns, key, out)
	s.recorder.RecordCacheLookup(string(ns), hit)
	return hit
}

func (s *Store) read(ns Namespace, key string, out any) bool {
	if s == nil || key == "" {
		return false
	}
	data, err := os.ReadFile(s.path(ns, key))
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn(s.logger, "cache read failed",
				logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		}
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		logging.Warn(s.logger, "cache entry corrupt",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return false
	}
	if s.now().Sub(e.Timestamp) >= TTL(ns) {
		return false
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		logging.Warn(s.logger, "cache payload corrupt",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return false
	}
	return true
}

// Put writes an entry atomically. Failures (disk full included) are logged
// and the write is dropped; the pipeline treats the cache as best-effort.
func (s *Store) Put(_ context.Context, ns Namespace, key string, payload any) {
	if s == nil || key == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logging.Warn(s.logger, "cache payload marshal failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return
	}
	data, err := json.Marshal(entry{Payload: raw, Timestamp: s.now().UTC()})
	if err != nil {
		logging.Warn(s.logger, "cache entry marshal failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return
	}

	target := s.path(ns, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		logging.Warn(s.logger, "cache dir create failed",
			logging.FieldNamespace, string(ns), "error", err)
		return
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logging.Warn(s.logger, "cache write failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		return
	}
	if err := os.Rename(tmp, target); err != nil {
		logging.Warn(s.logger, "cache rename failed",
			logging.FieldNamespace, string(ns), logging.FieldKey, key, "error", err)
		_ = os.Remove(tmp)
	}
}

// Freshness walks every namespace directory and summarizes entry counts and
// the newest write, for the --check-data report.
func (s *Store) Freshness(_ context.Context) []NamespaceFreshness {
	report := make([]NamespaceFreshness, 0, len(All()))
	for _, ns := range All() {
		summary := NamespaceFreshness{Namespace: ns, TTL: TTL(ns)}
		entries, err := os.ReadDir(filepath.Join(s.root, string(ns)))
		if err == nil {
			for _, f := range entries {
				if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
					continue
				}
				summary.Entries++
				data, err := os.ReadFile(filepath.Join(s.root, string(ns), f.Name()))
				if err != nil {
					continue
				}
				var e entry
				if err := json.Unmarshal(data, &e); err != nil {
					continue
				}
				if s.now().Sub(e.Timestamp) < TTL(ns) {
					summary.Fresh++
				}
				if e.Timestamp.After(summary.Newest) {
					summary.Newest = e.Timestamp
				}
			}
		}
		report = append(report, summary)
	}
	return report
}

func (s *Store) path(ns Namespace, key string) string {
	return filepath.Join(s.root, string(ns), key+".json")
}
