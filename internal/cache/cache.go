// Package cache implements the namespaced key→JSON store the aggregation
// pipeline leans on. The Stats API is slow and rate-limited, so every derived
// bundle and most raw endpoint payloads are cached with a per-namespace TTL.
package cache

import (
	"context"
	"time"
)

// Namespace identifies one cache bucket with a fixed TTL.
type Namespace string

const (
	NamespaceSchedule          Namespace = "schedule"
	NamespacePitcherEnhanced   Namespace = "pitcher_enhanced"
	NamespacePitcherSplits     Namespace = "pitcher_splits"
	NamespaceTeamSeasonBatting Namespace = "team_season_batting"
	NamespaceTeamQuality       Namespace = "team_quality"
	NamespaceTeamStatcastAll   Namespace = "team_statcast_all"
	NamespaceBullpen           Namespace = "bullpen"
	NamespaceRecentOPS         Namespace = "recent_ops"
)

var ttls = map[Namespace]time.Duration{
	NamespaceSchedule:          time.Hour,
	NamespacePitcherEnhanced:   24 * time.Hour,
	NamespacePitcherSplits:     24 * time.Hour,
	NamespaceTeamSeasonBatting: 6 * time.Hour,
	NamespaceTeamQuality:       6 * time.Hour,
	NamespaceTeamStatcastAll:   24 * time.Hour,
	NamespaceBullpen:           6 * time.Hour,
	NamespaceRecentOPS:         6 * time.Hour,
}

// TTL returns the fixed time-to-live for a namespace. Unknown namespaces get
// the shortest configured TTL rather than living forever.
func TTL(ns Namespace) time.Duration {
	if ttl, ok := ttls[ns]; ok {
		return ttl
	}
	return time.Hour
}

// All lists every namespace in a stable order, for freshness reporting.
func All() []Namespace {
	return []Namespace{
		NamespaceSchedule,
		NamespacePitcherEnhanced,
		NamespacePitcherSplits,
		NamespaceTeamSeasonBatting,
		NamespaceTeamQuality,
		NamespaceTeamStatcastAll,
		NamespaceBullpen,
		NamespaceRecentOPS,
	}
}

// NamespaceFreshness summarizes one namespace for the --check-data report.
type NamespaceFreshness struct {
	Namespace Namespace     `json:"namespace"`
	TTL       time.Duration `json:"ttl"`
	Entries   int           `json:"entries"`
	Fresh     int           `json:"fresh"`
	Newest    time.Time     `json:"newest,omitempty"`
}

// Cache is the read-or-fetch surface shared by the disk and redis backends.
// Get reports whether a valid (unexpired, parseable) entry was decoded into
// out. Put never fails from the caller's point of view: backend errors are
// logged and the write is dropped.
type Cache interface {
	Get(ctx context.Context, ns Namespace, key string, out any) bool
	Put(ctx context.Context, ns Namespace, key string, payload any)
	Freshness(ctx context.Context) []NamespaceFreshness
}
