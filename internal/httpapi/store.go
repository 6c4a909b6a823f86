// Package httpapi exposes the briefing pipeline over HTTP for serve mode:
// a chi router serving the latest briefings, a health probe, and the
// Prometheus scrape endpoint, fed by a background refresher.
package httpapi

import (
	"sync"
	"time"

	"mlb-briefing-service/internal/domain"
)

// MemoryStore keeps the most recently built slate of briefings in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	date      string
	briefings []domain.GameBriefing
	builtAt   time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set replaces the stored slate.
func (s *MemoryStore) Set(date string, briefings []domain.GameBriefing, builtAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.briefings = briefings
	s.builtAt = builtAt
}

// Get returns the stored slate. ok is false until the first successful build.
func (s *MemoryStore) Get() (date string, briefings []domain.GameBriefing, builtAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.date == "" {
		return "", nil, time.Time{}, false
	}
	out := make([]domain.GameBriefing, len(s.briefings))
	copy(out, s.briefings)
	return s.date, out, s.builtAt, true
}
