package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/metrics"
	"mlb-briefing-service/internal/savant"
	"mlb-briefing-service/internal/statsapi"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// memCache is a map-backed Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) key(ns cache.Namespace, key string) string {
	return string(ns) + "/" + key
}

func (m *memCache) Get(_ context.Context, ns cache.Namespace, key string, out any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[m.key(ns, key)]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (m *memCache) Put(_ context.Context, ns cache.Namespace, key string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.key(ns, key)] = raw
}

func (m *memCache) Freshness(context.Context) []cache.NamespaceFreshness {
	return nil
}

func (m *memCache) has(ns cache.Namespace, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[m.key(ns, key)]
	return ok
}

// upstream routes requests by path plus stats type, counting hits per route.
// Unrouted paths answer 404, which the client treats as permanent.
type upstream struct {
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

func newUpstream() *upstream {
	return &upstream{routes: make(map[string]string), hits: make(map[string]int)}
}

func routeKey(path, statsType string) string {
	if statsType == "" {
		return path
	}
	return path + "?stats=" + statsType
}

func (u *upstream) route(path, statsType, body string) {
	u.routes[routeKey(path, statsType)] = body
}

func (u *upstream) roundTrip(req *http.Request) (*http.Response, error) {
	key := routeKey(req.URL.Path, req.URL.Query().Get("stats"))
	u.mu.Lock()
	u.hits[key]++
	body, ok := u.routes[key]
	u.mu.Unlock()
	if !ok {
		return jsonResponse(404, `{"message":"not found"}`), nil
	}
	return jsonResponse(200, body), nil
}

func (u *upstream) hitCount(path, statsType string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[routeKey(path, statsType)]
}

func newTestGateway(u *upstream, store cache.Cache) *statsapi.Gateway {
	client := statsapi.NewClient(statsapi.Config{
		BaseURL:    "http://example.com",
		HTTPClient: &http.Client{Transport: roundTripperFunc(u.roundTrip)},
		Recorder:   metrics.NewRecorder(),
	})
	return statsapi.NewGateway(client, store, nil)
}

func newTestSavant(store cache.Cache) *savant.Client {
	return savant.NewClient(savant.Config{
		BaseURL: "http://savant.example.com",
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(404, "not found"), nil
		})},
		Cache:    store,
		Recorder: metrics.NewRecorder(),
	})
}

func statSplitBody(stat string) string {
	return fmt.Sprintf(`{"stats":[{"splits":[{"stat":%s}]}]}`, stat)
}
