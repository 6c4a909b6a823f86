package metrics

import (
	"sync"
	"time"
)

type endpointStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
}

// Recorder captures lightweight, in-memory metrics about the pipeline and
// mirrors them to OTel instruments when telemetry is enabled. The in-memory
// side keeps tests and the --check-data summary independent of any exporter.
type Recorder struct {
	mu       sync.Mutex
	ups      map[string]*endpointStats
	caches   map[string]*cacheStats
	builds   int
	requests int
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		ups:    make(map[string]*endpointStats),
		caches: make(map[string]*cacheStats),
		otel:   otel,
	}
}

// RecordUpstreamRequest counts one upstream call against an endpoint class and
// stores the observed latency.
func (r *Recorder) RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.ups[endpoint]
	if !ok {
		stats = &endpointStats{}
		r.ups[endpoint] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordUpstream(endpoint, duration, err)
	}
}

// RecordCacheLookup counts a cache hit or miss for a namespace.
func (r *Recorder) RecordCacheLookup(namespace string, hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.caches[namespace]
	if !ok {
		stats = &cacheStats{}
		r.caches[namespace] = stats
	}
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(namespace, hit)
	}
}

// RecordBriefingBuild tracks one per-game briefing assembly.
func (r *Recorder) RecordBriefingBuild(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.builds++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordBriefingBuild(duration, err)
	}
}

// RecordHTTPRequest tracks basic serve-mode HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.requests++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordHTTPRequest(method, path, status, duration)
	}
}

// HTTPRequests returns the total serve-mode requests recorded.
func (r *Recorder) HTTPRequests() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}

// UpstreamCalls returns the total calls recorded for an endpoint class.
func (r *Recorder) UpstreamCalls(endpoint string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.ups[endpoint]; ok {
		return stats.calls
	}
	return 0
}

// UpstreamErrors returns the total failed calls recorded for an endpoint class.
func (r *Recorder) UpstreamErrors(endpoint string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.ups[endpoint]; ok {
		return stats.errors
	}
	return 0
}

// CacheHits returns the number of recorded hits for a namespace.
func (r *Recorder) CacheHits(namespace string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.caches[namespace]; ok {
		return stats.hits
	}
	return 0
}

// CacheMisses returns the number of recorded misses for a namespace.
func (r *Recorder) CacheMisses(namespace string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.caches[namespace]; ok {
		return stats.misses
	}
	return 0
}

// BriefingBuilds returns the total briefings assembled.
func (r *Recorder) BriefingBuilds() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds
}
