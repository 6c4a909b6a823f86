package metrics

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecorderCountsUpstreamCalls(t *testing.T) {
	rec := NewRecorder()

	rec.RecordUpstreamRequest("schedule", 120*time.Millisecond, nil)
	rec.RecordUpstreamRequest("schedule", 80*time.Millisecond, errors.New("boom"))
	rec.RecordUpstreamRequest("boxscore", 10*time.Millisecond, nil)

	if got := rec.UpstreamCalls("schedule"); got != 2 {
		t.Fatalf("expected 2 schedule calls, got %d", got)
	}
	if got := rec.UpstreamErrors("schedule"); got != 1 {
		t.Fatalf("expected 1 schedule error, got %d", got)
	}
	if got := rec.UpstreamCalls("boxscore"); got != 1 {
		t.Fatalf("expected 1 boxscore call, got %d", got)
	}
	if got := rec.UpstreamCalls("roster"); got != 0 {
		t.Fatalf("expected 0 roster calls, got %d", got)
	}
}

func TestRecorderCountsCacheLookups(t *testing.T) {
	rec := NewRecorder()

	rec.RecordCacheLookup("schedule", true)
	rec.RecordCacheLookup("schedule", false)
	rec.RecordCacheLookup("schedule", true)

	if got := rec.CacheHits("schedule"); got != 2 {
		t.Fatalf("expected 2 hits, got %d", got)
	}
	if got := rec.CacheMisses("schedule"); got != 1 {
		t.Fatalf("expected 1 miss, got %d", got)
	}
}

func TestRecorderCountsBriefingBuilds(t *testing.T) {
	rec := NewRecorder()
	rec.RecordBriefingBuild(time.Second, nil)
	rec.RecordBriefingBuild(time.Second, errors.New("partial"))
	if got := rec.BriefingBuilds(); got != 2 {
		t.Fatalf("expected 2 builds, got %d", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordUpstreamRequest("schedule", time.Second, nil)
	rec.RecordCacheLookup("schedule", true)
	rec.RecordBriefingBuild(time.Second, nil)
	rec.RecordHTTPRequest("GET", "/briefings", 200, time.Second)
	if rec.UpstreamCalls("schedule") != 0 || rec.CacheHits("schedule") != 0 {
		t.Fatalf("nil recorder should report zeros")
	}
}

func TestSetupDisabledReturnsRecorder(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected recorder")
	}
	if handler != nil {
		t.Fatalf("expected nil prometheus handler when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown should be a no-op: %v", err)
	}
}

func TestSetupEnabledWiresPrometheus(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
	}()
	if handler == nil {
		t.Fatalf("expected prometheus handler")
	}
	rec.RecordUpstreamRequest("schedule", 5*time.Millisecond, nil)
	if got := rec.UpstreamCalls("schedule"); got != 1 {
		t.Fatalf("expected in-memory mirror to count, got %d", got)
	}
}
