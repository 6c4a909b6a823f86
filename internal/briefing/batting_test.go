package briefing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/sabermetrics"
	"mlb-briefing-service/internal/savant"
)

func newBattingFixture(u *upstream, store *memCache) *BattingAggregator {
	agg := NewBattingAggregator(newTestGateway(u, store), newTestSavant(store), store, nil)
	agg.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	return agg
}

func TestBattingLineFull(t *testing.T) {
	u := newUpstream()
	u.route("/teams/141/stats", "season", statSplitBody(`{
		"avg":".265","ops":".780","runs":720,"homeRuns":190,"atBats":5500,
		"hits":1458,"doubles":280,"triples":20,"baseOnBalls":500,
		"intentionalWalks":30,"hitByPitch":60,"sacFlies":45}`))
	u.route("/teams/141/stats", "sabermetrics", statSplitBody(`{"woba":".325","xwoba":".330"}`))
	u.route("/teams/141/stats", "statSplits", `{"stats":[{"splits":[
		{"stat":{"avg":".270","ops":".800"},"split":{"code":"vl"}},
		{"stat":{"avg":".262","ops":".770"},"split":{"code":"vr"}}
	]}]}`)
	u.route("/schedule", "", `{"dates":[{"games":[
		{"gamePk":1001,"gameDate":"2025-07-30T23:00:00Z","status":{"abstractGameState":"Final"},
		 "teams":{"away":{"team":{"id":141,"name":"Toronto Blue Jays"}},"home":{"team":{"id":147,"name":"New York Yankees"}}}},
		{"gamePk":1002,"gameDate":"2025-07-31T23:00:00Z","status":{"abstractGameState":"Final"},
		 "teams":{"away":{"team":{"id":141,"name":"Toronto Blue Jays"}},"home":{"team":{"id":147,"name":"New York Yankees"}}}},
		{"gamePk":1003,"gameDate":"2025-08-01T23:00:00Z","status":{"abstractGameState":"Preview"},
		 "teams":{"away":{"team":{"id":141,"name":"Toronto Blue Jays"}},"home":{"team":{"id":147,"name":"New York Yankees"}}}}
	]}]}`)
	boxscore := `{"teams":{
		"away":{"team":{"id":141},"teamStats":{"batting":{"atBats":34,"hits":10,"doubles":2,"triples":0,"homeRuns":1,"baseOnBalls":4,"hitByPitch":1,"sacFlies":1}}},
		"home":{"team":{"id":147},"teamStats":{"batting":{"atBats":33,"hits":8,"doubles":1,"triples":0,"homeRuns":2,"baseOnBalls":3,"hitByPitch":0,"sacFlies":0}}}}}`
	u.route("/game/1001/boxscore", "", boxscore)
	u.route("/game/1002/boxscore", "", boxscore)

	store := newMemCache()
	store.Put(context.Background(), cache.NamespaceTeamStatcastAll, "2025", map[int]savant.Quality{
		141: {BarrelPct: 9.5, HardHitPct: 42.3, SampleSize: 1200, Source: domain.SourceUpstream},
	})

	agg := newBattingFixture(u, store)
	line := agg.Line(context.Background(), 141, 2025)

	if line.AVG != 0.265 || line.OPS != 0.780 || line.Runs != 720 || line.HomeRuns != 190 {
		t.Fatalf("unexpected season rates: %+v", line)
	}
	wantWOBA := sabermetrics.WOBA(2025, sabermetrics.WOBACounts{
		AtBats: 5500, Hits: 1458, Doubles: 280, Triples: 20, HomeRuns: 190,
		Walks: 500, IntentionalWalks: 30, HitByPitch: 60, SacFlies: 45,
	})
	if !almostEqual(line.WOBA, wantWOBA) {
		t.Fatalf("expected wOBA %.4f, got %.4f", wantWOBA, line.WOBA)
	}
	if line.XWOBA != 0.330 || line.XWOBASource != domain.SourceUpstream {
		t.Fatalf("expected upstream xwOBA, got %.3f (%s)", line.XWOBA, line.XWOBASource)
	}
	if line.BarrelPct != 9.5 || line.HardHitPct != 42.3 || line.QualitySample != 1200 {
		t.Fatalf("unexpected contact quality: %+v", line)
	}
	if line.VsLeft.OPS != 0.800 || line.VsRight.OPS != 0.770 {
		t.Fatalf("unexpected splits: %+v", line)
	}

	// Two finals feed both windows; both are partial.
	counts := sabermetrics.BattingCounts{
		AtBats: 68, Hits: 20, Walks: 8, HitByPitch: 2, SacFlies: 2,
		Doubles: 4, Triples: 0, HomeRuns: 2,
	}
	wantOPS, _ := sabermetrics.OPSFromCounts(counts)
	for _, recent := range []domain.RecentOPS{line.RecentOPS5, line.RecentOPS10} {
		if !almostEqual(recent.OPS, wantOPS) || recent.Games != 2 || !recent.Partial {
			t.Fatalf("unexpected rolling window: %+v", recent)
		}
		if recent.Source != domain.SourceComputed {
			t.Fatalf("expected computed source, got %q", recent.Source)
		}
	}
	if line.Source != domain.SourceUpstream {
		t.Fatalf("expected upstream source, got %q", line.Source)
	}
	if !store.has(cache.NamespaceRecentOPS, "141_5") || !store.has(cache.NamespaceRecentOPS, "141_10") {
		t.Fatal("expected rolling windows to be cached per size")
	}
}

func TestBattingLineXWOBAEstimatedFromOPS(t *testing.T) {
	u := newUpstream()
	u.route("/teams/144/stats", "season", statSplitBody(`{
		"avg":".250","ops":".720","runs":650,"homeRuns":160,"atBats":5400,
		"hits":1350,"doubles":260,"triples":18,"baseOnBalls":470,
		"intentionalWalks":25,"hitByPitch":55,"sacFlies":40}`))

	store := newMemCache()
	agg := newBattingFixture(u, store)
	line := agg.Line(context.Background(), 144, 2025)

	if !almostEqual(line.XWOBA, sabermetrics.XWOBAFromOPS(0.720)) {
		t.Fatalf("expected OPS-derived xwOBA, got %.4f", line.XWOBA)
	}
	if line.XWOBASource != domain.SourceComputed {
		t.Fatalf("expected computed source, got %q", line.XWOBASource)
	}
	if line.QualitySource != domain.SourceDefault || line.BarrelPct != 8.0 {
		t.Fatalf("expected default contact quality, got %+v", line)
	}
	if line.VsLeft != (domain.Split{AVG: 0.250, OPS: 0.700}) {
		t.Fatalf("expected default splits, got %+v", line.VsLeft)
	}
}

func TestBattingLineDefaultsWhenSeasonFetchFails(t *testing.T) {
	store := newMemCache()
	agg := newBattingFixture(newUpstream(), store)
	line := agg.Line(context.Background(), 158, 2025)

	if line.Source != domain.SourceDefault || line.OPS != 0 {
		t.Fatalf("expected default-anchored line, got %+v", line)
	}
	if line.RecentOPS5.Source != domain.SourceDefault || line.RecentOPS5.OPS != 0.700 {
		t.Fatalf("expected flagged default rolling window, got %+v", line.RecentOPS5)
	}
	if store.has(cache.NamespaceRecentOPS, "158_5") {
		t.Fatal("failed rolling windows must not be cached")
	}
}

func TestRecentOPSKeepsLatestNFinals(t *testing.T) {
	u := newUpstream()
	games := `{"dates":[{"games":[`
	boxFor := func(pk int, hits int) (string, string) {
		path := "/game/" + fmtInt(pk) + "/boxscore"
		body := `{"teams":{
			"away":{"team":{"id":109},"teamStats":{"batting":{"atBats":30,"hits":` + fmtInt(hits) + `,"doubles":0,"triples":0,"homeRuns":0,"baseOnBalls":0,"hitByPitch":0,"sacFlies":0}}},
			"home":{"team":{"id":115},"teamStats":{"batting":{"atBats":30,"hits":5,"doubles":0,"triples":0,"homeRuns":0,"baseOnBalls":0,"hitByPitch":0,"sacFlies":0}}}}}`
		return path, body
	}
	for day := 1; day <= 8; day++ {
		if day > 1 {
			games += ","
		}
		pk := 2000 + day
		games += fmtGame(pk, day)
		path, body := boxFor(pk, day)
		u.route(path, "", body)
	}
	games += `]}]}`
	u.route("/schedule", "", games)

	store := newMemCache()
	agg := newBattingFixture(u, store)
	recent := agg.recentOPS(context.Background(), 109, 5)

	if recent.Games != 5 || recent.Partial {
		t.Fatalf("expected a full five-game window, got %+v", recent)
	}
	// Only the five most recent finals count: days 4 through 8 total 30 hits
	// in 150 at-bats with no walks or extra bases, so OBP = SLG = .200.
	if !almostEqual(recent.OPS, 0.400) {
		t.Fatalf("expected OPS .400 from the latest five games, got %.4f", recent.OPS)
	}
}

func fmtInt(v int) string {
	return fmt.Sprintf("%d", v)
}

func fmtGame(pk, day int) string {
	return fmt.Sprintf(`{"gamePk":%d,"gameDate":"2025-07-%02dT23:00:00Z","status":{"abstractGameState":"Final"},
		"teams":{"away":{"team":{"id":109,"name":"Arizona Diamondbacks"}},"home":{"team":{"id":115,"name":"Colorado Rockies"}}}}`, pk, day)
}
