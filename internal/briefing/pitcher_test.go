package briefing

import (
	"context"
	"math"
	"testing"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/sabermetrics"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPitcherLineFull(t *testing.T) {
	u := newUpstream()
	u.route("/people/592332", "", `{"people":[{"id":592332,"fullName":"Kevin Gausman"}]}`)
	u.route("/people/592332/stats", "season", statSplitBody(`{
		"wins":10,"losses":8,"era":"3.59","whip":"1.18","inningsPitched":"183.0",
		"homeRuns":22,"baseOnBalls":45,"hitByPitch":5,"strikeOuts":185,
		"battersFaced":750,"gamesStarted":31,"gamesPlayed":31}`))
	u.route("/people/592332/stats", "sabermetrics", statSplitBody(`{"xfip":"3.80"}`))
	u.route("/people/592332/stats", "seasonAdvanced", statSplitBody(`{
		"groundBallsPercentage":"0.45","flyBallsPercentage":"0.35",
		"swingAndMissPercentage":"0.11","babip":".290"}`))
	u.route("/people/592332/stats", "gameLog", `{"stats":[{"splits":[
		{"date":"2025-07-20","stat":{"inningsPitched":"7.0","earnedRuns":2,"gamesStarted":1}},
		{"date":"2025-07-26","stat":{"inningsPitched":"5.0","earnedRuns":4,"gamesStarted":1}},
		{"date":"2025-08-01","stat":{"inningsPitched":"6.0","earnedRuns":3,"gamesStarted":1}}
	]}]}`)
	u.route("/people/592332/stats", "statSplits", `{"stats":[{"splits":[
		{"stat":{"avg":".230","ops":".650"},"split":{"code":"vl"}},
		{"stat":{"avg":".260","ops":".740"},"split":{"code":"vr"}}
	]}]}`)

	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(u, store), store, nil)
	line := agg.Line(context.Background(), 592332, 2025, "probable name")

	if line.Name != "Kevin Gausman" {
		t.Fatalf("expected upstream name, got %q", line.Name)
	}
	if line.Wins != 10 || line.Losses != 8 || line.ERA != 3.59 || line.WHIP != 1.18 {
		t.Fatalf("unexpected record: %+v", line)
	}
	wantFIP := sabermetrics.FIP(22, 45, 5, 185, 183)
	if !almostEqual(line.FIP, wantFIP) {
		t.Fatalf("expected FIP %.4f, got %.4f", wantFIP, line.FIP)
	}
	if line.XFIP != 3.80 || line.XFIPSource != domain.SourceUpstream {
		t.Fatalf("expected upstream xFIP, got %.2f (%s)", line.XFIP, line.XFIPSource)
	}
	if line.KBBPct != 18.7 {
		t.Fatalf("expected K-BB%% 18.7, got %.1f", line.KBBPct)
	}
	if line.GBPct != 45 || line.FBPct != 35 || line.SwStrPct != 11 {
		t.Fatalf("unexpected batted-ball rates: %+v", line)
	}
	if !almostEqual(line.QSRate, 100*2.0/3.0) {
		t.Fatalf("expected quality start rate from game log, got %.2f", line.QSRate)
	}
	if line.Splits.Source != domain.SourceUpstream || line.Splits.VsLeft.OPS != 0.650 {
		t.Fatalf("unexpected splits: %+v", line.Splits)
	}
	if line.Source != domain.SourceUpstream {
		t.Fatalf("expected upstream source, got %q", line.Source)
	}
	if !store.has(cache.NamespacePitcherEnhanced, "592332_2025") {
		t.Fatal("expected the enhanced line to be cached")
	}

	// Second call is served from the cache.
	agg.Line(context.Background(), 592332, 2025, "probable name")
	if got := u.hitCount("/people/592332/stats", "season"); got != 1 {
		t.Fatalf("expected one season fetch, got %d", got)
	}
}

func TestPitcherLineUnnamedProbable(t *testing.T) {
	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(newUpstream(), store), store, nil)

	line := agg.Line(context.Background(), 0, 2025, "Listed Starter")
	if line.Name != "Listed Starter" || line.Source != domain.SourceDefault {
		t.Fatalf("expected default bundle with listed name, got %+v", line)
	}

	line = agg.Line(context.Background(), 0, 2025, "")
	if line.Name != "TBD" {
		t.Fatalf("expected TBD placeholder, got %q", line.Name)
	}
}

func TestPitcherLineXFIPComputedFromFlyBalls(t *testing.T) {
	u := newUpstream()
	u.route("/people/100/stats", "season", statSplitBody(`{
		"wins":3,"losses":2,"era":"4.10","whip":"1.30","inningsPitched":"50.0",
		"homeRuns":6,"baseOnBalls":10,"hitByPitch":2,"strikeOuts":30,
		"battersFaced":100,"gamesStarted":9,"gamesPlayed":9}`))
	u.route("/people/100/stats", "seasonAdvanced", statSplitBody(`{"flyBallsPercentage":"0.40"}`))

	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(u, store), store, nil)
	line := agg.Line(context.Background(), 100, 2025, "")

	ballsInPlay := 100 - 30 - 10 - 2
	flyBalls := 0.40 * float64(ballsInPlay)
	want := sabermetrics.XFIP(10, 2, 30, flyBalls, sabermetrics.LeagueHRPerFB, 50)
	if !almostEqual(line.XFIP, want) {
		t.Fatalf("expected computed xFIP %.4f, got %.4f", want, line.XFIP)
	}
	if line.XFIPSource != domain.SourceComputed {
		t.Fatalf("expected computed source, got %q", line.XFIPSource)
	}
}

func TestPitcherLineXFIPFallsBackToFIP(t *testing.T) {
	u := newUpstream()
	u.route("/people/101/stats", "season", statSplitBody(`{
		"wins":1,"losses":0,"era":"2.00","whip":"1.00","inningsPitched":"18.0",
		"homeRuns":1,"baseOnBalls":4,"hitByPitch":0,"strikeOuts":20,
		"battersFaced":70,"gamesStarted":3,"gamesPlayed":3}`))

	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(u, store), store, nil)
	line := agg.Line(context.Background(), 101, 2025, "")

	if !almostEqual(line.XFIP, line.FIP) || line.XFIPSource != domain.SourceDefault {
		t.Fatalf("expected xFIP to fall back to FIP, got %+v", line)
	}
}

func TestPitcherLineQSRateHeuristicWhenNoGameLog(t *testing.T) {
	u := newUpstream()
	u.route("/people/102/stats", "season", statSplitBody(`{
		"wins":12,"losses":5,"era":"2.80","whip":"1.05","inningsPitched":"180.0",
		"homeRuns":15,"baseOnBalls":40,"hitByPitch":4,"strikeOuts":200,
		"battersFaced":720,"gamesStarted":30,"gamesPlayed":30}`))

	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(u, store), store, nil)
	line := agg.Line(context.Background(), 102, 2025, "")

	// 180 IP over 30 starts with a 2.80 ERA sits in the top heuristic band.
	if line.QSRate != 75 {
		t.Fatalf("expected heuristic rate 75, got %.1f", line.QSRate)
	}
}

func TestPitcherLineDefaultsWhenSeasonFetchFails(t *testing.T) {
	// No season route: the stats endpoint 404s, which surfaces as an error.
	u := newUpstream()
	u.route("/people/103", "", `{"people":[{"id":103,"fullName":"Rookie Arm"}]}`)

	store := newMemCache()
	agg := NewPitcherAggregator(newTestGateway(u, store), store, nil)
	line := agg.Line(context.Background(), 103, 2025, "fallback")

	if line.Name != "Rookie Arm" || line.Source != domain.SourceDefault {
		t.Fatalf("expected default bundle with upstream name, got %+v", line)
	}
	if store.has(cache.NamespacePitcherEnhanced, "103_2025") {
		t.Fatal("failed fetches must not be cached")
	}
}
