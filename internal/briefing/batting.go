package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/sabermetrics"
	"mlb-briefing-service/internal/savant"
	"mlb-briefing-service/internal/statsapi"
	"mlb-briefing-service/internal/timeutil"
)

const recentOPSLookbackDays = 30

// BattingAggregator builds the team-level offensive profile: season rates,
// weighted averages, statcast contact quality, splits, and rolling OPS.
type BattingAggregator struct {
	gateway *statsapi.Gateway
	savant  *savant.Client
	cache   cache.Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewBattingAggregator constructs a batting aggregator.
func NewBattingAggregator(gateway *statsapi.Gateway, sc *savant.Client, store cache.Cache, logger *slog.Logger) *BattingAggregator {
	return &BattingAggregator{gateway: gateway, savant: sc, cache: store, logger: logger, now: time.Now}
}

// Line returns the TeamBattingLine for a team and season. The season batting
// record anchors the line; everything else degrades independently.
func (a *BattingAggregator) Line(ctx context.Context, teamID, season int) domain.TeamBattingLine {
	line := domain.TeamBattingLine{
		XWOBASource:   domain.SourceDefault,
		QualitySource: domain.SourceDefault,
		Source:        domain.SourceDefault,
	}

	hitting, ok, err := a.gateway.TeamSeasonHitting(ctx, teamID, season)
	if err != nil {
		logging.Warn(a.logger, "team season hitting unavailable",
			logging.FieldTeamID, teamID, "error", err)
	}
	if ok {
		line.AVG = hitting.AVG
		line.OPS = hitting.OPS
		line.Runs = hitting.Runs
		line.HomeRuns = hitting.HomeRuns
		line.WOBA = sabermetrics.WOBA(season, sabermetrics.WOBACounts{
			AtBats:           hitting.AtBats,
			Hits:             hitting.Hits,
			Doubles:          hitting.Doubles,
			Triples:          hitting.Triples,
			HomeRuns:         hitting.HomeRuns,
			Walks:            hitting.Walks,
			IntentionalWalks: hitting.IntentionalWalks,
			HitByPitch:       hitting.HitByPitch,
			SacFlies:         hitting.SacFlies,
		})
		line.Source = domain.SourceUpstream
	}

	line.XWOBA, line.XWOBASource = a.resolveXWOBA(ctx, teamID, season, line.OPS)

	quality := a.savant.TeamQuality(ctx, teamID, season)
	line.BarrelPct = quality.BarrelPct
	line.HardHitPct = quality.HardHitPct
	line.QualitySample = quality.SampleSize
	line.QualitySource = quality.Source

	splits := a.gateway.TeamSplitsVsPitchers(ctx, teamID, season)
	line.VsLeft = splits.VsLeft
	line.VsRight = splits.VsRight

	line.RecentOPS5 = a.recentOPS(ctx, teamID, 5)
	line.RecentOPS10 = a.recentOPS(ctx, teamID, 10)
	return line
}

// resolveXWOBA prefers the upstream team sabermetrics value and falls back to
// the OPS-derived estimate.
func (a *BattingAggregator) resolveXWOBA(ctx context.Context, teamID, season int, ops float64) (float64, string) {
	saber, ok, err := a.gateway.TeamSabermetricsHitting(ctx, teamID, season)
	if err != nil {
		logging.Warn(a.logger, "team sabermetrics unavailable",
			logging.FieldTeamID, teamID, "error", err)
	}
	if ok && saber.XWOBA > 0 {
		return saber.XWOBA, domain.SourceUpstream
	}
	if ops > 0 {
		return sabermetrics.XWOBAFromOPS(ops), domain.SourceComputed
	}
	return 0, domain.SourceDefault
}

// recentOPS computes the rolling OPS over the team's last n completed games,
// cached per team and window size. Fewer than n finals marks the result
// partial; zero usable games yields the flagged default.
func (a *BattingAggregator) recentOPS(ctx context.Context, teamID, n int) domain.RecentOPS {
	key := fmt.Sprintf("%d_%d", teamID, n)
	var out domain.RecentOPS
	if a.cache.Get(ctx, cache.NamespaceRecentOPS, key, &out) {
		return out
	}

	now := a.now()
	games, err := a.gateway.TeamSchedule(ctx, teamID,
		timeutil.FormatDate(now.AddDate(0, 0, -recentOPSLookbackDays)),
		timeutil.FormatDate(now))
	if err != nil {
		logging.Warn(a.logger, "team schedule unavailable for rolling window",
			logging.FieldTeamID, teamID, "error", err)
		return domain.DefaultRecentOPS()
	}

	var finals []domain.ScheduleGame
	for _, g := range games {
		if g.Status == domain.StatusFinal {
			finals = append(finals, g)
		}
	}
	sort.Slice(finals, func(i, j int) bool { return finals[i].Start.After(finals[j].Start) })
	if len(finals) > n {
		finals = finals[:n]
	}

	var counts sabermetrics.BattingCounts
	used := 0
	for _, g := range finals {
		boxes, berr := a.gateway.Boxscore(ctx, g.GamePK)
		if berr != nil {
			logging.Warn(a.logger, "boxscore unavailable",
				logging.FieldGamePK, g.GamePK, "error", berr)
			continue
		}
		box, found := boxes[teamID]
		if !found {
			continue
		}
		counts.Add(sabermetrics.BattingCounts{
			AtBats:     box.AtBats,
			Hits:       box.Hits,
			Walks:      box.Walks,
			HitByPitch: box.HitByPitch,
			SacFlies:   box.SacFlies,
			Doubles:    box.Doubles,
			Triples:    box.Triples,
			HomeRuns:   box.HomeRuns,
		})
		used++
	}

	ops, computable := sabermetrics.OPSFromCounts(counts)
	if used == 0 || !computable {
		return domain.DefaultRecentOPS()
	}
	out = domain.RecentOPS{
		OPS:     ops,
		Games:   used,
		Partial: used < n,
		Source:  domain.SourceComputed,
	}
	a.cache.Put(ctx, cache.NamespaceRecentOPS, key, out)
	return out
}
