// Package briefing assembles the per-game side-by-side records out of the
// stats gateway, the savant quality feed, and the sabermetric calculators.
// Every aggregator in this package is total: sub-fetch failures contribute
// documented defaults and the bundle is always well-formed.
package briefing

import (
	"context"
	"fmt"
	"log/slog"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/sabermetrics"
	"mlb-briefing-service/internal/statsapi"
)

// PitcherAggregator builds the enhanced stat bundle for one probable starter.
type PitcherAggregator struct {
	gateway *statsapi.Gateway
	cache   cache.Cache
	logger  *slog.Logger
}

// NewPitcherAggregator constructs a pitcher aggregator.
func NewPitcherAggregator(gateway *statsapi.Gateway, store cache.Cache, logger *slog.Logger) *PitcherAggregator {
	return &PitcherAggregator{gateway: gateway, cache: store, logger: logger}
}

// Line returns the PitcherLine for a pitcher and season. fallbackName is used
// when player info is unreachable (typically the schedule's probable name).
// A zero pitcher id means no probable starter has been named.
func (a *PitcherAggregator) Line(ctx context.Context, pitcherID, season int, fallbackName string) domain.PitcherLine {
	if pitcherID == 0 {
		return domain.DefaultPitcherLine(fallbackName)
	}

	key := fmt.Sprintf("%d_%d", pitcherID, season)
	var line domain.PitcherLine
	if a.cache.Get(ctx, cache.NamespacePitcherEnhanced, key, &line) {
		return line
	}

	name := fallbackName
	if info, err := a.gateway.PlayerInfo(ctx, pitcherID); err == nil && info.FullName != "" {
		name = info.FullName
	} else if err != nil {
		logging.Warn(a.logger, "player info unavailable",
			logging.FieldPitcherID, pitcherID, "error", err)
	}

	stats, ok, err := a.gateway.PlayerSeasonPitching(ctx, pitcherID, season)
	if err != nil {
		logging.Warn(a.logger, "season pitching unavailable, returning defaults",
			logging.FieldPitcherID, pitcherID, "error", err)
		return domain.DefaultPitcherLine(name)
	}
	if !ok {
		// No record this season: a well-formed all-defaults line, cacheable
		// because the upstream answered definitively.
		line = domain.DefaultPitcherLine(name)
		a.cache.Put(ctx, cache.NamespacePitcherEnhanced, key, line)
		return line
	}

	line = domain.PitcherLine{
		Name:   name,
		Wins:   stats.Wins,
		Losses: stats.Losses,
		ERA:    stats.ERA,
		WHIP:   stats.WHIP,
		FIP: sabermetrics.FIP(stats.HomeRuns, stats.Walks, stats.HitByPitch,
			stats.StrikeOuts, stats.InningsPitched),
		KBBPct: sabermetrics.KBBPct(stats.StrikeOuts, stats.Walks, stats.BattersFaced),
		Source: domain.SourceUpstream,
	}

	advanced, advOK, advErr := a.gateway.PlayerAdvancedPitching(ctx, pitcherID, season)
	if advErr != nil {
		logging.Warn(a.logger, "advanced pitching unavailable",
			logging.FieldPitcherID, pitcherID, "error", advErr)
	}
	if advOK {
		line.GBPct = advanced.GroundBallPct
		line.FBPct = advanced.FlyBallPct
		line.SwStrPct = advanced.SwStrPct
		line.BABIP = advanced.BABIP
	}

	line.XFIP, line.XFIPSource = a.resolveXFIP(ctx, pitcherID, season, stats, advanced, advOK, line.FIP)
	line.QSRate = a.resolveQSRate(ctx, pitcherID, season, stats)
	line.Splits = a.gateway.PlayerSplits(ctx, pitcherID, season)

	a.cache.Put(ctx, cache.NamespacePitcherEnhanced, key, line)
	return line
}

// resolveXFIP prefers the upstream sabermetrics value, then a fly-ball-rate
// estimate, then FIP itself. The source tag records which one won.
func (a *PitcherAggregator) resolveXFIP(ctx context.Context, pitcherID, season int, stats statsapi.PitchingStats, advanced statsapi.AdvancedPitching, advOK bool, fip float64) (float64, string) {
	saber, ok, err := a.gateway.PlayerSabermetrics(ctx, pitcherID, season)
	if err != nil {
		logging.Warn(a.logger, "sabermetrics group unavailable",
			logging.FieldPitcherID, pitcherID, "error", err)
	}
	if ok && saber.XFIP > 0 {
		return saber.XFIP, domain.SourceUpstream
	}
	if advOK && advanced.FlyBallPct > 0 {
		ballsInPlay := stats.BattersFaced - stats.StrikeOuts - stats.Walks - stats.HitByPitch
		if ballsInPlay > 0 {
			flyBalls := advanced.FlyBallPct / 100 * float64(ballsInPlay)
			xfip := sabermetrics.XFIP(stats.Walks, stats.HitByPitch, stats.StrikeOuts,
				flyBalls, sabermetrics.LeagueHRPerFB, stats.InningsPitched)
			return xfip, domain.SourceComputed
		}
	}
	return fip, domain.SourceDefault
}

// resolveQSRate counts true quality starts from the game log when reachable
// and falls back to the ERA heuristic otherwise.
func (a *PitcherAggregator) resolveQSRate(ctx context.Context, pitcherID, season int, stats statsapi.PitchingStats) float64 {
	heuristic := func() float64 {
		if stats.GamesStarted == 0 {
			return 0
		}
		ipPerStart := stats.InningsPitched / float64(stats.GamesStarted)
		return sabermetrics.QSRateHeuristic(ipPerStart, stats.ERA)
	}

	log, err := a.gateway.PlayerGameLog(ctx, pitcherID, season)
	if err != nil {
		return heuristic()
	}
	starts, quality := 0, 0
	for _, entry := range log {
		if entry.GamesStarted == 0 {
			continue
		}
		starts++
		if entry.InningsPitched >= 6 && entry.EarnedRuns <= 3 {
			quality++
		}
	}
	if starts == 0 {
		return heuristic()
	}
	return 100 * float64(quality) / float64(starts)
}
