package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/sabermetrics"
	"mlb-briefing-service/internal/statsapi"
	"mlb-briefing-service/internal/timeutil"
)

const (
	relieverMinAppearances = 10
	closerMinSaves         = 5
	setupMinHolds          = 5
	maxSetupMen            = 2
	fatigueWindow30        = 5
	fatigueWindow7         = 3
)

// BullpenAggregator pools reliever stats for one team into a single line.
type BullpenAggregator struct {
	gateway *statsapi.Gateway
	cache   cache.Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewBullpenAggregator constructs a bullpen aggregator.
func NewBullpenAggregator(gateway *statsapi.Gateway, store cache.Cache, logger *slog.Logger) *BullpenAggregator {
	return &BullpenAggregator{gateway: gateway, cache: store, logger: logger, now: time.Now}
}

type relieverStats struct {
	id     int
	name   string
	stats  statsapi.PitchingStats
	fip    float64
	apps30 int
	apps7  int
}

// Line returns the pooled BullpenLine for a team and season. Roster or stat
// failures degrade to an all-defaults line rather than an error.
func (a *BullpenAggregator) Line(ctx context.Context, teamID, season int) domain.BullpenLine {
	key := fmt.Sprintf("%d_%d", teamID, season)
	var line domain.BullpenLine
	if a.cache.Get(ctx, cache.NamespaceBullpen, key, &line) {
		return line
	}

	roster, err := a.gateway.TeamRoster(ctx, teamID)
	if err != nil {
		logging.Warn(a.logger, "roster unavailable, returning default bullpen",
			logging.FieldTeamID, teamID, "error", err)
		return domain.BullpenLine{Source: domain.SourceDefault}
	}

	relievers := a.collectRelievers(ctx, roster, season)
	if len(relievers) == 0 {
		line = domain.BullpenLine{Source: domain.SourceDefault}
		a.cache.Put(ctx, cache.NamespaceBullpen, key, line)
		return line
	}

	line = a.pool(relievers)
	a.cache.Put(ctx, cache.NamespaceBullpen, key, line)
	return line
}

// collectRelievers filters the roster down to active relievers and fetches
// each one's season stats and recent workload.
func (a *BullpenAggregator) collectRelievers(ctx context.Context, roster []statsapi.RosterEntry, season int) []relieverStats {
	var out []relieverStats
	for _, entry := range roster {
		if !isPitcher(entry) {
			continue
		}
		stats, ok, err := a.gateway.PlayerSeasonPitching(ctx, entry.PersonID, season)
		if err != nil || !ok {
			if err != nil {
				logging.Warn(a.logger, "reliever stats unavailable",
					logging.FieldPitcherID, entry.PersonID, "error", err)
			}
			continue
		}
		if !isReliever(stats) {
			continue
		}
		apps30, apps7, active := a.recentWorkload(ctx, entry.PersonID, season)
		if !active {
			continue
		}
		out = append(out, relieverStats{
			id:    entry.PersonID,
			name:  entry.FullName,
			stats: stats,
			fip: sabermetrics.FIP(stats.HomeRuns, stats.Walks, stats.HitByPitch,
				stats.StrikeOuts, stats.InningsPitched),
			apps30: apps30,
			apps7:  apps7,
		})
	}
	return out
}

func isPitcher(entry statsapi.RosterEntry) bool {
	if entry.PositionType == "Pitcher" {
		return true
	}
	switch entry.PositionAbbr {
	case "P", "SP", "RP":
		return true
	}
	return false
}

// isReliever accepts a pitcher with late-inning credit, or a pure-relief
// usage pattern, or frequent short outings.
func isReliever(stats statsapi.PitchingStats) bool {
	if stats.Saves+stats.Holds > 0 {
		return true
	}
	if stats.GamesPlayed >= relieverMinAppearances && stats.GamesStarted == 0 {
		return true
	}
	if stats.GamesPlayed >= relieverMinAppearances &&
		stats.InningsPitched/float64(stats.GamesPlayed) < 2.0 {
		return true
	}
	return false
}

// recentWorkload counts appearances over the last 30 and 7 days. A game-log
// failure keeps the reliever in the pool with zero workload counts.
func (a *BullpenAggregator) recentWorkload(ctx context.Context, pitcherID, season int) (apps30, apps7 int, active bool) {
	log, err := a.gateway.PlayerGameLog(ctx, pitcherID, season)
	if err != nil {
		return 0, 0, true
	}
	now := a.now()
	cut30 := now.AddDate(0, 0, -30)
	cut7 := now.AddDate(0, 0, -7)
	for _, entry := range log {
		day, perr := timeutil.ParseDate(entry.Date)
		if perr != nil {
			continue
		}
		if day.After(cut30) {
			apps30++
		}
		if day.After(cut7) {
			apps7++
			active = true
		}
	}
	return apps30, apps7, active
}

// pool sums the reliever counting stats and derives the pooled rate metrics,
// then picks the closer and setup men and counts fatigued arms.
func (a *BullpenAggregator) pool(relievers []relieverStats) domain.BullpenLine {
	var ip float64
	var er, hits, walks, hbp, strikeouts, homeRuns, faced int
	for _, r := range relievers {
		ip += r.stats.InningsPitched
		er += r.stats.EarnedRuns
		hits += r.stats.Hits
		walks += r.stats.Walks
		hbp += r.stats.HitByPitch
		strikeouts += r.stats.StrikeOuts
		homeRuns += r.stats.HomeRuns
		faced += r.stats.BattersFaced
	}

	line := domain.BullpenLine{
		RelieverCount: len(relievers),
		ERA:           sabermetrics.ERA(er, ip),
		FIP:           sabermetrics.FIP(homeRuns, walks, hbp, strikeouts, ip),
		WHIP:          sabermetrics.WHIP(walks, hits, ip),
		KBBPct:        sabermetrics.KBBPct(strikeouts, walks, faced),
		Source:        domain.SourceUpstream,
	}

	ballsInPlay := faced - strikeouts - walks - hbp
	flyBalls := sabermetrics.BullpenAssumedFBRate * float64(ballsInPlay)
	line.XFIP = sabermetrics.XFIP(walks, hbp, strikeouts, flyBalls,
		sabermetrics.BullpenHRPerFB, ip)

	line.Closer = pickCloser(relievers)
	line.SetupMen = pickSetupMen(relievers)
	for _, r := range relievers {
		if r.apps30 >= fatigueWindow30 && r.apps7 >= fatigueWindow7 {
			line.FatiguedCount++
		}
	}
	return line
}

func pickCloser(relievers []relieverStats) *domain.RelieverRole {
	var best *relieverStats
	for i := range relievers {
		r := &relievers[i]
		if r.stats.Saves < closerMinSaves || r.apps30 < fatigueWindow30 {
			continue
		}
		if best == nil ||
			r.stats.Saves > best.stats.Saves ||
			(r.stats.Saves == best.stats.Saves && r.stats.InningsPitched > best.stats.InningsPitched) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	return &domain.RelieverRole{Name: best.name, FIP: round2(best.fip)}
}

func pickSetupMen(relievers []relieverStats) []domain.RelieverRole {
	var candidates []relieverStats
	for _, r := range relievers {
		if r.stats.Holds >= setupMinHolds && r.stats.Saves < closerMinSaves {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].stats.Holds > candidates[j].stats.Holds
	})
	if len(candidates) > maxSetupMen {
		candidates = candidates[:maxSetupMen]
	}
	var out []domain.RelieverRole
	for _, c := range candidates {
		out = append(out, domain.RelieverRole{Name: c.name, FIP: round2(c.fip)})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
