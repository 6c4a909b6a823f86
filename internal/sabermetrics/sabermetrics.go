// Package sabermetrics holds the pure derived-metric arithmetic. Functions
// here take normalized numeric inputs and never touch I/O; string parsing
// belongs to the statsapi gateway.
package sabermetrics

import "math"

const (
	// FIP additive constant, calibrated so league FIP tracks league ERA.
	fipConstant = 3.10

	// LeagueHRPerFB is the league-average home-run-per-fly-ball rate used by
	// xFIP for individual pitchers.
	LeagueHRPerFB = 0.11

	// BullpenHRPerFB and BullpenAssumedFBRate back the pooled bullpen xFIP
	// when per-pitcher batted-ball data is unavailable.
	BullpenHRPerFB       = 0.117
	BullpenAssumedFBRate = 0.35
)

// FIP computes fielding-independent pitching. IP of zero yields zero.
func FIP(homeRuns, walks, hitByPitch, strikeouts int, inningsPitched float64) float64 {
	if inningsPitched <= 0 {
		return 0
	}
	raw := (13*float64(homeRuns) + 3*float64(walks+hitByPitch) - 2*float64(strikeouts)) / inningsPitched
	return raw + fipConstant
}

// XFIP is FIP with actual home runs replaced by an expected count derived
// from fly balls and a league HR/FB rate.
func XFIP(walks, hitByPitch, strikeouts int, flyBalls, hrPerFB, inningsPitched float64) float64 {
	if inningsPitched <= 0 {
		return 0
	}
	expectedHR := flyBalls * hrPerFB
	raw := (13*expectedHR + 3*float64(walks+hitByPitch) - 2*float64(strikeouts)) / inningsPitched
	return raw + fipConstant
}

// ERA computes earned runs per nine innings.
func ERA(earnedRuns int, inningsPitched float64) float64 {
	if inningsPitched <= 0 {
		return 0
	}
	return 9 * float64(earnedRuns) / inningsPitched
}

// WHIP computes walks plus hits per inning pitched.
func WHIP(walks, hits int, inningsPitched float64) float64 {
	if inningsPitched <= 0 {
		return 0
	}
	return float64(walks+hits) / inningsPitched
}

// KBBPct is strikeout rate minus walk rate per batter faced, in percent,
// rounded to one decimal.
func KBBPct(strikeouts, walks, battersFaced int) float64 {
	if battersFaced <= 0 {
		return 0
	}
	pct := 100 * float64(strikeouts-walks) / float64(battersFaced)
	return math.Round(pct*10) / 10
}

// WOBAWeights are FanGraphs-style linear weights for one season.
type WOBAWeights struct {
	BB     float64
	HBP    float64
	Single float64
	Double float64
	Triple float64
	HR     float64
}

// wobaWeightsBySeason indexes published linear weights. Unknown seasons fall
// back to the most recent entry.
var wobaWeightsBySeason = map[int]WOBAWeights{
	2025: {BB: 0.694, HBP: 0.725, Single: 0.888, Double: 1.263, Triple: 1.600, HR: 2.064},
}

const latestWeightsSeason = 2025

// WeightsForSeason returns the linear weights for a season.
func WeightsForSeason(season int) WOBAWeights {
	if w, ok := wobaWeightsBySeason[season]; ok {
		return w
	}
	return wobaWeightsBySeason[latestWeightsSeason]
}

// WOBACounts holds the event counts weighted on-base average is built from.
type WOBACounts struct {
	AtBats           int
	Hits             int
	Doubles          int
	Triples          int
	HomeRuns         int
	Walks            int
	IntentionalWalks int
	HitByPitch       int
	SacFlies         int
}

// WOBA computes weighted on-base average with the season's linear weights.
// Singles are derived as H - 2B - 3B - HR.
func WOBA(season int, c WOBACounts) float64 {
	w := WeightsForSeason(season)
	singles := c.Hits - c.Doubles - c.Triples - c.HomeRuns
	unintentionalWalks := c.Walks - c.IntentionalWalks

	numerator := w.BB*float64(unintentionalWalks) +
		w.HBP*float64(c.HitByPitch) +
		w.Single*float64(singles) +
		w.Double*float64(c.Doubles) +
		w.Triple*float64(c.Triples) +
		w.HR*float64(c.HomeRuns)
	denominator := float64(c.AtBats + unintentionalWalks + c.SacFlies + c.HitByPitch)
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// XWOBAFromOPS is the linear xwOBA estimate used when the sabermetrics
// endpoint does not supply the real value. It is a rough correlate.
func XWOBAFromOPS(ops float64) float64 {
	return 0.220 + 0.13*ops
}

// QSRateHeuristic maps a starter's workload and ERA to an estimated quality
// start rate, in percent. It is the fallback when a true game-log count is
// unavailable.
func QSRateHeuristic(ipPerStart, era float64) float64 {
	if ipPerStart >= 6 {
		switch {
		case era <= 3.00:
			return 75
		case era <= 3.50:
			return 60
		case era <= 4.00:
			return 45
		case era <= 4.50:
			return 30
		}
	}
	rate := ipPerStart / 20
	if rate < 0.15 {
		rate = 0.15
	}
	if rate > 0.30 {
		rate = 0.30
	}
	return 100 * rate
}

// BattingCounts are the accumulated box-score counts behind a rolling OPS.
type BattingCounts struct {
	AtBats     int
	Hits       int
	Walks      int
	HitByPitch int
	SacFlies   int
	Doubles    int
	Triples    int
	HomeRuns   int
}

// Add accumulates another game's counts.
func (b *BattingCounts) Add(other BattingCounts) {
	b.AtBats += other.AtBats
	b.Hits += other.Hits
	b.Walks += other.Walks
	b.HitByPitch += other.HitByPitch
	b.SacFlies += other.SacFlies
	b.Doubles += other.Doubles
	b.Triples += other.Triples
	b.HomeRuns += other.HomeRuns
}

// OPSFromCounts computes OBP+SLG from accumulated counts. ok is false when
// the inputs cannot support the computation (no plate appearances or at-bats).
func OPSFromCounts(c BattingCounts) (float64, bool) {
	plateAppearances := c.AtBats + c.Walks + c.HitByPitch + c.SacFlies
	if plateAppearances <= 0 || c.AtBats <= 0 {
		return 0, false
	}
	singles := c.Hits - c.Doubles - c.Triples - c.HomeRuns
	totalBases := singles + 2*c.Doubles + 3*c.Triples + 4*c.HomeRuns

	obp := float64(c.Hits+c.Walks+c.HitByPitch) / float64(plateAppearances)
	slg := float64(totalBases) / float64(c.AtBats)
	return obp + slg, true
}
