// Package report renders finished briefings for human consumption and
// delivers them to a chat webhook. Rendering is layout only; every number
// arrives already computed and defaulted.
package report

import (
	"fmt"
	"strings"

	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/timeutil"
)

const lineWidth = 72

// Text renders the day's briefings as a plain-text report. Dates and
// first-pitch times are shown in Japan local time, which is where the
// report's readers are.
func Text(date string, briefings []domain.GameBriefing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MLB Daily Briefing: %s (%d games)\n", date, len(briefings))
	b.WriteString(strings.Repeat("=", lineWidth))
	b.WriteString("\n")

	if len(briefings) == 0 {
		b.WriteString("No games scheduled.\n")
		return b.String()
	}

	for _, briefing := range briefings {
		writeGame(&b, briefing)
	}
	return b.String()
}

func writeGame(b *strings.Builder, briefing domain.GameBriefing) {
	g := briefing.Game
	fmt.Fprintf(b, "\n%s @ %s\n", g.AwayTeamName, g.HomeTeamName)
	fmt.Fprintf(b, "First pitch %s %s JST\n",
		timeutil.FormatJSTDate(g.Start), timeutil.FormatJSTClock(g.Start))
	b.WriteString(strings.Repeat("-", lineWidth))
	b.WriteString("\n")

	writeSide(b, "Away", briefing.Away)
	writeSide(b, "Home", briefing.Home)
}

func writeSide(b *strings.Builder, label string, bundle domain.TeamBundle) {
	fmt.Fprintf(b, "[%s] %s\n", label, bundle.TeamName)

	p := bundle.Pitcher
	fmt.Fprintf(b, "  SP  %s  %d-%d  ERA %.2f  FIP %.2f  xFIP %.2f%s  WHIP %.2f\n",
		p.Name, p.Wins, p.Losses, p.ERA, p.FIP, p.XFIP, sourceMark(p.XFIPSource), p.WHIP)
	fmt.Fprintf(b, "      K-BB%% %.1f  GB%% %.1f  SwStr%% %.1f  QS%% %.0f  BABIP %.3f\n",
		p.KBBPct, p.GBPct, p.SwStrPct, p.QSRate, p.BABIP)
	fmt.Fprintf(b, "      vs L %.3f/%.3f  vs R %.3f/%.3f%s\n",
		p.Splits.VsLeft.AVG, p.Splits.VsLeft.OPS,
		p.Splits.VsRight.AVG, p.Splits.VsRight.OPS, sourceMark(p.Splits.Source))

	bp := bundle.Bullpen
	fmt.Fprintf(b, "  BP  %d arms  ERA %.2f  FIP %.2f  xFIP %.2f  WHIP %.2f  K-BB%% %.1f\n",
		bp.RelieverCount, bp.ERA, bp.FIP, bp.XFIP, bp.WHIP, bp.KBBPct)
	fmt.Fprintf(b, "      %s\n", bullpenRoles(bp))

	bt := bundle.Batting
	fmt.Fprintf(b, "  BAT AVG %.3f  OPS %.3f  wOBA %.3f  xwOBA %.3f%s  R %d  HR %d\n",
		bt.AVG, bt.OPS, bt.WOBA, bt.XWOBA, sourceMark(bt.XWOBASource), bt.Runs, bt.HomeRuns)
	fmt.Fprintf(b, "      Barrel%% %.1f  HardHit%% %.1f%s  L5 %s  L10 %s\n",
		bt.BarrelPct, bt.HardHitPct, sourceMark(bt.QualitySource),
		recentOPS(bt.RecentOPS5), recentOPS(bt.RecentOPS10))
}

func bullpenRoles(bp domain.BullpenLine) string {
	parts := make([]string, 0, 3)
	if bp.Closer != nil {
		parts = append(parts, fmt.Sprintf("CL %s (FIP %.2f)", bp.Closer.Name, bp.Closer.FIP))
	} else {
		parts = append(parts, "CL committee")
	}
	for _, s := range bp.SetupMen {
		parts = append(parts, fmt.Sprintf("SU %s (FIP %.2f)", s.Name, s.FIP))
	}
	if bp.FatiguedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d fatigued", bp.FatiguedCount))
	}
	return strings.Join(parts, "  ")
}

func recentOPS(r domain.RecentOPS) string {
	if r.Partial {
		return fmt.Sprintf("%.3f (%dG*)", r.OPS, r.Games)
	}
	return fmt.Sprintf("%.3f (%dG)", r.OPS, r.Games)
}

// sourceMark flags values that did not come straight from the upstream, so a
// defaulted number is never mistaken for a measured one.
func sourceMark(source string) string {
	switch source {
	case domain.SourceComputed:
		return "~"
	case domain.SourceDefault:
		return "*"
	default:
		return ""
	}
}
