package domain

import "time"

// GameStatus mirrors the shared contract for schedule lifecycle states.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusFinal     GameStatus = "final"
	StatusOther     GameStatus = "other"
)

// Source tags record where a derived value came from, so a defaulted zero can
// be told apart from a true zero downstream.
const (
	SourceUpstream = "upstream"
	SourceComputed = "computed"
	SourceDefault  = "default"
)

// ScheduleGame is one scheduled game as materialized from the schedule
// endpoint. Start is always UTC; display conversion is the formatter's job.
type ScheduleGame struct {
	GamePK           int64      `json:"gamePk"`
	Start            time.Time  `json:"start"`
	Status           GameStatus `json:"status"`
	AwayTeamID       int        `json:"awayTeamId"`
	AwayTeamName     string     `json:"awayTeamName"`
	HomeTeamID       int        `json:"homeTeamId"`
	HomeTeamName     string     `json:"homeTeamName"`
	AwayProbableID   int        `json:"awayProbableId,omitempty"`
	AwayProbableName string     `json:"awayProbableName,omitempty"`
	HomeProbableID   int        `json:"homeProbableId,omitempty"`
	HomeProbableName string     `json:"homeProbableName,omitempty"`
}

// Split is a situational batting line (vs-L or vs-R).
type Split struct {
	AVG float64 `json:"avg"`
	OPS float64 `json:"ops"`
}

// SplitPair carries both situational splits plus where they came from.
type SplitPair struct {
	VsLeft  Split  `json:"vsLeft"`
	VsRight Split  `json:"vsRight"`
	Source  string `json:"source"`
}

// DefaultSplitPair is the documented fallback for the splits endpoint's
// intermittent 500s.
func DefaultSplitPair() SplitPair {
	return SplitPair{
		VsLeft:  Split{AVG: 0.250, OPS: 0.700},
		VsRight: Split{AVG: 0.250, OPS: 0.700},
		Source:  SourceDefault,
	}
}

// PitcherLine is the enhanced stat bundle for one probable starter.
// Every field is either a real value or its documented default; consumers can
// check the source tags to tell the two apart.
type PitcherLine struct {
	Name       string    `json:"name"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	ERA        float64   `json:"era"`
	FIP        float64   `json:"fip"`
	XFIP       float64   `json:"xfip"`
	XFIPSource string    `json:"xfipSource"`
	WHIP       float64   `json:"whip"`
	KBBPct     float64   `json:"kbbPct"`
	GBPct      float64   `json:"gbPct"`
	FBPct      float64   `json:"fbPct"`
	QSRate     float64   `json:"qsRate"`
	SwStrPct   float64   `json:"swstrPct"`
	BABIP      float64   `json:"babip"`
	Splits     SplitPair `json:"splits"`
	Source     string    `json:"source"`
}

// DefaultPitcherLine is the well-formed bundle for a pitcher with no season
// record. Name comes from player info when reachable.
func DefaultPitcherLine(name string) PitcherLine {
	if name == "" {
		name = "TBD"
	}
	return PitcherLine{
		Name:       name,
		XFIPSource: SourceDefault,
		Splits:     DefaultSplitPair(),
		Source:     SourceDefault,
	}
}

// RelieverRole names a bullpen role holder.
type RelieverRole struct {
	Name string  `json:"name"`
	FIP  float64 `json:"fip"`
}

// BullpenLine is the pooled view of a team's active relief corps. Pooled
// rate stats are innings-weighted across the active set.
type BullpenLine struct {
	RelieverCount int            `json:"relieverCount"`
	ERA           float64        `json:"era"`
	FIP           float64        `json:"fip"`
	XFIP          float64        `json:"xfip"`
	WHIP          float64        `json:"whip"`
	KBBPct        float64        `json:"kbbPct"`
	Closer        *RelieverRole  `json:"closer,omitempty"`
	SetupMen      []RelieverRole `json:"setupMen,omitempty"`
	FatiguedCount int            `json:"fatiguedCount"`
	Source        string         `json:"source"`
}

// RecentOPS is a rolling OPS over at most N recent Final games inside a
// 30-day window. Partial marks aggregates built from fewer than N games.
type RecentOPS struct {
	OPS     float64 `json:"ops"`
	Games   int     `json:"games"`
	Partial bool    `json:"partial"`
	Source  string  `json:"source"`
}

// DefaultRecentOPS is the sentinel for a team with no usable recent games.
func DefaultRecentOPS() RecentOPS {
	return RecentOPS{OPS: 0.700, Partial: true, Source: SourceDefault}
}

// TeamBattingLine is the season-level batting profile for one team.
type TeamBattingLine struct {
	AVG           float64   `json:"avg"`
	OPS           float64   `json:"ops"`
	Runs          int       `json:"runs"`
	HomeRuns      int       `json:"homeRuns"`
	WOBA          float64   `json:"woba"`
	XWOBA         float64   `json:"xwoba"`
	XWOBASource   string    `json:"xwobaSource"`
	BarrelPct     float64   `json:"barrelPct"`
	HardHitPct    float64   `json:"hardHitPct"`
	QualitySample int       `json:"qualitySample"`
	QualitySource string    `json:"qualitySource"`
	VsLeft        Split     `json:"vsLeftPitching"`
	VsRight       Split     `json:"vsRightPitching"`
	RecentOPS5    RecentOPS `json:"recentOps5"`
	RecentOPS10   RecentOPS `json:"recentOps10"`
	Source        string    `json:"source"`
}

// TeamBundle groups the three sub-bundles for one side of a game.
type TeamBundle struct {
	TeamID   int             `json:"teamId"`
	TeamName string          `json:"teamName"`
	Pitcher  PitcherLine     `json:"pitcher"`
	Bullpen  BullpenLine     `json:"bullpen"`
	Batting  TeamBattingLine `json:"batting"`
}

// GameBriefing is the per-game side-by-side record emitted to consumers.
type GameBriefing struct {
	Game ScheduleGame `json:"game"`
	Away TeamBundle   `json:"away"`
	Home TeamBundle   `json:"home"`
}
