package statsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
)

// Endpoint classes, used as metric labels and in logs.
const (
	EndpointSchedule      = "schedule"
	EndpointPlayerInfo    = "player_info"
	EndpointPlayerStats   = "player_stats"
	EndpointPlayerSplits  = "player_splits"
	EndpointPlayerGameLog = "player_game_log"
	EndpointTeamRoster    = "team_roster"
	EndpointTeamStats     = "team_stats"
	EndpointTeamSplits    = "team_splits"
	EndpointTeamSchedule  = "team_schedule"
	EndpointBoxscore      = "boxscore"
)

// PlayerInfo is the slice of the people endpoint the pipeline needs.
type PlayerInfo struct {
	ID        int    `json:"id"`
	FullName  string `json:"fullName"`
	PitchHand string `json:"pitchHand"`
}

// PitchingStats are normalized season pitching counts for one pitcher.
type PitchingStats struct {
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	ERA              float64 `json:"era"`
	WHIP             float64 `json:"whip"`
	InningsPitched   float64 `json:"inningsPitched"`
	HomeRuns         int     `json:"homeRuns"`
	Walks            int     `json:"walks"`
	IntentionalWalks int     `json:"intentionalWalks"`
	HitByPitch       int     `json:"hitByPitch"`
	StrikeOuts       int     `json:"strikeOuts"`
	BattersFaced     int     `json:"battersFaced"`
	EarnedRuns       int     `json:"earnedRuns"`
	Hits             int     `json:"hits"`
	GamesPlayed      int     `json:"gamesPlayed"`
	GamesStarted     int     `json:"gamesStarted"`
	Saves            int     `json:"saves"`
	Holds            int     `json:"holds"`
}

// Sabermetrics carries the upstream-computed advanced metrics when present.
type Sabermetrics struct {
	FIP   float64 `json:"fip"`
	XFIP  float64 `json:"xfip"`
	WOBA  float64 `json:"woba"`
	XWOBA float64 `json:"xwoba"`
}

// AdvancedPitching are the seasonAdvanced batted-ball and contact rates,
// normalized to the 0-100 percent scale.
type AdvancedPitching struct {
	GroundBallPct float64 `json:"groundBallPct"`
	FlyBallPct    float64 `json:"flyBallPct"`
	LineDrivePct  float64 `json:"lineDrivePct"`
	SwStrPct      float64 `json:"swstrPct"`
	BABIP         float64 `json:"babip"`
}

// HittingStats are normalized season batting numbers for one team.
type HittingStats struct {
	AVG              float64 `json:"avg"`
	OPS              float64 `json:"ops"`
	Runs             int     `json:"runs"`
	HomeRuns         int     `json:"homeRuns"`
	AtBats           int     `json:"atBats"`
	Hits             int     `json:"hits"`
	Doubles          int     `json:"doubles"`
	Triples          int     `json:"triples"`
	Walks            int     `json:"walks"`
	IntentionalWalks int     `json:"intentionalWalks"`
	HitByPitch       int     `json:"hitByPitch"`
	SacFlies         int     `json:"sacFlies"`
}

// RosterEntry is one active-roster slot.
type RosterEntry struct {
	PersonID     int    `json:"personId"`
	FullName     string `json:"fullName"`
	PositionAbbr string `json:"positionAbbr"`
	PositionType string `json:"positionType"`
}

// GameLogEntry is one game-log appearance (pitching group).
type GameLogEntry struct {
	Date           string  `json:"date"`
	InningsPitched float64 `json:"inningsPitched"`
	EarnedRuns     int     `json:"earnedRuns"`
	GamesStarted   int     `json:"gamesStarted"`
}

// BoxscoreBatting is one side's accumulated batting counts for a game.
type BoxscoreBatting struct {
	TeamID     int `json:"teamId"`
	AtBats     int `json:"atBats"`
	Hits       int `json:"hits"`
	Doubles    int `json:"doubles"`
	Triples    int `json:"triples"`
	HomeRuns   int `json:"homeRuns"`
	Walks      int `json:"walks"`
	HitByPitch int `json:"hitByPitch"`
	SacFlies   int `json:"sacFlies"`
}

// Gateway layers the per-namespace cache over the retrying client and parses
// every endpoint's payload into normalized shapes.
type Gateway struct {
	client *Client
	cache  cache.Cache
	logger *slog.Logger
}

// NewGateway constructs a gateway over the given client and cache.
func NewGateway(client *Client, store cache.Cache, logger *slog.Logger) *Gateway {
	return &Gateway{client: client, cache: store, logger: logger}
}

// Schedule returns the games scheduled for date (YYYY-MM-DD), cached for an
// hour. Ordering matches the upstream response; callers sort.
func (g *Gateway) Schedule(ctx context.Context, date string) ([]domain.ScheduleGame, error) {
	var games []domain.ScheduleGame
	if g.cache.Get(ctx, cache.NamespaceSchedule, date, &games) {
		return games, nil
	}

	query := url.Values{}
	query.Set("sportId", "1")
	query.Set("date", date)
	query.Set("hydrate", "probablePitcher,team,linescore")

	var resp scheduleResponse
	if err := g.client.get(ctx, EndpointSchedule, "/schedule", query, &resp); err != nil {
		return nil, err
	}

	games = make([]domain.ScheduleGame, 0)
	for _, d := range resp.Dates {
		for _, raw := range d.Games {
			games = append(games, mapScheduleGame(raw))
		}
	}
	// An empty slate is never cached; off-days and not-yet-published dates
	// should be re-checked on the next run.
	if len(games) > 0 {
		g.cache.Put(ctx, cache.NamespaceSchedule, date, games)
	}
	return games, nil
}

// TeamSchedule returns a team's games over a date range. Uncached: callers
// cache the derived rolling aggregates instead.
func (g *Gateway) TeamSchedule(ctx context.Context, teamID int, startDate, endDate string) ([]domain.ScheduleGame, error) {
	query := url.Values{}
	query.Set("sportId", "1")
	query.Set("teamId", strconv.Itoa(teamID))
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var resp scheduleResponse
	if err := g.client.get(ctx, EndpointTeamSchedule, "/schedule", query, &resp); err != nil {
		return nil, err
	}
	games := make([]domain.ScheduleGame, 0)
	for _, d := range resp.Dates {
		for _, raw := range d.Games {
			games = append(games, mapScheduleGame(raw))
		}
	}
	return games, nil
}

// PlayerInfo fetches name and throwing hand for one player.
func (g *Gateway) PlayerInfo(ctx context.Context, playerID int) (PlayerInfo, error) {
	var resp peopleResponse
	path := fmt.Sprintf("/people/%d", playerID)
	if err := g.client.get(ctx, EndpointPlayerInfo, path, url.Values{}, &resp); err != nil {
		return PlayerInfo{}, err
	}
	if len(resp.People) == 0 {
		return PlayerInfo{}, fmt.Errorf("statsapi: no person record for id %d", playerID)
	}
	p := resp.People[0]
	return PlayerInfo{ID: p.ID, FullName: p.FullName, PitchHand: p.PitchHand.Code}, nil
}

// PlayerSeasonPitching returns normalized season pitching stats. ok is false
// when the player has no record for the season.
func (g *Gateway) PlayerSeasonPitching(ctx context.Context, playerID, season int) (PitchingStats, bool, error) {
	stat, ok, err := g.playerStatMap(ctx, playerID, season, "season", "pitching")
	if err != nil || !ok {
		return PitchingStats{}, false, err
	}
	return PitchingStats{
		Wins:             ParseStatInt(stat["wins"]),
		Losses:           ParseStatInt(stat["losses"]),
		ERA:              ParseStat(stat["era"]),
		WHIP:             ParseStat(stat["whip"]),
		InningsPitched:   ParseInningsValue(stat["inningsPitched"]),
		HomeRuns:         ParseStatInt(stat["homeRuns"]),
		Walks:            ParseStatInt(stat["baseOnBalls"]),
		IntentionalWalks: ParseStatInt(stat["intentionalWalks"]),
		HitByPitch:       ParseStatInt(stat["hitByPitch"]),
		StrikeOuts:       ParseStatInt(stat["strikeOuts"]),
		BattersFaced:     ParseStatInt(stat["battersFaced"]),
		EarnedRuns:       ParseStatInt(stat["earnedRuns"]),
		Hits:             ParseStatInt(stat["hits"]),
		GamesPlayed:      ParseStatInt(stat["gamesPlayed"]),
		GamesStarted:     ParseStatInt(stat["gamesStarted"]),
		Saves:            ParseStatInt(stat["saves"]),
		Holds:            ParseStatInt(stat["holds"]),
	}, true, nil
}

// PlayerSabermetrics returns the upstream sabermetrics group when available.
func (g *Gateway) PlayerSabermetrics(ctx context.Context, playerID, season int) (Sabermetrics, bool, error) {
	stat, ok, err := g.playerStatMap(ctx, playerID, season, "sabermetrics", "pitching")
	if err != nil || !ok {
		return Sabermetrics{}, false, err
	}
	return Sabermetrics{
		FIP:   ParseStat(stat["fip"]),
		XFIP:  ParseStat(stat["xfip"]),
		WOBA:  ParseStat(stat["woba"]),
		XWOBA: ParseStat(stat["xwoba"]),
	}, true, nil
}

// TeamSabermetricsHitting returns the team-level sabermetrics hitting group.
func (g *Gateway) TeamSabermetricsHitting(ctx context.Context, teamID, season int) (Sabermetrics, bool, error) {
	stat, ok, err := g.teamStatMap(ctx, teamID, season, "sabermetrics", "hitting")
	if err != nil || !ok {
		return Sabermetrics{}, false, err
	}
	return Sabermetrics{
		WOBA:  ParseStat(stat["woba"]),
		XWOBA: ParseStat(stat["xwoba"]),
	}, true, nil
}

// PlayerAdvancedPitching returns the seasonAdvanced batted-ball profile. ok
// is false when the group is missing or the player has no balls in play.
func (g *Gateway) PlayerAdvancedPitching(ctx context.Context, playerID, season int) (AdvancedPitching, bool, error) {
	stat, ok, err := g.playerStatMap(ctx, playerID, season, "seasonAdvanced", "pitching")
	if err != nil || !ok {
		return AdvancedPitching{}, false, err
	}
	return AdvancedPitching{
		GroundBallPct: ParsePercent(stat["groundBallsPercentage"]),
		FlyBallPct:    ParsePercent(stat["flyBallsPercentage"]),
		LineDrivePct:  ParsePercent(stat["lineDrivesPercentage"]),
		SwStrPct:      ParsePercent(stat["swingAndMissPercentage"]),
		BABIP:         ParseStat(stat["babip"]),
	}, true, nil
}

// PlayerSplits returns vs-L/vs-R batting-against splits for a pitcher. The
// endpoint 500s intermittently; after the client's retries are exhausted the
// documented default pair {.250, .700} is returned and cached, so one flaky
// upstream day does not hammer it again per run.
func (g *Gateway) PlayerSplits(ctx context.Context, playerID, season int) domain.SplitPair {
	key := fmt.Sprintf("%d_%d", playerID, season)
	var pair domain.SplitPair
	if g.cache.Get(ctx, cache.NamespacePitcherSplits, key, &pair) {
		return pair
	}

	query := statsQuery("statSplits", "pitching", season)
	query.Set("sitCodes", "vl,vr")

	var resp statsResponse
	path := fmt.Sprintf("/people/%d/stats", playerID)
	if err := g.client.get(ctx, EndpointPlayerSplits, path, query, &resp); err != nil {
		logging.Warn(g.logger, "player splits unavailable, using defaults",
			logging.FieldPitcherID, playerID, "error", err)
		return domain.DefaultSplitPair()
	}

	pair = mapSplitPair(resp)
	g.cache.Put(ctx, cache.NamespacePitcherSplits, key, pair)
	return pair
}

// PlayerGameLog returns the season's pitching game log, most recent last.
func (g *Gateway) PlayerGameLog(ctx context.Context, playerID, season int) ([]GameLogEntry, error) {
	query := statsQuery("gameLog", "pitching", season)
	var resp statsResponse
	path := fmt.Sprintf("/people/%d/stats", playerID)
	if err := g.client.get(ctx, EndpointPlayerGameLog, path, query, &resp); err != nil {
		return nil, err
	}
	entries := make([]GameLogEntry, 0)
	for _, s := range resp.Stats {
		for _, split := range s.Splits {
			if split.Date == "" {
				continue
			}
			entries = append(entries, GameLogEntry{
				Date:           split.Date,
				InningsPitched: ParseInningsValue(split.Stat["inningsPitched"]),
				EarnedRuns:     ParseStatInt(split.Stat["earnedRuns"]),
				GamesStarted:   ParseStatInt(split.Stat["gamesStarted"]),
			})
		}
	}
	return entries, nil
}

// TeamRoster returns the active roster for a team.
func (g *Gateway) TeamRoster(ctx context.Context, teamID int) ([]RosterEntry, error) {
	query := url.Values{}
	query.Set("rosterType", "active")

	var resp rosterResponse
	path := fmt.Sprintf("/teams/%d/roster", teamID)
	if err := g.client.get(ctx, EndpointTeamRoster, path, query, &resp); err != nil {
		return nil, err
	}
	entries := make([]RosterEntry, 0, len(resp.Roster))
	for _, r := range resp.Roster {
		entries = append(entries, RosterEntry{
			PersonID:     r.Person.ID,
			FullName:     r.Person.FullName,
			PositionAbbr: r.Position.Abbreviation,
			PositionType: r.Position.Type,
		})
	}
	return entries, nil
}

// TeamSeasonHitting returns normalized season batting for a team, cached for
// six hours. ok is false when the team has no record for the season.
func (g *Gateway) TeamSeasonHitting(ctx context.Context, teamID, season int) (HittingStats, bool, error) {
	key := fmt.Sprintf("%d_%d", teamID, season)
	var stats HittingStats
	if g.cache.Get(ctx, cache.NamespaceTeamSeasonBatting, key, &stats) {
		return stats, true, nil
	}

	stat, ok, err := g.teamStatMap(ctx, teamID, season, "season", "hitting")
	if err != nil || !ok {
		return HittingStats{}, false, err
	}
	stats = HittingStats{
		AVG:              ParseStat(stat["avg"]),
		OPS:              ParseStat(stat["ops"]),
		Runs:             ParseStatInt(stat["runs"]),
		HomeRuns:         ParseStatInt(stat["homeRuns"]),
		AtBats:           ParseStatInt(stat["atBats"]),
		Hits:             ParseStatInt(stat["hits"]),
		Doubles:          ParseStatInt(stat["doubles"]),
		Triples:          ParseStatInt(stat["triples"]),
		Walks:            ParseStatInt(stat["baseOnBalls"]),
		IntentionalWalks: ParseStatInt(stat["intentionalWalks"]),
		HitByPitch:       ParseStatInt(stat["hitByPitch"]),
		SacFlies:         ParseStatInt(stat["sacFlies"]),
	}
	g.cache.Put(ctx, cache.NamespaceTeamSeasonBatting, key, stats)
	return stats, true, nil
}

// TeamSplitsVsPitchers returns a team's batting splits against left- and
// right-handed pitching, with the same defaulting rule as player splits.
func (g *Gateway) TeamSplitsVsPitchers(ctx context.Context, teamID, season int) domain.SplitPair {
	query := statsQuery("statSplits", "hitting", season)
	query.Set("sitCodes", "vl,vr")

	var resp statsResponse
	path := fmt.Sprintf("/teams/%d/stats", teamID)
	if err := g.client.get(ctx, EndpointTeamSplits, path, query, &resp); err != nil {
		logging.Warn(g.logger, "team splits unavailable, using defaults",
			logging.FieldTeamID, teamID, "error", err)
		return domain.DefaultSplitPair()
	}
	return mapSplitPair(resp)
}

// Boxscore returns both sides' batting counts for a game, keyed by team id.
func (g *Gateway) Boxscore(ctx context.Context, gamePK int64) (map[int]BoxscoreBatting, error) {
	var resp boxscoreResponse
	path := fmt.Sprintf("/game/%d/boxscore", gamePK)
	if err := g.client.get(ctx, EndpointBoxscore, path, url.Values{}, &resp); err != nil {
		return nil, err
	}
	result := make(map[int]BoxscoreBatting, 2)
	for _, side := range []rawBoxscoreSide{resp.Teams.Away, resp.Teams.Home} {
		result[side.Team.ID] = mapBoxscoreBatting(side)
	}
	return result, nil
}

func (g *Gateway) playerStatMap(ctx context.Context, playerID, season int, statsType, group string) (map[string]any, bool, error) {
	var resp statsResponse
	path := fmt.Sprintf("/people/%d/stats", playerID)
	if err := g.client.get(ctx, EndpointPlayerStats, path, statsQuery(statsType, group, season), &resp); err != nil {
		return nil, false, err
	}
	return firstStatMap(resp)
}

func (g *Gateway) teamStatMap(ctx context.Context, teamID, season int, statsType, group string) (map[string]any, bool, error) {
	var resp statsResponse
	path := fmt.Sprintf("/teams/%d/stats", teamID)
	if err := g.client.get(ctx, EndpointTeamStats, path, statsQuery(statsType, group, season), &resp); err != nil {
		return nil, false, err
	}
	return firstStatMap(resp)
}

func statsQuery(statsType, group string, season int) url.Values {
	query := url.Values{}
	query.Set("stats", statsType)
	query.Set("group", group)
	query.Set("season", strconv.Itoa(season))
	query.Set("gameType", "R")
	return query
}

func firstStatMap(resp statsResponse) (map[string]any, bool, error) {
	for _, s := range resp.Stats {
		for _, split := range s.Splits {
			if len(split.Stat) > 0 {
				return split.Stat, true, nil
			}
		}
	}
	return nil, false, nil
}

func mapScheduleGame(raw rawScheduleGame) domain.ScheduleGame {
	return domain.ScheduleGame{
		GamePK:           raw.GamePk,
		Start:            raw.GameDate.UTC(),
		Status:           mapStatus(raw.Status.AbstractGameState),
		AwayTeamID:       raw.Teams.Away.Team.ID,
		AwayTeamName:     raw.Teams.Away.Team.Name,
		HomeTeamID:       raw.Teams.Home.Team.ID,
		HomeTeamName:     raw.Teams.Home.Team.Name,
		AwayProbableID:   raw.Teams.Away.ProbablePitcher.ID,
		AwayProbableName: raw.Teams.Away.ProbablePitcher.FullName,
		HomeProbableID:   raw.Teams.Home.ProbablePitcher.ID,
		HomeProbableName: raw.Teams.Home.ProbablePitcher.FullName,
	}
}

func mapStatus(abstract string) domain.GameStatus {
	switch abstract {
	case "Preview":
		return domain.StatusScheduled
	case "Final":
		return domain.StatusFinal
	default:
		return domain.StatusOther
	}
}

func mapSplitPair(resp statsResponse) domain.SplitPair {
	pair := domain.DefaultSplitPair()
	found := false
	for _, s := range resp.Stats {
		for _, split := range s.Splits {
			line := domain.Split{
				AVG: ParseStat(split.Stat["avg"]),
				OPS: ParseStat(split.Stat["ops"]),
			}
			switch split.Split.Code {
			case "vl":
				pair.VsLeft = line
				found = true
			case "vr":
				pair.VsRight = line
				found = true
			}
		}
	}
	if found {
		pair.Source = domain.SourceUpstream
	}
	return pair
}

func mapBoxscoreBatting(side rawBoxscoreSide) BoxscoreBatting {
	b := side.TeamStats.Batting
	return BoxscoreBatting{
		TeamID:     side.Team.ID,
		AtBats:     ParseStatInt(b["atBats"]),
		Hits:       ParseStatInt(b["hits"]),
		Doubles:    ParseStatInt(b["doubles"]),
		Triples:    ParseStatInt(b["triples"]),
		HomeRuns:   ParseStatInt(b["homeRuns"]),
		Walks:      ParseStatInt(b["baseOnBalls"]),
		HitByPitch: ParseStatInt(b["hitByPitch"]),
		SacFlies:   ParseStatInt(b["sacFlies"]),
	}
}
