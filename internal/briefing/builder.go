package briefing

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
	"mlb-briefing-service/internal/statsapi"
)

const perGameTimeout = 120 * time.Second

// Builder fans the day's schedule out across the three aggregators and
// assembles the finished briefings.
type Builder struct {
	gateway     *statsapi.Gateway
	pitchers    *PitcherAggregator
	bullpens    *BullpenAggregator
	batting     *BattingAggregator
	recorder    *metrics.Recorder
	logger      *slog.Logger
	season      int
	concurrency int
}

// NewBuilder constructs a builder. concurrency bounds how many games are
// assembled at once; values below one are treated as one.
func NewBuilder(gateway *statsapi.Gateway, pitchers *PitcherAggregator, bullpens *BullpenAggregator, batting *BattingAggregator, recorder *metrics.Recorder, logger *slog.Logger, season, concurrency int) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		gateway:     gateway,
		pitchers:    pitchers,
		bullpens:    bullpens,
		batting:     batting,
		recorder:    recorder,
		logger:      logger,
		season:      season,
		concurrency: concurrency,
	}
}

// BuildDailyBriefings assembles one briefing per game scheduled on date
// (YYYY-MM-DD). Only a schedule failure is an error; every per-game fetch
// degrades to its documented default instead. Results are ordered by first
// pitch, then by game key.
func (b *Builder) BuildDailyBriefings(ctx context.Context, date string) ([]domain.GameBriefing, error) {
	start := time.Now()
	games, err := b.gateway.Schedule(ctx, date)
	if err != nil {
		b.recorder.RecordBriefingBuild(time.Since(start), err)
		return nil, err
	}
	if len(games) == 0 {
		b.recorder.RecordBriefingBuild(time.Since(start), nil)
		return []domain.GameBriefing{}, nil
	}

	briefings := make([]domain.GameBriefing, len(games))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	for i, game := range games {
		wg.Add(1)
		go func(i int, game domain.ScheduleGame) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			briefings[i] = b.buildGame(ctx, game)
		}(i, game)
	}
	wg.Wait()

	sort.Slice(briefings, func(i, j int) bool {
		if !briefings[i].Game.Start.Equal(briefings[j].Game.Start) {
			return briefings[i].Game.Start.Before(briefings[j].Game.Start)
		}
		return briefings[i].Game.GamePK < briefings[j].Game.GamePK
	})

	b.recorder.RecordBriefingBuild(time.Since(start), nil)
	logging.Info(b.logger, "daily briefings built",
		logging.FieldDate, date,
		logging.FieldCount, len(briefings),
		logging.FieldDurationMS, time.Since(start).Milliseconds())
	return briefings, nil
}

// buildGame assembles one game's briefing, fetching the six sub-bundles
// concurrently under a per-game deadline.
func (b *Builder) buildGame(ctx context.Context, game domain.ScheduleGame) domain.GameBriefing {
	ctx, cancel := context.WithTimeout(ctx, perGameTimeout)
	defer cancel()

	briefing := domain.GameBriefing{
		Game: game,
		Away: domain.TeamBundle{TeamID: game.AwayTeamID, TeamName: game.AwayTeamName},
		Home: domain.TeamBundle{TeamID: game.HomeTeamID, TeamName: game.HomeTeamName},
	}

	var wg sync.WaitGroup
	wg.Add(6)
	go func() {
		defer wg.Done()
		briefing.Away.Pitcher = b.pitchers.Line(ctx, game.AwayProbableID, b.season, game.AwayProbableName)
	}()
	go func() {
		defer wg.Done()
		briefing.Home.Pitcher = b.pitchers.Line(ctx, game.HomeProbableID, b.season, game.HomeProbableName)
	}()
	go func() {
		defer wg.Done()
		briefing.Away.Bullpen = b.bullpens.Line(ctx, game.AwayTeamID, b.season)
	}()
	go func() {
		defer wg.Done()
		briefing.Home.Bullpen = b.bullpens.Line(ctx, game.HomeTeamID, b.season)
	}()
	go func() {
		defer wg.Done()
		briefing.Away.Batting = b.batting.Line(ctx, game.AwayTeamID, b.season)
	}()
	go func() {
		defer wg.Done()
		briefing.Home.Batting = b.batting.Line(ctx, game.HomeTeamID, b.season)
	}()
	wg.Wait()
	return briefing
}
