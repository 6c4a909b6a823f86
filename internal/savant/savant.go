// Package savant pulls per-team Statcast batted-ball exports from Baseball
// Savant and reduces them to the two quality rates the briefing shows.
package savant

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
	"mlb-briefing-service/internal/timeutil"
)

const (
	defaultBaseURL = "https://baseballsavant.mlb.com/statcast_search/csv"
	endpointLabel  = "savant_statcast"

	hardHitSpeed = 95.0
	// Approximate barrel predicate; the export does not carry the true
	// barrel flag.
	barrelSpeed    = 98.0
	barrelAngleMin = 10.0
	barrelAngleMax = 50.0

	// Rolling window the quality rates are computed over.
	windowDays = 30
)

// Quality is the batted-ball quality summary for one team.
type Quality struct {
	BarrelPct  float64 `json:"barrelPct"`
	HardHitPct float64 `json:"hardHitPct"`
	SampleSize int     `json:"sampleSize"`
	Source     string  `json:"source"`
}

// DefaultQuality is the sentinel returned when the CSV is empty or the
// request fails.
func DefaultQuality() Quality {
	return Quality{BarrelPct: 8.0, HardHitPct: 40.0, SampleSize: 0, Source: domain.SourceDefault}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the savant client reaches the CSV export.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      cache.Cache
	Recorder   *metrics.Recorder
	Logger     *slog.Logger
}

// Client fetches Statcast CSVs. It is total: every public method returns a
// well-formed Quality, defaulting on any failure.
type Client struct {
	baseURL    string
	httpClient httpDoer
	cache      cache.Cache
	recorder   *metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient constructs a savant client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    base,
		httpClient: doer,
		cache:      cfg.Cache,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// TeamStatcast pulls one team's batted-ball rows for a date range and
// computes Barrel% and Hard-Hit%.
func (c *Client) TeamStatcast(ctx context.Context, teamAbbr string, startDate, endDate string, season int) Quality {
	start := time.Now()
	quality, err := c.fetch(ctx, teamAbbr, startDate, endDate, season)
	c.recorder.RecordUpstreamRequest(endpointLabel, time.Since(start), err)
	if err != nil {
		logging.Warn(c.logger, "statcast fetch failed, using default quality",
			"team_abbr", teamAbbr, "error", err)
		return DefaultQuality()
	}
	return quality
}

// TeamQuality resolves quality for a team id: the season-wide batch entry
// first, then the per-team cache, then a live fetch over the last 30 days.
func (c *Client) TeamQuality(ctx context.Context, teamID, season int) Quality {
	all := make(map[int]Quality)
	if c.cache.Get(ctx, cache.NamespaceTeamStatcastAll, strconv.Itoa(season), &all) {
		if q, ok := all[teamID]; ok {
			return q
		}
	}

	key := fmt.Sprintf("%d_%d", teamID, season)
	var q Quality
	if c.cache.Get(ctx, cache.NamespaceTeamQuality, key, &q) {
		return q
	}

	abbr, ok := TeamAbbr[teamID]
	if !ok {
		return DefaultQuality()
	}
	end := c.now().UTC()
	q = c.TeamStatcast(ctx, abbr, timeutil.FormatDate(end.AddDate(0, 0, -windowDays)), timeutil.FormatDate(end), season)
	if q.Source != domain.SourceDefault {
		c.cache.Put(ctx, cache.NamespaceTeamQuality, key, q)
	}
	return q
}

// FetchAll iterates the 30 known teams and writes one season-wide cache
// entry. Individual failures degrade to the default sentinel for that team.
func (c *Client) FetchAll(ctx context.Context, season int) map[int]Quality {
	end := c.now().UTC()
	startDate := timeutil.FormatDate(end.AddDate(0, 0, -windowDays))
	endDate := timeutil.FormatDate(end)

	all := make(map[int]Quality, len(TeamAbbr))
	for teamID, abbr := range TeamAbbr {
		all[teamID] = c.TeamStatcast(ctx, abbr, startDate, endDate, season)
	}
	c.cache.Put(ctx, cache.NamespaceTeamStatcastAll, strconv.Itoa(season), all)
	return all
}

func (c *Client) fetch(ctx context.Context, teamAbbr, startDate, endDate string, season int) (Quality, error) {
	query := url.Values{}
	query.Set("all", "true")
	query.Set("type", "details")
	query.Set("player_type", "batter")
	query.Set("hfSea", fmt.Sprintf("%d|", season))
	query.Set("hfGT", "R|")
	query.Set("team", teamAbbr)
	query.Set("game_date_gt", startDate)
	query.Set("game_date_lt", endDate)
	query.Set("min_results", "0")

	requestURL := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Quality{}, err
	}
	req.Header.Set("User-Agent", "mlb-briefing-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quality{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Quality{}, fmt.Errorf("savant: GET %s: unexpected status %d", c.baseURL, resp.StatusCode)
	}

	quality, err := reduceCSV(resp.Body)
	if err != nil {
		return Quality{}, err
	}
	return quality, nil
}

// reduceCSV scans the export for launch speed/angle and accumulates the
// hard-hit and barrel counts over rows with a real launch speed.
func reduceCSV(r io.Reader) (Quality, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return DefaultQuality(), nil
		}
		return Quality{}, err
	}
	speedCol, angleCol := -1, -1
	for i, name := range header {
		switch name {
		case "launch_speed":
			speedCol = i
		case "launch_angle":
			angleCol = i
		}
	}
	if speedCol < 0 {
		return DefaultQuality(), nil
	}

	valid, hardHit, barrels := 0, 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is skippable; anything else (a broken body
			// mid-stream) repeats on every Read, so bail out.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return Quality{}, err
		}
		if speedCol >= len(row) {
			continue
		}
		speed, err := strconv.ParseFloat(row[speedCol], 64)
		if err != nil {
			continue
		}
		valid++
		if speed >= hardHitSpeed {
			hardHit++
		}
		if angleCol >= 0 && angleCol < len(row) {
			if angle, err := strconv.ParseFloat(row[angleCol], 64); err == nil {
				if speed >= barrelSpeed && angle >= barrelAngleMin && angle <= barrelAngleMax {
					barrels++
				}
			}
		}
	}

	if valid == 0 {
		return DefaultQuality(), nil
	}
	return Quality{
		BarrelPct:  round1(100 * float64(barrels) / float64(valid)),
		HardHitPct: round1(100 * float64(hardHit) / float64(valid)),
		SampleSize: valid,
		Source:     domain.SourceUpstream,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
