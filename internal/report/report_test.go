package report

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"mlb-briefing-service/internal/domain"
)

func sampleBriefing() domain.GameBriefing {
	return domain.GameBriefing{
		Game: domain.ScheduleGame{
			GamePK:       745001,
			Start:        time.Date(2025, 8, 1, 23, 5, 0, 0, time.UTC),
			Status:       domain.StatusScheduled,
			AwayTeamID:   141,
			AwayTeamName: "Toronto Blue Jays",
			HomeTeamID:   147,
			HomeTeamName: "New York Yankees",
		},
		Away: domain.TeamBundle{
			TeamID:   141,
			TeamName: "Toronto Blue Jays",
			Pitcher: domain.PitcherLine{
				Name: "Kevin Gausman", Wins: 10, Losses: 8,
				ERA: 3.59, FIP: 3.46, XFIP: 3.80, XFIPSource: domain.SourceUpstream,
				WHIP: 1.18, KBBPct: 18.7, Splits: domain.DefaultSplitPair(),
				Source: domain.SourceUpstream,
			},
			Bullpen: domain.BullpenLine{
				RelieverCount: 7, ERA: 3.90, FIP: 4.02, XFIP: 4.10, WHIP: 1.28,
				KBBPct: 14.2,
				Closer: &domain.RelieverRole{Name: "Jeff Hoffman", FIP: 3.10},
				SetupMen: []domain.RelieverRole{
					{Name: "Yimi Garcia", FIP: 3.55},
				},
				FatiguedCount: 2,
				Source:        domain.SourceUpstream,
			},
			Batting: domain.TeamBattingLine{
				AVG: 0.265, OPS: 0.780, Runs: 720, HomeRuns: 190,
				WOBA: 0.334, XWOBA: 0.321, XWOBASource: domain.SourceComputed,
				BarrelPct: 9.5, HardHitPct: 42.3, QualitySource: domain.SourceUpstream,
				RecentOPS5:  domain.RecentOPS{OPS: 0.812, Games: 5, Source: domain.SourceComputed},
				RecentOPS10: domain.DefaultRecentOPS(),
				Source:      domain.SourceUpstream,
			},
		},
		Home: domain.TeamBundle{
			TeamID:   147,
			TeamName: "New York Yankees",
			Pitcher:  domain.DefaultPitcherLine(""),
			Bullpen:  domain.BullpenLine{Source: domain.SourceDefault},
			Batting: domain.TeamBattingLine{
				XWOBASource:   domain.SourceDefault,
				QualitySource: domain.SourceDefault,
				RecentOPS5:    domain.DefaultRecentOPS(),
				RecentOPS10:   domain.DefaultRecentOPS(),
				Source:        domain.SourceDefault,
			},
		},
	}
}

func TestTextRendersJSTFirstPitch(t *testing.T) {
	out := Text("2025-08-01", []domain.GameBriefing{sampleBriefing()})

	// 23:05 UTC on Aug 1 is 08:05 the next morning in Japan.
	if !strings.Contains(out, "First pitch 2025-08-02 08:05 JST") {
		t.Fatalf("expected JST first-pitch heading, got:\n%s", out)
	}
	if !strings.Contains(out, "Toronto Blue Jays @ New York Yankees") {
		t.Fatalf("expected matchup heading, got:\n%s", out)
	}
	if !strings.Contains(out, "MLB Daily Briefing: 2025-08-01 (1 games)") {
		t.Fatalf("expected report header, got:\n%s", out)
	}
}

func TestTextMarksNonUpstreamValues(t *testing.T) {
	out := Text("2025-08-01", []domain.GameBriefing{sampleBriefing()})

	if !strings.Contains(out, "xwOBA 0.321~") {
		t.Fatalf("expected computed xwOBA marked, got:\n%s", out)
	}
	if !strings.Contains(out, "SP  TBD") {
		t.Fatalf("expected TBD placeholder starter, got:\n%s", out)
	}
	if !strings.Contains(out, "CL Jeff Hoffman (FIP 3.10)") {
		t.Fatalf("expected closer role line, got:\n%s", out)
	}
	if !strings.Contains(out, "2 fatigued") {
		t.Fatalf("expected fatigue note, got:\n%s", out)
	}
	// The default rolling window renders flagged with zero games.
	if !strings.Contains(out, "L10 0.700 (0G*)") {
		t.Fatalf("expected flagged default rolling window, got:\n%s", out)
	}
}

func TestTextEmptySlate(t *testing.T) {
	out := Text("2025-12-25", nil)
	if !strings.Contains(out, "No games scheduled.") {
		t.Fatalf("expected empty-slate notice, got:\n%s", out)
	}
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestWebhookSendPostsJSON(t *testing.T) {
	var gotBody, gotContentType string
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		gotBody = string(raw)
		gotContentType = req.Header.Get("Content-Type")
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Header:     make(http.Header),
		}, nil
	})}

	w := NewWebhook("http://hooks.example.com/abc", client, nil)
	if err := w.Send(context.Background(), "report body"); err != nil {
		t.Fatalf("expected delivery to succeed, got %v", err)
	}
	if gotBody != `{"text":"report body"}` {
		t.Fatalf("unexpected payload: %s", gotBody)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
}

func TestWebhookSendReportsRejection(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 403,
			Body:       io.NopCloser(strings.NewReader("forbidden")),
			Header:     make(http.Header),
		}, nil
	})}

	w := NewWebhook("http://hooks.example.com/abc", client, nil)
	if err := w.Send(context.Background(), "report body"); err == nil {
		t.Fatal("expected an error on a non-2xx response")
	}
}
