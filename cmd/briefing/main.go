package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"mlb-briefing-service/internal/briefing"
	"mlb-briefing-service/internal/cache"
	"mlb-briefing-service/internal/config"
	"mlb-briefing-service/internal/httpapi"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
	"mlb-briefing-service/internal/report"
	"mlb-briefing-service/internal/savant"
	"mlb-briefing-service/internal/statsapi"
	"mlb-briefing-service/internal/timeutil"
)

const appVersion = "dev"

const (
	exitOK          = 0
	exitConfigError = 1
	exitOutage      = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("briefing", flag.ContinueOnError)
	date := fs.String("date", "", "slate date as YYYY-MM-DD (default today, UTC)")
	checkData := fs.Bool("check-data", false, "print cache freshness and exit")
	serve := fs.Bool("serve", false, "run the HTTP API instead of a one-shot report")
	port := fs.String("port", "", "serve-mode port (overrides PORT)")
	post := fs.Bool("post", false, "send the report to the configured webhook")
	warmStatcast := fs.Bool("warm-statcast", false, "prefetch the season statcast cache for all teams and exit")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	if *date == "" {
		*date = timeutil.FormatDate(time.Now().UTC())
	} else if _, err := timeutil.ParseDate(*date); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date %q: want YYYY-MM-DD\n", *date)
		return exitConfigError
	}
	if *post && cfg.WebhookURL == "" {
		fmt.Fprintln(os.Stderr, "--post requires WEBHOOK_URL")
		return exitConfigError
	}
	if *port != "" {
		cfg.Port = *port
	}

	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "mlb-briefing-service",
		Version: appVersion,
	}).With(logging.FieldRunID, uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, metricsHandler, shutdownMetrics, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		logging.Error(logger, "telemetry setup failed", err)
		recorder = metrics.NewRecorder()
		shutdownMetrics = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownMetrics(shutdownCtx)
	}()

	var store cache.Cache
	switch cfg.CacheBackend {
	case config.BackendRedis:
		store = cache.NewRedis(cfg.RedisAddr, logger, recorder)
	default:
		store = cache.NewStore(cfg.CacheRoot, logger, recorder)
	}

	if *checkData {
		printFreshness(ctx, store)
		return exitOK
	}

	client := statsapi.NewClient(statsapi.Config{
		BaseURL:     cfg.StatsAPIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.HTTPMaxAttempts,
		Recorder:    recorder,
		Logger:      logger,
	})
	gateway := statsapi.NewGateway(client, store, logger)
	savantClient := savant.NewClient(savant.Config{
		BaseURL:  cfg.SavantBaseURL,
		Cache:    store,
		Recorder: recorder,
		Logger:   logger,
	})

	if *warmStatcast {
		all := savantClient.FetchAll(ctx, cfg.Season)
		fmt.Printf("statcast cache warmed for %d teams, season %d\n", len(all), cfg.Season)
		return exitOK
	}

	builder := briefing.NewBuilder(
		gateway,
		briefing.NewPitcherAggregator(gateway, store, logger),
		briefing.NewBullpenAggregator(gateway, store, logger),
		briefing.NewBattingAggregator(gateway, savantClient, store, logger),
		recorder,
		logger,
		cfg.Season,
		cfg.Concurrency,
	)

	if *serve {
		memStore := httpapi.NewMemoryStore()
		refresher := httpapi.NewRefresher(builder, memStore, logger, cfg.RefreshInterval)
		srv := httpapi.NewServer(httpapi.Config{
			Addr:           ":" + cfg.Port,
			Builder:        builder,
			Store:          memStore,
			Refresher:      refresher,
			Recorder:       recorder,
			MetricsHandler: metricsHandler,
			Logger:         logger,
		})
		if err := srv.Start(ctx); err != nil {
			logging.Error(logger, "server exited", err)
			return exitOutage
		}
		return exitOK
	}

	briefings, err := builder.BuildDailyBriefings(ctx, *date)
	if err != nil {
		logging.Error(logger, "slate build failed", err, logging.FieldDate, *date)
		return exitOutage
	}

	text := report.Text(*date, briefings)
	fmt.Print(text)

	if *post {
		webhook := report.NewWebhook(cfg.WebhookURL, nil, logger)
		if err := webhook.Send(ctx, text); err != nil {
			logging.Error(logger, "report delivery failed", err)
		}
	}
	return exitOK
}

func printFreshness(ctx context.Context, store cache.Cache) {
	fmt.Printf("%-22s %-8s %8s %8s  %s\n", "NAMESPACE", "TTL", "ENTRIES", "FRESH", "NEWEST")
	for _, f := range store.Freshness(ctx) {
		newest := "-"
		if !f.Newest.IsZero() {
			newest = f.Newest.UTC().Format(time.RFC3339)
		}
		fmt.Printf("%-22s %-8s %8d %8d  %s\n",
			f.Namespace, f.TTL, f.Entries, f.Fresh, newest)
	}
}
