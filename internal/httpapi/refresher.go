package httpapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/timeutil"
)

const defaultRefreshInterval = 30 * time.Minute

// BriefingBuilder assembles the slate for one date.
type BriefingBuilder interface {
	BuildDailyBriefings(ctx context.Context, date string) ([]domain.GameBriefing, error)
}

// Refresher rebuilds today's briefings on an interval and publishes them to
// the store.
type Refresher struct {
	builder  BriefingBuilder
	store    *MemoryStore
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the refresher has a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// NewRefresher constructs a refresher.
func NewRefresher(builder BriefingBuilder, store *MemoryStore, logger *slog.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Refresher{
		builder:  builder,
		store:    store,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins refreshing until the context is cancelled or Stop is called.
// The first build runs immediately to warm the store on boot.
func (r *Refresher) Start(ctx context.Context) {
	r.startMu.Lock()
	if r.started {
		r.startMu.Unlock()
		return
	}
	r.started = true
	r.startMu.Unlock()

	r.ticker = time.NewTicker(r.interval)

	go func() {
		logging.Info(r.logger, "refresher started",
			logging.FieldDurationMS, r.interval.Milliseconds())
		r.refreshOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				r.stopTicker()
				logging.Info(r.logger, "refresher stopped")
				return
			case <-r.done:
				r.stopTicker()
				logging.Info(r.logger, "refresher stopped")
				return
			case <-r.ticker.C:
				r.refreshOnce(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.stopTicker()
	})
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	start := r.now()
	r.recordAttempt(start)

	date := timeutil.FormatDate(start.UTC())
	briefings, err := r.builder.BuildDailyBriefings(ctx, date)
	if err != nil {
		logging.Error(r.logger, "refresh failed", err, logging.FieldDate, date)
		r.recordFailure(err, start)
		return
	}

	r.store.Set(date, briefings, start)
	r.recordSuccess(start)
	logging.Info(r.logger, "slate refreshed",
		logging.FieldDate, date,
		logging.FieldCount, len(briefings))
}

func (r *Refresher) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
}

func (r *Refresher) recordAttempt(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LastAttempt = at
}

func (r *Refresher) recordSuccess(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures = 0
	r.status.LastError = ""
	r.status.LastSuccess = at
}

func (r *Refresher) recordFailure(err error, at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures++
	if err != nil {
		r.status.LastError = err.Error()
	}
	r.status.LastAttempt = at
}

// Status returns a snapshot of the refresher's recent health.
func (r *Refresher) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}
