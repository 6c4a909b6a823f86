package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mlb-briefing-service/internal/domain"
	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
	"mlb-briefing-service/internal/timeutil"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// slateResponse is the JSON body served by GET /briefings.
type slateResponse struct {
	Date      string                `json:"date"`
	BuiltAt   time.Time             `json:"builtAt"`
	Briefings []domain.GameBriefing `json:"briefings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the briefing API.
type Server struct {
	builder        BriefingBuilder
	store          *MemoryStore
	refresher      *Refresher
	recorder       *metrics.Recorder
	metricsHandler http.Handler
	logger         *slog.Logger
	srv            *http.Server
}

// Config wires the server's collaborators.
type Config struct {
	Addr           string
	Builder        BriefingBuilder
	Store          *MemoryStore
	Refresher      *Refresher
	Recorder       *metrics.Recorder
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewServer constructs the HTTP server and its router.
func NewServer(cfg Config) *Server {
	s := &Server{
		builder:        cfg.Builder,
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		recorder:       cfg.Recorder,
		metricsHandler: cfg.MetricsHandler,
		logger:         cfg.Logger,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metricsMiddleware)
	r.Get("/briefings", s.handleBriefings)
	r.Get("/healthz", s.handleHealthz)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	return r
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start runs the refresher and blocks serving HTTP until the listener fails
// or the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.refresher != nil {
		s.refresher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(s.logger, "http server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if s.refresher != nil {
			s.refresher.Stop()
		}
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleBriefings(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("date")
	if requested != "" {
		if _, err := timeutil.ParseDate(requested); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
	}

	date, briefings, builtAt, ok := s.store.Get()
	if ok && (requested == "" || requested == date) {
		writeJSON(w, http.StatusOK, slateResponse{Date: date, BuiltAt: builtAt, Briefings: briefings})
		return
	}
	if requested == "" {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no slate built yet"})
		return
	}

	// Another date than the stored slate: build on demand. The cache keeps
	// repeat requests cheap.
	built, err := s.builder.BuildDailyBriefings(r.Context(), requested)
	if err != nil {
		logging.Error(s.logger, "on-demand build failed", err,
			logging.FieldDate, requested)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "schedule unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, slateResponse{Date: requested, BuiltAt: time.Now(), Briefings: built})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok"}
	if s.refresher != nil {
		rs := s.refresher.Status()
		body["lastSuccess"] = rs.LastSuccess
		body["consecutiveFailures"] = rs.ConsecutiveFailures
		if !rs.IsReady() {
			status = http.StatusServiceUnavailable
			body["status"] = "not ready"
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if s.recorder != nil {
			s.recorder.RecordHTTPRequest(r.Method, r.URL.Path, sw.status, time.Since(start))
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
