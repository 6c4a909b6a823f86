// Package statsapi wraps the MLB Stats API behind a retrying HTTP client and
// a typed, caching gateway. All string/numeric normalization happens at this
// boundary; nothing above it parses upstream strings.
package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mlb-briefing-service/internal/logging"
	"mlb-briefing-service/internal/metrics"
)

const (
	defaultBaseURL     = "https://statsapi.mlb.com/api/v1"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	userAgent          = "mlb-briefing-service/1.0"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx upstream response, carrying the attempted URL
// and the last observed status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("statsapi: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Config controls how the client reaches the Stats API.
type Config struct {
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration
	MaxAttempts int
	Recorder    *metrics.Recorder
	Logger      *slog.Logger
}

// Client issues retrying GETs against the Stats API and decodes JSON bodies.
// Connection errors and 5xx responses are retried with exponential backoff
// (1 s, 2 s, 4 s); 4xx responses and decode failures are permanent.
type Client struct {
	baseURL     string
	httpClient  httpDoer
	timeout     time.Duration
	maxAttempts int
	recorder    *metrics.Recorder
	logger      *slog.Logger

	// backoffInitial is shrunk in tests so retries don't sleep for real.
	backoffInitial time.Duration
}

// NewClient constructs a Stats API client with the provided configuration.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		doer = &http.Client{}
	}
	return &Client{
		baseURL:        strings.TrimSuffix(base, "/"),
		httpClient:     doer,
		timeout:        timeout,
		maxAttempts:    attempts,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
		backoffInitial: time.Second,
	}
}

// get fetches path with query and decodes the JSON response into out.
// endpoint names the endpoint class for metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	requestURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	attempt := 0
	operation := func() error {
		attempt++
		return c.fetchOnce(ctx, requestURL, out)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoffInitial
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = 8 * c.backoffInitial

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx))

	c.recorder.RecordUpstreamRequest(endpoint, time.Since(start), err)
	if err != nil {
		logging.Warn(c.logger, "statsapi request failed",
			logging.FieldEndpoint, endpoint, "url", requestURL, "attempts", attempt, "error", err)
	}
	return err
}

func (c *Client) fetchOnce(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection-level failures are retryable.
		return fmt.Errorf("statsapi: GET %s: %w", requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return &StatusError{URL: requestURL, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return backoff.Permanent(&StatusError{URL: requestURL, StatusCode: resp.StatusCode})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("statsapi: GET %s: decode: %w", requestURL, err))
	}
	return nil
}
