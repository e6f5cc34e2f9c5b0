// Package client provides the core Riot HTTP client with lane scheduling,
// bounded retries, jittered backoff, and a typed error taxonomy.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/riftwatch/riot-insights/pkg/scheduler"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Riot client operations.
var (
	riotRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riot_requests_total",
		Help: "Total Riot API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	riotRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riot_request_duration_seconds",
		Help:    "Riot API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	riotErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riot_errors_total",
		Help: "Total Riot API errors by code",
	}, []string{"code"})

	riotRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riot_retries_total",
		Help: "Total number of retry attempts by error code",
	}, []string{"code"})

	riotRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riot_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error code",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"code"})
)

const (
	// defaultRetryAfter is used when a 429 carries no Retry-After header.
	defaultRetryAfter = 5 * time.Second
)

// Config holds the client configuration.
type Config struct {
	// APIKey is the Riot API credential, sent as the X-Riot-Token header.
	// May be empty; fetches then fail fast with KEY_INVALID.
	APIKey string

	// Scheduler gates every outbound attempt. Required.
	Scheduler *scheduler.Scheduler

	// HTTPClient is the underlying transport (default: http.Client without
	// its own timeout; per-attempt timeouts come from Config.Timeout).
	HTTPClient *http.Client

	// MaxRetries is the retry budget per fetch (total attempts = MaxRetries+1).
	MaxRetries int

	// Timeout bounds each individual attempt.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(sched *scheduler.Scheduler, apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		Scheduler:  sched,
		MaxRetries: 3,
		Timeout:    10 * time.Second,
	}
}

// Client is the Riot API HTTP client.
type Client struct {
	httpClient *http.Client
	sched      *scheduler.Scheduler
	config     Config
	logger     zerolog.Logger
}

// New creates a new Riot client.
func New(cfg Config) (*Client, error) {
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		sched:      cfg.Scheduler,
		config:     cfg,
		logger:     logging.NewLogger("riot-client"),
	}, nil
}

// FetchOptions tune a single fetch. Zero values fall back to the client
// configuration; the zero lane is interactive.
type FetchOptions struct {
	Lane       scheduler.Lane
	MaxRetries int
	Timeout    time.Duration
}

// attemptResult carries the outcome of one HTTP attempt out of the scheduler.
type attemptResult struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

// Fetch performs a GET against the Riot API and returns the response body.
// Every attempt consumes one scheduler dispatch on the requested lane;
// retries never bypass the scheduler. Failures surface as *APIError.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts FetchOptions) ([]byte, error) {
	lane := opts.Lane
	if lane == "" {
		lane = scheduler.LaneInteractive
	}
	maxRetries := c.config.MaxRetries
	if opts.MaxRetries > 0 {
		maxRetries = opts.MaxRetries
	}
	timeout := c.config.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	endpoint := endpointLabel(rawURL)

	// Missing credentials fail before any network call.
	if c.config.APIKey == "" {
		riotErrorsTotal.WithLabelValues(string(CodeKeyInvalid)).Inc()
		return nil, &APIError{
			Endpoint: endpoint,
			Code:     CodeKeyInvalid,
			Detail:   "missing API key",
		}
	}

	authRetried := false

	for attempt := 0; attempt <= maxRetries; attempt++ {
		start := time.Now()
		res, reqErr := c.attempt(ctx, lane, rawURL, timeout)
		riotRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		// Transport-level failure (includes timeouts and aborted calls).
		if reqErr != nil {
			if attempt < maxRetries {
				backoff := jitter(time.Duration(1<<attempt) * time.Second)
				riotRetriesTotal.WithLabelValues(string(CodeNetworkError)).Inc()
				riotRetryBackoffSeconds.WithLabelValues(string(CodeNetworkError)).Observe(backoff.Seconds())
				c.logger.Warn().
					Err(reqErr).
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Dur("backoff", backoff).
					Msg("Transport error, retrying after backoff")
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, c.fail(endpoint, 0, CodeNetworkError, "cancelled during backoff", err)
				}
				continue
			}
			return nil, c.fail(endpoint, 0, CodeNetworkError, "transport failure", reqErr)
		}

		status := res.status
		switch {
		case status >= 200 && status < 300:
			riotRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			return res.body, nil

		case status == http.StatusTooManyRequests:
			riotRequestsTotal.WithLabelValues(endpoint, "429").Inc()
			if attempt < maxRetries {
				backoff := jitter(res.retryAfter)
				riotRetriesTotal.WithLabelValues(string(CodeRateLimited)).Inc()
				riotRetryBackoffSeconds.WithLabelValues(string(CodeRateLimited)).Observe(backoff.Seconds())
				c.logger.Warn().
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Dur("backoff", backoff).
					Msg("Rate limited, honoring Retry-After")
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, c.fail(endpoint, status, CodeRateLimited, "cancelled during backoff", err)
				}
				continue
			}
			return nil, c.fail(endpoint, status, CodeRateLimited, "rate limit retries exhausted", nil)

		case status == http.StatusNotFound:
			// Semantic "not found", not a transient fault.
			riotRequestsTotal.WithLabelValues(endpoint, "404").Inc()
			return nil, c.fail(endpoint, status, CodeNotFound, "resource not found", nil)

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			riotRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			if attempt < maxRetries && !authRetried {
				// One retry covers spurious auth blips.
				authRetried = true
				backoff := jitter(1 * time.Second)
				riotRetriesTotal.WithLabelValues(string(CodeKeyInvalid)).Inc()
				riotRetryBackoffSeconds.WithLabelValues(string(CodeKeyInvalid)).Observe(backoff.Seconds())
				c.logger.Warn().
					Str("endpoint", endpoint).
					Int("status", status).
					Msg("Auth rejected, retrying once")
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, c.fail(endpoint, status, CodeKeyInvalid, "cancelled during backoff", err)
				}
				continue
			}
			code := CodeKeyInvalid
			if status == http.StatusUnauthorized {
				code = CodeUnauthorized
			}
			return nil, c.fail(endpoint, status, code, "credential rejected", nil)

		default:
			riotRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			return nil, c.fail(endpoint, status, CodeUnknown, "unexpected response status", nil)
		}
	}

	// Every loop path returns; this is only reachable with a negative budget.
	return nil, c.fail(endpoint, 0, CodeUnknown, "no attempts made", nil)
}

// attempt submits one outbound call through the scheduler.
func (c *Client) attempt(ctx context.Context, lane scheduler.Lane, rawURL string, timeout time.Duration) (*attemptResult, error) {
	res := &attemptResult{}
	err := c.sched.Submit(ctx, lane, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Riot-Token", c.config.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		res.status = resp.StatusCode
		res.retryAfter = parseRetryAfter(resp.Header)

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		res.body = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// fail records metrics and logs before building the typed error.
func (c *Client) fail(endpoint string, status int, code ErrorCode, detail string, err error) *APIError {
	riotErrorsTotal.WithLabelValues(string(code)).Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status", status).
		Str("error_code", string(code)).
		Str("detail", detail).
		Msg("Riot request failed")
	return &APIError{
		StatusCode: status,
		Endpoint:   endpoint,
		Code:       code,
		Detail:     detail,
		Err:        err,
	}
}

// FetchJSON fetches and decodes a JSON payload.
func FetchJSON[T any](ctx context.Context, c *Client, rawURL string, opts FetchOptions) (T, error) {
	var out T
	body, err := c.Fetch(ctx, rawURL, opts)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &APIError{
			Endpoint: endpointLabel(rawURL),
			Code:     CodeUnknown,
			Detail:   "malformed response payload",
			Err:      err,
		}
	}
	return out, nil
}

// parseRetryAfter reads the Retry-After header in seconds.
func parseRetryAfter(headers http.Header) time.Duration {
	v := headers.Get("Retry-After")
	if v == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// jitter scales d by a random factor in [1.0, 1.5) to avoid thundering herd.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (1.0 + rand.Float64()*0.5))
}

// sleepCtx waits for d with context cancellation support.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// endpointLabel reduces a URL to its path for metric labels and logs.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
