package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/riftwatch/riot-insights/internal/testutil"
	"github.com/riftwatch/riot-insights/pkg/scheduler"
)

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	sched, err := scheduler.New(scheduler.Config{
		Interactive: scheduler.LaneConfig{MaxConcurrent: 4},
		Bulk:        scheduler.LaneConfig{MaxConcurrent: 3},
		GlobalMax:   5,
	})
	if err != nil {
		t.Fatalf("create scheduler: %v", err)
	}
	return sched
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Scheduler == nil {
		cfg.Scheduler = newTestScheduler(t)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func TestNew_RequiresScheduler(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	if err == nil {
		t.Error("Expected error for missing scheduler, got nil")
	}
}

func TestFetch_Success(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/lol/summoner/v4/summoners/by-puuid/abc", testutil.NewOKResponse(`{"summonerLevel":42}`))

	c := newTestClient(t, Config{APIKey: "test-key", MaxRetries: 3})

	body, err := c.Fetch(context.Background(), mock.URL()+"/lol/summoner/v4/summoners/by-puuid/abc", FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"summonerLevel":42}` {
		t.Errorf("body = %s, want summoner payload", body)
	}
	if got := mock.LastRequestHeader.Get("X-Riot-Token"); got != "test-key" {
		t.Errorf("X-Riot-Token = %q, want %q", got, "test-key")
	}
}

func TestFetch_MissingKeyFailsFast(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()

	c := newTestClient(t, Config{APIKey: "", MaxRetries: 3})

	_, err := c.Fetch(context.Background(), mock.URL()+"/lol/summoner/v4/summoners/by-puuid/abc", FetchOptions{})
	if CodeOf(err) != CodeKeyInvalid {
		t.Errorf("error code = %s, want KEY_INVALID", CodeOf(err))
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("request count = %d, want 0 (no network call without a key)", mock.GetRequestCount())
	}
}

func TestFetch_NotFoundSingleAttempt(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/missing", testutil.NewNotFoundResponse())

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 3})

	_, err := c.Fetch(context.Background(), mock.URL()+"/missing", FetchOptions{})
	if CodeOf(err) != CodeNotFound {
		t.Errorf("error code = %s, want NOT_FOUND", CodeOf(err))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("request count = %d, want exactly 1 (404 is never retried)", mock.GetRequestCount())
	}
}

func TestFetch_RateLimitExhaustsRetries(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/limited", testutil.NewRateLimitResponse(0))

	maxRetries := 2
	c := newTestClient(t, Config{APIKey: "k", MaxRetries: maxRetries})

	_, err := c.Fetch(context.Background(), mock.URL()+"/limited", FetchOptions{})
	if CodeOf(err) != CodeRateLimited {
		t.Errorf("error code = %s, want RATE_LIMITED", CodeOf(err))
	}
	if got := mock.GetRequestCount(); got != maxRetries+1 {
		t.Errorf("request count = %d, want %d (maxRetries+1)", got, maxRetries+1)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
}

func TestFetch_RateLimitRecoversAfterRetry(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()

	calls := 0
	mock.SetHandler("/flaky", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 3})

	body, err := c.Fetch(context.Background(), mock.URL()+"/flaky", FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s, want recovered payload", body)
	}
	if calls != 2 {
		t.Errorf("attempts = %d, want 2", calls)
	}
}

func TestFetch_AuthRejectedRetriesOnce(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/secure", testutil.NewForbiddenResponse())

	c := newTestClient(t, Config{APIKey: "bad-key", MaxRetries: 3})

	_, err := c.Fetch(context.Background(), mock.URL()+"/secure", FetchOptions{})
	if CodeOf(err) != CodeKeyInvalid {
		t.Errorf("error code = %s, want KEY_INVALID for 403", CodeOf(err))
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("request count = %d, want 2 (one auth retry)", got)
	}
}

func TestFetch_UnauthorizedMapsToUnauthorized(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/secure", testutil.MockRiotResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"status":{"message":"Unauthorized","status_code":401}}`,
	})

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 3})

	_, err := c.Fetch(context.Background(), mock.URL()+"/secure", FetchOptions{})
	if CodeOf(err) != CodeUnauthorized {
		t.Errorf("error code = %s, want UNAUTHORIZED for 401", CodeOf(err))
	}
}

func TestFetch_ServerErrorNotRetried(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/broken", testutil.NewServerErrorResponse())

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 3})

	_, err := c.Fetch(context.Background(), mock.URL()+"/broken", FetchOptions{})
	if CodeOf(err) != CodeUnknown {
		t.Errorf("error code = %s, want UNKNOWN", CodeOf(err))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("request count = %d, want 1 (5xx is not retried)", mock.GetRequestCount())
	}
}

func TestFetch_TransportErrorExhaustsRetries(t *testing.T) {
	mock := testutil.NewMockRiot()
	url := mock.URL()
	mock.Close() // every connection now fails

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 0})

	_, err := c.Fetch(context.Background(), url+"/gone", FetchOptions{})
	if CodeOf(err) != CodeNetworkError {
		t.Errorf("error code = %s, want NETWORK_ERROR", CodeOf(err))
	}
}

func TestFetchJSON(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/json", testutil.NewOKResponse(`{"puuid":"p1","summonerLevel":77}`))

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 1})

	type summoner struct {
		PUUID         string `json:"puuid"`
		SummonerLevel int    `json:"summonerLevel"`
	}

	got, err := FetchJSON[summoner](context.Background(), c, mock.URL()+"/json", FetchOptions{})
	if err != nil {
		t.Fatalf("FetchJSON failed: %v", err)
	}
	if got.PUUID != "p1" || got.SummonerLevel != 77 {
		t.Errorf("decoded = %+v, want p1/77", got)
	}
}

func TestFetchJSON_MalformedPayload(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse("/bad", testutil.NewOKResponse(`{not json`))

	c := newTestClient(t, Config{APIKey: "k", MaxRetries: 1})

	_, err := FetchJSON[map[string]any](context.Background(), c, mock.URL()+"/bad", FetchOptions{})
	if CodeOf(err) != CodeUnknown {
		t.Errorf("error code = %s, want UNKNOWN for malformed payload", CodeOf(err))
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"missing header uses default", "", defaultRetryAfter},
		{"valid seconds", "3", 3 * time.Second},
		{"zero seconds", "0", 0},
		{"garbage uses default", "soon", defaultRetryAfter},
		{"negative uses default", "-2", defaultRetryAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			if got := parseRetryAfter(h); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestJitterRange(t *testing.T) {
	base := 2 * time.Second
	for i := 0; i < 100; i++ {
		d := jitter(base)
		if d < base || d >= 3*time.Second {
			t.Fatalf("jitter(%v) = %v, want in [2s, 3s)", base, d)
		}
	}
}
