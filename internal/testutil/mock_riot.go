// Package testutil provides testing utilities for the Riot insights core.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockRiotResponse defines the behavior for a mock Riot endpoint response.
type MockRiotResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockRiot is a configurable mock Riot API server for testing.
type MockRiot struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
}

// NewMockRiot creates a new mock Riot API server.
func NewMockRiot() *MockRiot {
	mock := &MockRiot{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockRiot) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockRiot) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockRiot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockRiot) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockRiot) SetResponse(path string, resp MockRiotResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockRiot) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns how often one path was requested.
func (m *MockRiot) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// defaultHandler answers with an empty JSON object.
func (m *MockRiot) defaultHandler(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// NewOKResponse creates a 200 OK JSON response.
func NewOKResponse(data string) MockRiotResponse {
	return MockRiotResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 response with a Retry-After header.
func NewRateLimitResponse(retryAfterSecs int) MockRiotResponse {
	return MockRiotResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"status":{"message":"Rate limit exceeded","status_code":429}}`,
		Headers: map[string]string{
			"Retry-After":  fmt.Sprintf("%d", retryAfterSecs),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 response in the Riot error shape.
func NewNotFoundResponse() MockRiotResponse {
	return MockRiotResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"status":{"message":"Data not found","status_code":404}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewForbiddenResponse creates a 403 response (rejected API key).
func NewForbiddenResponse() MockRiotResponse {
	return MockRiotResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"status":{"message":"Forbidden","status_code":403}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockRiotResponse {
	return MockRiotResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"status":{"message":"Internal server error","status_code":500}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// AccountJSON builds an account payload.
func AccountJSON(puuid, gameName, tagLine string) string {
	return fmt.Sprintf(`{"puuid":%q,"gameName":%q,"tagLine":%q}`, puuid, gameName, tagLine)
}

// SummonerJSON builds a summoner payload.
func SummonerJSON(puuid string, level int) string {
	return fmt.Sprintf(`{"puuid":%q,"profileIconId":1,"summonerLevel":%d}`, puuid, level)
}

// SoloLeagueJSON builds a single-entry solo-queue league payload.
func SoloLeagueJSON(tier, rank string, wins, losses int) string {
	return fmt.Sprintf(
		`[{"queueType":"RANKED_SOLO_5x5","tier":%q,"rank":%q,"leaguePoints":50,"wins":%d,"losses":%d,"hotStreak":false,"freshBlood":false,"veteran":false,"inactive":false}]`,
		tier, rank, wins, losses)
}
