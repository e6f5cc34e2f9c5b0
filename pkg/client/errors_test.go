package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		StatusCode: 404,
		Endpoint:   "/lol/summoner/v4/summoners/by-puuid/abc",
		Code:       CodeNotFound,
		Detail:     "resource not found",
	}

	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	for _, want := range []string{"NOT_FOUND", "404", "/lol/summoner"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &APIError{Code: CodeNetworkError, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is did not reach the wrapped transport error")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil error", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"direct api error", &APIError{Code: CodeRateLimited}, CodeRateLimited},
		{"wrapped api error", fmt.Errorf("fetch summoner: %w", &APIError{Code: CodeNotFound}), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := &APIError{Code: CodeNotInGame}
	if !IsCode(err, CodeNotInGame) {
		t.Error("IsCode(NOT_IN_GAME) = false, want true")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode(NOT_FOUND) = true, want false")
	}
}
