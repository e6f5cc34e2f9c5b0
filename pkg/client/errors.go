package client

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed Riot API call. The mapping from transport
// outcome to code is one-to-one; callers switch on the code, never on raw
// HTTP statuses.
type ErrorCode string

const (
	// CodeNotFound means the resource does not exist upstream. Never retried.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeNotInGame is the semantic 404 of the live-game endpoint. Mapped by
	// the spectator wrapper, not by the client itself.
	CodeNotInGame ErrorCode = "NOT_IN_GAME"

	// CodeKeyInvalid means the API key was rejected (403) or missing.
	CodeKeyInvalid ErrorCode = "KEY_INVALID"

	// CodeUnauthorized means the credential was not accepted (401).
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeRateLimited means a 429 persisted through all retries.
	CodeRateLimited ErrorCode = "RATE_LIMITED"

	// CodeSpectatorUnavailable means the live-game service is degraded.
	// Mapped by the spectator wrapper from other error codes.
	CodeSpectatorUnavailable ErrorCode = "SPECTATOR_UNAVAILABLE"

	// CodeNetworkError means a transport failure or timeout persisted
	// through all retries.
	CodeNetworkError ErrorCode = "NETWORK_ERROR"

	// CodeUnknown covers any other non-2xx response. Never retried.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// APIError is the typed error surfaced by every failed Riot API call.
type APIError struct {
	StatusCode int
	Endpoint   string
	Code       ErrorCode
	Detail     string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("riot %s error (status %d) on %s: %s: %v",
			e.Code, e.StatusCode, e.Endpoint, e.Detail, e.Err)
	}
	return fmt.Sprintf("riot %s error (status %d) on %s: %s",
		e.Code, e.StatusCode, e.Endpoint, e.Detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from an error chain. Returns "" for nil or
// non-API errors.
func CodeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
