package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/riftwatch/riot-insights/pkg/client"
	"github.com/riftwatch/riot-insights/pkg/riot"
	"github.com/riftwatch/riot-insights/pkg/rules"
	"github.com/riftwatch/riot-insights/pkg/signals"
	"github.com/rs/zerolog"
)

type server struct {
	riot    *riot.Client
	builder *signals.Builder
	engine  *rules.Engine
	logger  zerolog.Logger
}

// insightsResponse is the payload of a successful lookup.
type insightsResponse struct {
	Account  riot.Account          `json:"account"`
	Platform string                `json:"platform"`
	InGame   bool                  `json:"inGame"`
	Signals  signals.PlayerSignals `json:"signals"`
	Insights rules.PlayerInsights  `json:"insights"`
}

// errorResponse is the stable error payload: the taxonomy code plus the
// upstream HTTP status where one exists.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// insightsHandler runs the full pipeline: identity, profile, ranked state,
// masteries, live game, signal assembly, scoring.
func (s *server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platform := r.PathValue("platform")
	gameName := r.PathValue("gameName")
	tagLine := r.PathValue("tagLine")

	if _, err := riot.PlatformHost(platform); err != nil {
		s.writeError(w, http.StatusBadRequest, errorBody{
			Code:    "INVALID_PLATFORM",
			Message: "unknown platform code",
		})
		return
	}

	account, err := s.riot.AccountByRiotID(ctx, platform, gameName, tagLine)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	summoner, err := s.riot.SummonerByPUUID(ctx, platform, account.PUUID)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	// Ranked entries and masteries enrich the signals; their failure
	// degrades the result instead of failing the lookup.
	entries, err := s.riot.LeagueEntriesByPUUID(ctx, platform, account.PUUID)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", account.PUUID).Msg("League lookup failed, degrading")
		entries = nil
	}
	masteries, err := s.riot.MasteriesByPUUID(ctx, platform, account.PUUID, 10)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", account.PUUID).Msg("Mastery lookup failed, degrading")
		masteries = nil
	}

	inGame := false
	currentChampionID := 0
	game, err := s.riot.ActiveGameByPUUID(ctx, platform, account.PUUID)
	switch {
	case err == nil:
		inGame = true
		if p := game.FindParticipant(account.PUUID); p != nil {
			currentChampionID = p.ChampionID
		}
	case client.IsCode(err, client.CodeNotInGame):
		// Normal case, nothing to degrade.
	case client.IsCode(err, client.CodeSpectatorUnavailable):
		s.logger.Warn().Err(err).Str("puuid", account.PUUID).Msg("Spectator degraded, continuing without live game")
	default:
		s.writeAPIError(w, err)
		return
	}

	sig := s.builder.Build(ctx, platform, summoner, entries, masteries, currentChampionID, "")
	insights := s.engine.ComputeInsights(sig)

	s.writeJSON(w, http.StatusOK, insightsResponse{
		Account:  *account,
		Platform: platform,
		InGame:   inGame,
		Signals:  sig,
		Insights: insights,
	})
}

// writeAPIError maps the error taxonomy to response statuses.
func (s *server) writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		s.logger.Error().Err(err).Msg("Unhandled error in pipeline")
		s.writeError(w, http.StatusInternalServerError, errorBody{
			Code:    "INTERNAL",
			Message: "internal error",
		})
		return
	}

	status := http.StatusBadGateway
	switch apiErr.Code {
	case client.CodeNotFound:
		status = http.StatusNotFound
	case client.CodeNotInGame:
		status = http.StatusNotFound
	case client.CodeRateLimited:
		status = http.StatusTooManyRequests
	}

	s.writeError(w, status, errorBody{
		Code:           string(apiErr.Code),
		Message:        apiErr.Detail,
		UpstreamStatus: apiErr.StatusCode,
	})
}

func (s *server) writeError(w http.ResponseWriter, status int, body errorBody) {
	s.writeJSON(w, status, errorResponse{Error: body})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}
