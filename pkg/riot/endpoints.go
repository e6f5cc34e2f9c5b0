package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/riftwatch/riot-insights/pkg/cache"
	"github.com/riftwatch/riot-insights/pkg/client"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/riftwatch/riot-insights/pkg/scheduler"
	"github.com/rs/zerolog"
)

// Client binds the HTTP client and the cache into typed endpoint wrappers.
// Every wrapper is: cache get → (on miss) fetch → cache set → decode.
type Client struct {
	http   *client.Client
	cache  cache.Store
	logger zerolog.Logger
}

// NewClient creates the endpoint wrapper client.
func NewClient(httpClient *client.Client, store cache.Store) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	return &Client{
		http:   httpClient,
		cache:  store,
		logger: logging.NewLogger("riot-endpoints"),
	}, nil
}

// fetchCached implements the shared wrapper pattern. Raw response bytes are
// cached; payloads are decoded at this boundary so shape mismatches surface
// here and are never cached.
func fetchCached[T any](ctx context.Context, c *Client, ns, key, rawURL string, lane scheduler.Lane) (T, error) {
	var out T

	if data, ok := c.cache.Get(ctx, ns, key); ok {
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		// Corrupt entry; fall through to a fresh fetch.
		c.logger.Warn().Str("namespace", ns).Str("key", key).Msg("Discarding undecodable cache entry")
	}

	body, err := c.http.Fetch(ctx, rawURL, client.FetchOptions{Lane: lane})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &client.APIError{
			Endpoint: rawURL,
			Code:     client.CodeUnknown,
			Detail:   "malformed response payload",
			Err:      err,
		}
	}

	c.cache.Set(ctx, ns, key, body, 0)
	return out, nil
}

// AccountByRiotID resolves a Riot ID (gameName#tagLine) to an account.
// Interactive lane: this is the entry point of every user-facing lookup.
func (c *Client) AccountByRiotID(ctx context.Context, platform, gameName, tagLine string) (*Account, error) {
	host, err := AccountRegionHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		host, url.PathEscape(gameName), url.PathEscape(tagLine))
	key := fmt.Sprintf("%s:%s#%s", platform, strings.ToLower(gameName), strings.ToLower(tagLine))

	acct, err := fetchCached[Account](ctx, c, cache.NSAccount, key, u, scheduler.LaneInteractive)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// AccountByPUUID is the reverse identity lookup: PUUID to Riot ID.
func (c *Client) AccountByPUUID(ctx context.Context, platform, puuid string) (*Account, error) {
	host, err := AccountRegionHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s", host, puuid)
	key := fmt.Sprintf("%s:%s", platform, puuid)

	acct, err := fetchCached[Account](ctx, c, cache.NSAccount, key, u, scheduler.LaneInteractive)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// SummonerByPUUID fetches the summoner profile on the player's platform.
func (c *Client) SummonerByPUUID(ctx context.Context, platform, puuid string) (*Summoner, error) {
	host, err := PlatformHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", host, puuid)
	key := fmt.Sprintf("%s:%s", platform, puuid)

	s, err := fetchCached[Summoner](ctx, c, cache.NSSummoner, key, u, scheduler.LaneInteractive)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LeagueEntriesByPUUID fetches all ranked queue entries for a player.
func (c *Client) LeagueEntriesByPUUID(ctx context.Context, platform, puuid string) ([]LeagueEntry, error) {
	host, err := PlatformHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", host, puuid)
	key := fmt.Sprintf("%s:%s", platform, puuid)

	return fetchCached[[]LeagueEntry](ctx, c, cache.NSLeague, key, u, scheduler.LaneInteractive)
}

// MasteriesByPUUID fetches the player's top champion masteries.
func (c *Client) MasteriesByPUUID(ctx context.Context, platform, puuid string, count int) ([]ChampionMastery, error) {
	if count <= 0 {
		count = 10
	}
	host, err := PlatformHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d", host, puuid, count)
	key := fmt.Sprintf("%s:%s:%d", platform, puuid, count)

	return fetchCached[[]ChampionMastery](ctx, c, cache.NSMastery, key, u, scheduler.LaneInteractive)
}

// ActiveGameByPUUID fetches the live-game snapshot. A 404 here means the
// player is not in game; a degraded spectator service surfaces as
// SPECTATOR_UNAVAILABLE. Both mappings happen at this boundary per the error
// taxonomy, not inside the HTTP client.
func (c *Client) ActiveGameByPUUID(ctx context.Context, platform, puuid string) (*CurrentGameInfo, error) {
	host, err := PlatformHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/lol/spectator/v5/active-games/by-summoner/%s", host, puuid)
	key := fmt.Sprintf("%s:%s", platform, puuid)

	game, err := fetchCached[CurrentGameInfo](ctx, c, cache.NSSpectator, key, u, scheduler.LaneInteractive)
	if err != nil {
		return nil, remapSpectatorError(err)
	}
	return &game, nil
}

func remapSpectatorError(err error) error {
	apiErr, ok := err.(*client.APIError)
	if !ok {
		return err
	}
	switch apiErr.Code {
	case client.CodeNotFound:
		return &client.APIError{
			StatusCode: apiErr.StatusCode,
			Endpoint:   apiErr.Endpoint,
			Code:       client.CodeNotInGame,
			Detail:     "player is not in an active game",
			Err:        apiErr,
		}
	case client.CodeUnknown, client.CodeNetworkError:
		return &client.APIError{
			StatusCode: apiErr.StatusCode,
			Endpoint:   apiErr.Endpoint,
			Code:       client.CodeSpectatorUnavailable,
			Detail:     "spectator service degraded",
			Err:        apiErr,
		}
	default:
		return err
	}
}

// MatchListOptions bound the match-ID window fetch.
type MatchListOptions struct {
	Count     int
	Queue     int   // 0 means all queues
	StartTime int64 // Unix seconds; 0 means no cutoff
}

// MatchIDsByPUUID fetches recent match identifiers. Bulk lane: this feeds
// history backfills, never user-facing lookups.
func (c *Client) MatchIDsByPUUID(ctx context.Context, platform, puuid string, opts MatchListOptions) ([]string, error) {
	if opts.Count <= 0 {
		opts.Count = 20
	}
	if opts.Count > 100 {
		opts.Count = 100
	}
	host, err := MatchRegionHost(platform)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("count", fmt.Sprintf("%d", opts.Count))
	if opts.Queue > 0 {
		q.Set("queue", fmt.Sprintf("%d", opts.Queue))
	}
	if opts.StartTime > 0 {
		q.Set("startTime", fmt.Sprintf("%d", opts.StartTime))
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s", host, puuid, q.Encode())
	key := fmt.Sprintf("%s:%s:%s", platform, puuid, q.Encode())

	return fetchCached[[]string](ctx, c, cache.NSMatchList, key, u, scheduler.LaneBulk)
}

// MatchByID fetches one finished match. Bulk lane; match details are
// effectively immutable, so the cache TTL is long.
func (c *Client) MatchByID(ctx context.Context, platform, matchID string) (*Match, error) {
	host, err := MatchRegionHost(platform)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", host, matchID)

	m, err := fetchCached[Match](ctx, c, cache.NSMatch, matchID, u, scheduler.LaneBulk)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
