package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riftwatch/riot-insights/pkg/cache"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/riftwatch/riot-insights/pkg/riot"
	"github.com/rs/zerolog"
)

// MatchSource is the slice of the Riot endpoint client the builder needs.
type MatchSource interface {
	MatchIDsByPUUID(ctx context.Context, platform, puuid string, opts riot.MatchListOptions) ([]string, error)
	MatchByID(ctx context.Context, platform, matchID string) (*riot.Match, error)
}

// Config holds the builder configuration.
type Config struct {
	// DeepEnabled gates the match-history aggregation entirely.
	DeepEnabled bool

	// RecentCount is the match-ID window size.
	RecentCount int

	// RecentCutoff drops matches older than this from the window.
	RecentCutoff time.Duration

	// MinGameDuration filters out remakes and aborted games.
	MinGameDuration time.Duration

	// BatchSize bounds how many match details are fetched in parallel;
	// batches run sequentially.
	BatchSize int

	// Queue restricts the window to one queue (0 = all).
	Queue int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		DeepEnabled:     true,
		RecentCount:     20,
		RecentCutoff:    14 * 24 * time.Hour,
		MinGameDuration: 5 * time.Minute,
		BatchSize:       5,
	}
}

// Builder assembles PlayerSignals.
type Builder struct {
	config Config
	source MatchSource
	cache  cache.Store
	pool   *ants.Pool
	logger zerolog.Logger
}

// NewBuilder creates a signal builder. The ants pool caps in-flight match
// detail fetches at the batch size.
func NewBuilder(cfg Config, source MatchSource, store cache.Store) (*Builder, error) {
	if source == nil {
		return nil, fmt.Errorf("match source is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = 20
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MinGameDuration <= 0 {
		cfg.MinGameDuration = 5 * time.Minute
	}

	pool, err := ants.NewPool(cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Builder{
		config: cfg,
		source: source,
		cache:  store,
		pool:   pool,
		logger: logging.NewLogger("signal-builder"),
	}, nil
}

// Close releases the worker pool.
func (b *Builder) Close() {
	b.pool.Release()
}

// BuildCheap converts already-fetched profile data into PlayerSignals.
// Pure: no I/O, no failure mode beyond absent fields.
func (b *Builder) BuildCheap(summoner *riot.Summoner, entries []riot.LeagueEntry, masteries []riot.ChampionMastery, currentChampionID int, currentRole string) PlayerSignals {
	var sig PlayerSignals

	if summoner != nil {
		level := summoner.SummonerLevel
		sig.SummonerLevel = &level
	}

	if entry := riot.SoloQueueEntry(entries); entry != nil {
		sig.Ranked = &RankedSignals{
			Tier:         entry.Tier,
			Rank:         entry.Rank,
			LeaguePoints: entry.LeaguePoints,
			Wins:         entry.Wins,
			Losses:       entry.Losses,
			HotStreak:    entry.HotStreak,
			FreshBlood:   entry.FreshBlood,
			Veteran:      entry.Veteran,
			Inactive:     entry.Inactive,
		}
	}

	if currentChampionID > 0 {
		champ := currentChampionID
		sig.CurrentChampionID = &champ
	}
	if currentRole != "" {
		role := currentRole
		sig.CurrentRole = &role
	}

	if len(masteries) > 0 {
		top := make([]MasteryEntry, 0, len(masteries))
		for _, m := range masteries {
			top = append(top, MasteryEntry{
				ChampionID: m.ChampionID,
				Level:      m.ChampionLevel,
				Points:     m.ChampionPoints,
			})
		}
		ms := &MasterySignals{Top: top}
		if currentChampionID > 0 {
			for i := range top {
				if top[i].ChampionID == currentChampionID {
					entry := top[i]
					ms.CurrentChampion = &entry
					break
				}
			}
		}
		sig.Mastery = ms
	}

	return sig
}

// BuildDeep runs the feature-gated match-history aggregation. It never
// returns an error: every failure degrades to nil ("no deep signals"),
// because an insight judgment without history beats a broken lookup.
// Results are cached under (puuid, current champion, platform).
func (b *Builder) BuildDeep(ctx context.Context, platform, puuid string, currentChampionID int) *DeepSignals {
	if !b.config.DeepEnabled {
		return nil
	}

	key := fmt.Sprintf("%s:%s:%d", platform, puuid, currentChampionID)
	if data, ok := b.cache.Get(ctx, cache.NSDeepSignals, key); ok {
		var deep DeepSignals
		if err := json.Unmarshal(data, &deep); err == nil {
			return &deep
		}
	}

	opts := riot.MatchListOptions{
		Count: b.config.RecentCount,
		Queue: b.config.Queue,
	}
	if b.config.RecentCutoff > 0 {
		opts.StartTime = time.Now().Add(-b.config.RecentCutoff).Unix()
	}

	ids, err := b.source.MatchIDsByPUUID(ctx, platform, puuid, opts)
	if err != nil {
		b.logger.Warn().Err(err).Str("puuid", puuid).Msg("Match list fetch failed, skipping deep signals")
		return nil
	}
	if len(ids) == 0 {
		b.logger.Debug().Str("puuid", puuid).Msg("No recent matches in window")
		return nil
	}

	matches := b.fetchMatches(ctx, platform, ids)

	deep := b.aggregate(matches, puuid, currentChampionID)
	if deep == nil {
		b.logger.Warn().Str("puuid", puuid).Msg("No usable matches, skipping deep signals")
		return nil
	}

	if data, err := json.Marshal(deep); err == nil {
		b.cache.Set(ctx, cache.NSDeepSignals, key, data, 0)
	}

	return deep
}

// Build assembles the full signal snapshot: cheap signals plus deep signals
// when the aggregation is enabled and yields data.
func (b *Builder) Build(ctx context.Context, platform string, summoner *riot.Summoner, entries []riot.LeagueEntry, masteries []riot.ChampionMastery, currentChampionID int, currentRole string) PlayerSignals {
	sig := b.BuildCheap(summoner, entries, masteries, currentChampionID, currentRole)
	if summoner != nil {
		if deep := b.BuildDeep(ctx, platform, summoner.PUUID, currentChampionID); deep != nil {
			sig.Recent = deep.Recent
			sig.ChampRecent = deep.ChampRecent
		}
	}
	return sig
}

// fetchMatches retrieves match details in bounded batches: parallel within a
// batch through the worker pool, sequential across batches. Individual
// failures leave a nil slot and are skipped by the aggregation.
func (b *Builder) fetchMatches(ctx context.Context, platform string, ids []string) []*riot.Match {
	out := make([]*riot.Match, len(ids))

	for start := 0; start < len(ids); start += b.config.BatchSize {
		end := start + b.config.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			if err := b.pool.Submit(func() {
				defer wg.Done()
				m, err := b.source.MatchByID(ctx, platform, ids[i])
				if err != nil {
					b.logger.Warn().Err(err).Str("match_id", ids[i]).Msg("Match fetch failed, skipping")
					return
				}
				out[i] = m
			}); err != nil {
				wg.Done()
				b.logger.Warn().Err(err).Str("match_id", ids[i]).Msg("Worker pool submit failed, skipping")
			}
		}
		wg.Wait()
	}

	return out
}

// aggregate folds fetched matches into deep signals. The input order is most
// recent first, which the streak scan relies on.
func (b *Builder) aggregate(matches []*riot.Match, puuid string, currentChampionID int) *DeepSignals {
	minSecs := int64(b.config.MinGameDuration / time.Second)

	type line struct {
		p *riot.Participant
		m *riot.Match
	}
	var lines []line
	for _, m := range matches {
		if m == nil {
			continue
		}
		if m.Info.GameDuration < minSecs {
			// Remake or aborted game.
			continue
		}
		p := m.FindParticipant(puuid)
		if p == nil {
			continue
		}
		lines = append(lines, line{p: p, m: m})
	}
	if len(lines) == 0 {
		return nil
	}

	recent := &RecentSignals{Window: b.config.RecentCount, Matches: len(lines)}

	var kills, deaths, assists, cs, gold, damage, vision int
	var minutes float64
	champStats := make(map[int]*ChampPoolEntry)
	roleStats := make(map[string]int)

	for _, l := range lines {
		if l.p.Win {
			recent.Wins++
		} else {
			recent.Losses++
		}

		kills += l.p.Kills
		deaths += l.p.Deaths
		assists += l.p.Assists
		cs += l.p.CS()
		gold += l.p.GoldEarned
		damage += l.p.TotalDamageDealtToChampions
		vision += l.p.VisionScore

		secs := int64(l.p.TimePlayed)
		if secs <= 0 {
			secs = l.m.Info.GameDuration
		}
		minutes += float64(secs) / 60

		entry, ok := champStats[l.p.ChampionID]
		if !ok {
			entry = &ChampPoolEntry{ChampionID: l.p.ChampionID}
			champStats[l.p.ChampionID] = entry
		}
		entry.Games++
		if l.p.Win {
			entry.Wins++
		}

		if l.p.TeamPosition != "" {
			roleStats[l.p.TeamPosition]++
		}
	}

	recent.Winrate = float64(recent.Wins) / float64(recent.Matches)

	// Current streak: scan from most recent backward until the type flips.
	streakType := "loss"
	if lines[0].p.Win {
		streakType = "win"
	}
	count := 0
	for _, l := range lines {
		if l.p.Win == (streakType == "win") {
			count++
		} else {
			break
		}
	}
	recent.Streak = StreakSignals{Type: streakType, Count: count}

	for _, entry := range champStats {
		recent.ChampPool = append(recent.ChampPool, *entry)
	}
	sort.Slice(recent.ChampPool, func(i, j int) bool {
		if recent.ChampPool[i].Games != recent.ChampPool[j].Games {
			return recent.ChampPool[i].Games > recent.ChampPool[j].Games
		}
		return recent.ChampPool[i].ChampionID < recent.ChampPool[j].ChampionID
	})

	for role, games := range roleStats {
		recent.RolePool = append(recent.RolePool, RolePoolEntry{Role: role, Games: games})
	}
	sort.Slice(recent.RolePool, func(i, j int) bool {
		if recent.RolePool[i].Games != recent.RolePool[j].Games {
			return recent.RolePool[i].Games > recent.RolePool[j].Games
		}
		return recent.RolePool[i].Role < recent.RolePool[j].Role
	})

	games := float64(len(lines))
	effDeaths := deaths
	if effDeaths == 0 {
		effDeaths = 1
	}
	recent.Avg = AverageSignals{
		KDA:    float64(kills+assists) / float64(effDeaths),
		Deaths: float64(deaths) / games,
	}
	if minutes > 0 {
		recent.Avg.CSPerMin = float64(cs) / minutes
		recent.Avg.GoldPerMin = float64(gold) / minutes
		recent.Avg.DamagePerMin = float64(damage) / minutes
		recent.Avg.VisionPerMin = float64(vision) / minutes
	}

	deep := &DeepSignals{Recent: recent}

	if currentChampionID > 0 {
		if entry, ok := champStats[currentChampionID]; ok && entry.Games > 0 {
			deep.ChampRecent = &ChampRecentSignals{
				ChampionID: currentChampionID,
				Games:      entry.Games,
				Wins:       entry.Wins,
				Losses:     entry.Games - entry.Wins,
				Winrate:    float64(entry.Wins) / float64(entry.Games),
			}
		}
	}

	return deep
}
