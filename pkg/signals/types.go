// Package signals assembles per-player behavioral signal snapshots from Riot
// API data. Cheap signals come from already-fetched summaries; deep signals
// require a feature-gated aggregation over recent match history.
package signals

// PlayerSignals is an immutable per-player snapshot. Every field is optional:
// nil means "no data", which is distinct from a present zero value. That
// distinction is load-bearing for the scorers (zero ranked games and unknown
// ranked games are different facts).
type PlayerSignals struct {
	SummonerLevel     *int               `json:"summonerLevel,omitempty"`
	Ranked            *RankedSignals     `json:"ranked,omitempty"`
	CurrentChampionID *int               `json:"currentChampionId,omitempty"`
	CurrentRole       *string            `json:"currentRole,omitempty"`
	Recent            *RecentSignals     `json:"recent,omitempty"`
	ChampRecent       *ChampRecentSignals `json:"champRecent,omitempty"`
	Mastery           *MasterySignals    `json:"mastery,omitempty"`
}

// RankedSignals mirrors the player's solo-queue league entry.
type RankedSignals struct {
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"lp"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	FreshBlood   bool   `json:"freshBlood"`
	Veteran      bool   `json:"veteran"`
	Inactive     bool   `json:"inactive"`
}

// Games returns total ranked games.
func (r *RankedSignals) Games() int {
	return r.Wins + r.Losses
}

// Winrate returns the career ranked winrate in [0,1], 0 for no games.
func (r *RankedSignals) Winrate() float64 {
	games := r.Games()
	if games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(games)
}

// RecentSignals aggregates the recent match-history window.
type RecentSignals struct {
	Window    int              `json:"window"` // requested window size
	Matches   int              `json:"matches"`
	Wins      int              `json:"wins"`
	Losses    int              `json:"losses"`
	Winrate   float64          `json:"winrate"`
	Streak    StreakSignals    `json:"streak"`
	ChampPool []ChampPoolEntry `json:"champPool"`
	RolePool  []RolePoolEntry  `json:"rolePool"`
	Avg       AverageSignals   `json:"avg"`
}

// StreakSignals is the current win or loss streak, scanning backward from the
// most recent match until the result flips.
type StreakSignals struct {
	Type  string `json:"type"` // "win" or "loss"
	Count int    `json:"count"`
}

// ChampPoolEntry is one champion's share of the recent window.
type ChampPoolEntry struct {
	ChampionID int `json:"championId"`
	Games      int `json:"games"`
	Wins       int `json:"wins"`
}

// RolePoolEntry is one role's share of the recent window.
type RolePoolEntry struct {
	Role  string `json:"role"`
	Games int    `json:"games"`
}

// AverageSignals are per-game and per-minute performance averages over the
// recent window, normalized by time actually played.
type AverageSignals struct {
	KDA          float64 `json:"kda"`
	Deaths       float64 `json:"deaths"`
	CSPerMin     float64 `json:"csPerMin"`
	GoldPerMin   float64 `json:"goldPerMin"`
	DamagePerMin float64 `json:"damagePerMin"`
	VisionPerMin float64 `json:"visionPerMin"`
}

// ChampRecentSignals is the recent record on the champion currently played.
type ChampRecentSignals struct {
	ChampionID int     `json:"championId"`
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Winrate    float64 `json:"winrate"`
}

// MasterySignals carries the top champion masteries.
type MasterySignals struct {
	Top             []MasteryEntry `json:"top"`
	CurrentChampion *MasteryEntry  `json:"currentChampion,omitempty"`
}

// MasteryEntry is one champion mastery record.
type MasteryEntry struct {
	ChampionID int `json:"championId"`
	Level      int `json:"level"`
	Points     int `json:"points"`
}

// DeepSignals is the cacheable result of the match-history aggregation.
type DeepSignals struct {
	Recent      *RecentSignals      `json:"recent,omitempty"`
	ChampRecent *ChampRecentSignals `json:"champRecent,omitempty"`
}
