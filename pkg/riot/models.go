package riot

// Account is a Riot account from the Account-V1 API.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is a player profile from the Summoner-V4 API.
type Summoner struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntry is one ranked queue entry from the League-V4 API.
type LeagueEntry struct {
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	FreshBlood   bool   `json:"freshBlood"`
	Veteran      bool   `json:"veteran"`
	Inactive     bool   `json:"inactive"`
}

// QueueRankedSolo is the queueType of the solo/duo ladder.
const QueueRankedSolo = "RANKED_SOLO_5x5"

// SoloQueueEntry picks the solo/duo entry out of a league entry list.
func SoloQueueEntry(entries []LeagueEntry) *LeagueEntry {
	for i := range entries {
		if entries[i].QueueType == QueueRankedSolo {
			return &entries[i]
		}
	}
	return nil
}

// ChampionMastery is one champion mastery record.
type ChampionMastery struct {
	ChampionID     int   `json:"championId"`
	ChampionLevel  int   `json:"championLevel"`
	ChampionPoints int   `json:"championPoints"`
	LastPlayTime   int64 `json:"lastPlayTime"`
}

// CurrentGameInfo is a live-game snapshot from the Spectator-V5 API.
type CurrentGameInfo struct {
	GameID            int64                    `json:"gameId"`
	GameType          string                   `json:"gameType"`
	GameStartTime     int64                    `json:"gameStartTime"`
	GameLength        int64                    `json:"gameLength"`
	PlatformID        string                   `json:"platformId"`
	GameMode          string                   `json:"gameMode"`
	GameQueueConfigID int64                    `json:"gameQueueConfigId"`
	Participants      []CurrentGameParticipant `json:"participants"`
}

// CurrentGameParticipant is one player in a live game.
type CurrentGameParticipant struct {
	PUUID      string `json:"puuid"`
	SummonerID string `json:"summonerId"`
	ChampionID int    `json:"championId"`
	TeamID     int    `json:"teamId"`
	Bot        bool   `json:"bot"`
}

// FindParticipant locates a live-game participant by PUUID.
func (g *CurrentGameInfo) FindParticipant(puuid string) *CurrentGameParticipant {
	for i := range g.Participants {
		if g.Participants[i].PUUID == puuid {
			return &g.Participants[i]
		}
	}
	return nil
}

// Match is a finished game from the Match-V5 API.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata contains match identifiers.
type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

// MatchInfo contains detailed match information.
type MatchInfo struct {
	GameCreation     int64         `json:"gameCreation"` // Unix ms
	GameDuration     int64         `json:"gameDuration"` // seconds
	GameEndTimestamp int64         `json:"gameEndTimestamp"`
	GameMode         string        `json:"gameMode"`
	QueueID          int           `json:"queueId"`
	Participants     []Participant `json:"participants"`
}

// Participant is one player's line in a finished match.
type Participant struct {
	PUUID                       string `json:"puuid"`
	ChampionID                  int    `json:"championId"`
	ChampionName                string `json:"championName"`
	TeamID                      int    `json:"teamId"`
	TeamPosition                string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Win                         bool   `json:"win"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	GoldEarned                  int    `json:"goldEarned"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
	VisionScore                 int    `json:"visionScore"`
	TimePlayed                  int    `json:"timePlayed"` // seconds
}

// FindParticipant locates a match participant by PUUID.
func (m *Match) FindParticipant(puuid string) *Participant {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == puuid {
			return &m.Info.Participants[i]
		}
	}
	return nil
}

// CS returns lane plus jungle minions killed.
func (p *Participant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}
