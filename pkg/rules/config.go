package rules

// Config carries every point weight and threshold used by the scorers. The
// defaults are tuned by inspection; they are configuration, not constants, so
// deployments can override them without a code change.
type Config struct {
	Severity   SeverityCutoffs
	Smurf      SmurfWeights
	OTP        OTPWeights
	EloQuemado EloQuemadoWeights
	LowWR      LowWRWeights
	Carried    CarriedWeights
	Tilted     TiltedWeights
}

// SeverityCutoffs map a score to a severity tier: high at HighMin, medium at
// MediumMin, low above zero.
type SeverityCutoffs struct {
	MediumMin float64
	HighMin   float64
}

// Promotion upgrades high to confirmed when score, confidence, and sample
// size all clear stricter bars. Prevents "confirmed" from tiny samples.
type Promotion struct {
	MinScore         float64
	MinConfidence    float64
	MinRankedGames   int
	MinRecentMatches int
}

// SmurfWeights tune the smurf scorer.
type SmurfWeights struct {
	HighWinrate          float64 // career ranked winrate bar
	HighWinrateGames     int
	HighWinratePts       float64
	MidWinrate           float64
	MidWinrateGames      int
	MidWinratePts        float64
	VeryLowLevel         int
	VeryLowLevelPts      float64
	LowLevel             int
	LowLevelPts          float64
	HotStreakPts         float64
	FreshBloodPts        float64
	RecentWinrate        float64
	RecentWinrateMatches int
	RecentWinratePts     float64
	HighKDA              float64
	HighKDAPts           float64
	MidKDA               float64
	MidKDAPts            float64
	LaneCSPerMin         float64 // efficiency bar for non-support roles
	SupportVisionPerMin  float64 // efficiency bar for support
	EfficiencyPts        float64
	PoolDominanceShare   float64 // top champion share of recent matches
	PoolDominanceWinrate float64
	PoolDominanceGames   int
	PoolDominancePts     float64
	Promotion            Promotion
}

// OTPWeights tune the one-trick scorer.
type OTPWeights struct {
	MainShare          float64 // share of recent matches on one champion
	MainSharePts       float64
	HeavyShare         float64 // promoted further at this share
	HeavySharePts      float64
	WinrateMargin      float64 // champ winrate over overall winrate
	WinrateMarginGames int
	WinrateMarginPts   float64
	MasteryGapRatio    float64 // top1 points over top2 points
	MasteryGapPts      float64
	MinRecentForHigh   int // below this sample, severity is capped at medium
	Promotion          Promotion
}

// EloQuemadoWeights tune the burned-rank scorer.
type EloQuemadoWeights struct {
	MinRankedGames    int // hard floor: below this the scorer returns none
	HighVolume        int
	HighVolumePts     float64
	VeryHighVolume    int
	VeryHighVolumePts float64
	SubparWinrate     float64
	SubparWinratePts  float64
	BadWinrate        float64
	BadWinratePts     float64
	RecentWinrate     float64
	RecentMinMatches  int
	RecentWinratePts  float64
	LossStreak        int
	LossStreakPts     float64
}

// LowWRWeights tune the low-winrate scorer.
type LowWRWeights struct {
	RankedWinrate       float64
	RankedMinGames      int
	RankedWinratePts    float64
	BadRankedWinrate    float64
	BadRankedWinratePts float64
	RecentWinrate       float64
	RecentMinMatches    int
	RecentWinratePts    float64
	LaneCSPerMin        float64
	JungleCSPerMin      float64
	SupportVisionPerMin float64
	RoleShortfallPts    float64
	LowKDA              float64
	LowKDAPts           float64
}

// CarriedWeights tune the carried/boosted scorer.
type CarriedWeights struct {
	RankedWinrate    float64
	RankedMinGames   int
	RecentMinMatches int
	LowKDA           float64
	BasePts          float64
	VeryLowKDA       float64
	VeryLowKDAPts    float64
	HighDeaths       float64
	HighDeathsPts    float64
}

// TiltedWeights tune the tilt scorer.
type TiltedWeights struct {
	LossStreak        int
	LossStreakPts     float64
	LongLossStreak    int
	LongLossStreakPts float64
	RecentWinrate     float64
	RecentMinMatches  int
	RecentWinratePts  float64
	BadRecentWinrate  float64
	BadRecentPts      float64
}

// DefaultConfig returns the tuned default weights.
func DefaultConfig() Config {
	return Config{
		Severity: SeverityCutoffs{MediumMin: 40, HighMin: 70},
		Smurf: SmurfWeights{
			HighWinrate:          0.70,
			HighWinrateGames:     50,
			HighWinratePts:       30,
			MidWinrate:           0.60,
			MidWinrateGames:      20,
			MidWinratePts:        15,
			VeryLowLevel:         30,
			VeryLowLevelPts:      15,
			LowLevel:             50,
			LowLevelPts:          10,
			HotStreakPts:         5,
			FreshBloodPts:        5,
			RecentWinrate:        0.70,
			RecentWinrateMatches: 10,
			RecentWinratePts:     20,
			HighKDA:              5.0,
			HighKDAPts:           10,
			MidKDA:               4.0,
			MidKDAPts:            5,
			LaneCSPerMin:         8.0,
			SupportVisionPerMin:  1.5,
			EfficiencyPts:        10,
			PoolDominanceShare:   0.60,
			PoolDominanceWinrate: 0.65,
			PoolDominanceGames:   5,
			PoolDominancePts:     10,
			Promotion: Promotion{
				MinScore:         85,
				MinConfidence:    0.70,
				MinRankedGames:   30,
				MinRecentMatches: 10,
			},
		},
		OTP: OTPWeights{
			MainShare:          0.50,
			MainSharePts:       30,
			HeavyShare:         0.75,
			HeavySharePts:      15,
			WinrateMargin:      0.05,
			WinrateMarginGames: 5,
			WinrateMarginPts:   15,
			MasteryGapRatio:    2.0,
			MasteryGapPts:      20,
			MinRecentForHigh:   10,
			Promotion: Promotion{
				MinScore:         80,
				MinConfidence:    0.70,
				MinRecentMatches: 15,
			},
		},
		EloQuemado: EloQuemadoWeights{
			MinRankedGames:    120,
			HighVolume:        300,
			HighVolumePts:     25,
			VeryHighVolume:    500,
			VeryHighVolumePts: 10,
			SubparWinrate:     0.50,
			SubparWinratePts:  25,
			BadWinrate:        0.48,
			BadWinratePts:     10,
			RecentWinrate:     0.45,
			RecentMinMatches:  10,
			RecentWinratePts:  15,
			LossStreak:        3,
			LossStreakPts:     10,
		},
		LowWR: LowWRWeights{
			RankedWinrate:       0.48,
			RankedMinGames:      30,
			RankedWinratePts:    25,
			BadRankedWinrate:    0.45,
			BadRankedWinratePts: 10,
			RecentWinrate:       0.45,
			RecentMinMatches:    10,
			RecentWinratePts:    20,
			LaneCSPerMin:        5.0,
			JungleCSPerMin:      4.0,
			SupportVisionPerMin: 1.0,
			RoleShortfallPts:    15,
			LowKDA:              2.0,
			LowKDAPts:           15,
		},
		Carried: CarriedWeights{
			RankedWinrate:    0.60,
			RankedMinGames:   30,
			RecentMinMatches: 10,
			LowKDA:           2.5,
			BasePts:          40,
			VeryLowKDA:       2.0,
			VeryLowKDAPts:    15,
			HighDeaths:       7.0,
			HighDeathsPts:    10,
		},
		Tilted: TiltedWeights{
			LossStreak:        4,
			LossStreakPts:     25,
			LongLossStreak:    6,
			LongLossStreakPts: 15,
			RecentWinrate:     0.30,
			RecentMinMatches:  10,
			RecentWinratePts:  25,
			BadRecentWinrate:  0.20,
			BadRecentPts:      10,
		},
	}
}
