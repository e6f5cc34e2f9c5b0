// Package rules converts cached player signals into confidence-scored
// behavioral insights. Everything here is pure: no I/O, no hidden state, and
// total over the input domain including fully-absent signals.
package rules

// Kind identifies one behavioral insight.
type Kind string

const (
	KindSmurf      Kind = "SMURF"
	KindOTP        Kind = "OTP"
	KindEloQuemado Kind = "ELO_QUEMADO"
	KindLowWR      Kind = "LOW_WR"
	KindCarried    Kind = "CARRIED"
	KindTilted     Kind = "TILTED"
)

// Kinds returns all insight kinds in presentation order.
func Kinds() []Kind {
	return []Kind{KindSmurf, KindOTP, KindEloQuemado, KindLowWR, KindCarried, KindTilted}
}

// Severity tiers an insight for presentation.
type Severity string

const (
	SeverityNone      Severity = "none"
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityConfirmed Severity = "confirmed"
)

// Visible reports whether the severity is above "low".
func (s Severity) Visible() bool {
	return s == SeverityMedium || s == SeverityHigh || s == SeverityConfirmed
}

// Sample records how much data backed a score.
type Sample struct {
	RankedGames   int `json:"rankedGames,omitempty"`
	RecentMatches int `json:"recentMatches,omitempty"`
	ChampMatches  int `json:"champMatches,omitempty"`
}

// Insight is one scored behavioral judgment. Score is always in [0,100] and
// Confidence in [0,1], even when every input signal is absent.
type Insight struct {
	Kind       Kind     `json:"kind"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Severity   Severity `json:"severity"`
	Reasons    []string `json:"reasons"`
	Sample     Sample   `json:"sample"`
}

// Summary exposes derived booleans alongside each kind's raw score.
type Summary struct {
	Scores         map[Kind]float64 `json:"scores"`
	SmurfConfirmed bool             `json:"smurfConfirmed"`
	SmurfProbable  bool             `json:"smurfProbable"`
}

// PlayerInsights is the full result: always exactly one Insight per kind.
type PlayerInsights struct {
	Insights []Insight `json:"insights"`
	Summary  Summary   `json:"summary"`
}

// ByKind returns the insight for a kind, or nil.
func (p *PlayerInsights) ByKind(kind Kind) *Insight {
	for i := range p.Insights {
		if p.Insights[i].Kind == kind {
			return &p.Insights[i]
		}
	}
	return nil
}
