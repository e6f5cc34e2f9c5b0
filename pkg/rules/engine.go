package rules

import (
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/riftwatch/riot-insights/pkg/signals"
	"github.com/rs/zerolog"
)

// Engine runs all scorers against one signal snapshot. It holds only
// configuration, so a single instance is safe for concurrent use.
type Engine struct {
	config Config
	logger zerolog.Logger
}

// NewEngine creates an engine with the given weights.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		config: cfg,
		logger: logging.NewLogger("rules-engine"),
	}
}

// ComputeInsights scores every kind against the snapshot. The result always
// carries exactly one insight per kind, in Kinds() order, with scores in
// [0,100] and confidence in [0,1]. Deterministic for equal inputs.
//
// When the low-winrate or burned-rank insight is visible, the smurf insight
// is suppressed: a struggling account and a smurf account are contradictory
// readings of the same data, and the negative one wins.
func (e *Engine) ComputeInsights(sig signals.PlayerSignals) PlayerInsights {
	insights := []Insight{
		e.scoreSmurf(sig),
		e.scoreOTP(sig),
		e.scoreEloQuemado(sig),
		e.scoreLowWR(sig),
		e.scoreCarried(sig),
		e.scoreTilted(sig),
	}

	result := PlayerInsights{Insights: insights}

	lowWR := result.ByKind(KindLowWR)
	elo := result.ByKind(KindEloQuemado)
	if lowWR.Severity.Visible() || elo.Severity.Visible() {
		smurf := result.ByKind(KindSmurf)
		if smurf.Score > 0 {
			e.logger.Debug().
				Float64("smurf_score", smurf.Score).
				Msg("Suppressing smurf insight, contradicted by underperformance")
			smurf.Score = 0
			smurf.Severity = SeverityNone
			smurf.Reasons = []string{"suppressed: sustained underperformance contradicts a smurf reading"}
		}
	}

	scores := make(map[Kind]float64, len(insights))
	for i := range result.Insights {
		scores[result.Insights[i].Kind] = result.Insights[i].Score
	}

	smurf := result.ByKind(KindSmurf)
	result.Summary = Summary{
		Scores:         scores,
		SmurfConfirmed: smurf.Severity == SeverityConfirmed,
		SmurfProbable:  smurf.Severity == SeverityHigh || smurf.Severity == SeverityConfirmed,
	}
	return result
}

// EmptyInsights returns the zero result: one insight per kind, all scores
// zero, all severities none. Used when no signals could be assembled at all.
func EmptyInsights() PlayerInsights {
	kinds := Kinds()
	insights := make([]Insight, 0, len(kinds))
	scores := make(map[Kind]float64, len(kinds))
	for _, k := range kinds {
		insights = append(insights, Insight{Kind: k, Severity: SeverityNone, Reasons: []string{}})
		scores[k] = 0
	}
	return PlayerInsights{
		Insights: insights,
		Summary:  Summary{Scores: scores},
	}
}
