package rules

import (
	"fmt"

	"github.com/riftwatch/riot-insights/pkg/signals"
)

// Full-confidence sample sizes: confidence ratios saturate at these counts.
const (
	fullConfidenceRanked = 30
	fullConfidenceRecent = 10
)

// ratio maps a sample size to an availability ratio in [0,1].
func ratio(n, full int) float64 {
	if n <= 0 || full <= 0 {
		return 0
	}
	r := float64(n) / float64(full)
	if r > 1 {
		return 1
	}
	return r
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// severityFor maps a clamped score to a severity tier.
func (e *Engine) severityFor(score float64) Severity {
	switch {
	case score >= e.config.Severity.HighMin:
		return SeverityHigh
	case score >= e.config.Severity.MediumMin:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// effectiveRole picks the current role, falling back to the most-played
// recent role when the live game gives none.
func effectiveRole(sig signals.PlayerSignals) string {
	if sig.CurrentRole != nil {
		return *sig.CurrentRole
	}
	if sig.Recent != nil && len(sig.Recent.RolePool) > 0 {
		return sig.Recent.RolePool[0].Role
	}
	return ""
}

const roleSupport = "UTILITY"

func sampleOf(sig signals.PlayerSignals) Sample {
	var s Sample
	if sig.Ranked != nil {
		s.RankedGames = sig.Ranked.Games()
	}
	if sig.Recent != nil {
		s.RecentMatches = sig.Recent.Matches
	}
	if sig.ChampRecent != nil {
		s.ChampMatches = sig.ChampRecent.Games
	}
	return s
}

// scoreSmurf detects experienced players on low-visibility accounts: high
// winrate at volume, low account level, fresh-account flags, and recent
// performance far above the account's apparent standing.
func (e *Engine) scoreSmurf(sig signals.PlayerSignals) Insight {
	w := e.config.Smurf
	ins := Insight{Kind: KindSmurf, Reasons: []string{}, Sample: sampleOf(sig)}
	var score float64

	if r := sig.Ranked; r != nil {
		games, wr := r.Games(), r.Winrate()
		switch {
		case games >= w.HighWinrateGames && wr >= w.HighWinrate:
			score += w.HighWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("ranked winrate %.0f%% over %d games", wr*100, games))
		case games >= w.MidWinrateGames && wr >= w.MidWinrate:
			score += w.MidWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("ranked winrate %.0f%% over %d games", wr*100, games))
		}
		if r.HotStreak {
			score += w.HotStreakPts
			ins.Reasons = append(ins.Reasons, "on a ranked hot streak")
		}
		if r.FreshBlood {
			score += w.FreshBloodPts
			ins.Reasons = append(ins.Reasons, "fresh blood in its league")
		}
	}

	if lvl := sig.SummonerLevel; lvl != nil {
		switch {
		case *lvl <= w.VeryLowLevel:
			score += w.VeryLowLevelPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("account level %d", *lvl))
		case *lvl <= w.LowLevel:
			score += w.LowLevelPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("account level %d", *lvl))
		}
	}

	if rec := sig.Recent; rec != nil {
		if rec.Matches >= w.RecentWinrateMatches && rec.Winrate >= w.RecentWinrate {
			score += w.RecentWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("recent winrate %.0f%% over %d matches", rec.Winrate*100, rec.Matches))
		}
		switch {
		case rec.Avg.KDA >= w.HighKDA:
			score += w.HighKDAPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("average KDA %.1f", rec.Avg.KDA))
		case rec.Avg.KDA >= w.MidKDA:
			score += w.MidKDAPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("average KDA %.1f", rec.Avg.KDA))
		}

		if role := effectiveRole(sig); role == roleSupport {
			if rec.Avg.VisionPerMin >= w.SupportVisionPerMin {
				score += w.EfficiencyPts
				ins.Reasons = append(ins.Reasons, fmt.Sprintf("vision score %.1f/min as support", rec.Avg.VisionPerMin))
			}
		} else if rec.Avg.CSPerMin >= w.LaneCSPerMin {
			score += w.EfficiencyPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("%.1f CS/min", rec.Avg.CSPerMin))
		}

		if len(rec.ChampPool) > 0 && rec.Matches > 0 {
			top := rec.ChampPool[0]
			share := float64(top.Games) / float64(rec.Matches)
			topWR := 0.0
			if top.Games > 0 {
				topWR = float64(top.Wins) / float64(top.Games)
			}
			if top.Games >= w.PoolDominanceGames && share >= w.PoolDominanceShare && topWR >= w.PoolDominanceWinrate {
				score += w.PoolDominancePts
				ins.Reasons = append(ins.Reasons, fmt.Sprintf("%.0f%% of recent games on one champion at %.0f%% winrate", share*100, topWR*100))
			}
		}
	}

	ins.Score = clampScore(score)

	masteryAvail := 0.0
	if sig.Mastery != nil {
		masteryAvail = 1
	}
	ins.Confidence = 0.5*ratio(ins.Sample.RankedGames, fullConfidenceRanked) +
		0.35*ratio(ins.Sample.RecentMatches, fullConfidenceRecent) +
		0.15*masteryAvail

	ins.Severity = e.severityFor(ins.Score)
	if ins.Severity == SeverityHigh {
		p := w.Promotion
		if ins.Score >= p.MinScore && ins.Confidence >= p.MinConfidence &&
			ins.Sample.RankedGames >= p.MinRankedGames && ins.Sample.RecentMatches >= p.MinRecentMatches {
			ins.Severity = SeverityConfirmed
		}
	}
	return ins
}

// scoreOTP detects one-trick play: one champion dominating the recent window,
// outperformance on that champion, and a mastery-point cliff after it.
func (e *Engine) scoreOTP(sig signals.PlayerSignals) Insight {
	w := e.config.OTP
	ins := Insight{Kind: KindOTP, Reasons: []string{}, Sample: sampleOf(sig)}
	var score float64

	if rec := sig.Recent; rec != nil && rec.Matches > 0 && len(rec.ChampPool) > 0 {
		top := rec.ChampPool[0]
		share := float64(top.Games) / float64(rec.Matches)
		if share >= w.MainShare {
			score += w.MainSharePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("%d of %d recent matches on one champion", top.Games, rec.Matches))
		}
		if share >= w.HeavyShare {
			score += w.HeavySharePts
			ins.Reasons = append(ins.Reasons, "champion pool is effectively a single pick")
		}

		if cr := sig.ChampRecent; cr != nil && cr.Games >= w.WinrateMarginGames {
			if cr.Winrate-rec.Winrate >= w.WinrateMargin {
				score += w.WinrateMarginPts
				ins.Reasons = append(ins.Reasons, fmt.Sprintf("winrate on main %.0f%% vs %.0f%% overall", cr.Winrate*100, rec.Winrate*100))
			}
		}
	}

	if m := sig.Mastery; m != nil && len(m.Top) >= 2 && m.Top[1].Points > 0 {
		gap := float64(m.Top[0].Points) / float64(m.Top[1].Points)
		if gap >= w.MasteryGapRatio {
			score += w.MasteryGapPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("top mastery %.1fx the second champion", gap))
		}
	}

	ins.Score = clampScore(score)
	ins.Confidence = 0.7*ratio(ins.Sample.RecentMatches, fullConfidenceRecent) +
		0.3*boolRatio(sig.Mastery != nil)

	ins.Severity = e.severityFor(ins.Score)
	// Small samples cannot reach high severity.
	if ins.Severity == SeverityHigh && ins.Sample.RecentMatches < w.MinRecentForHigh {
		ins.Severity = SeverityMedium
	}
	if ins.Severity == SeverityHigh {
		p := w.Promotion
		if ins.Score >= p.MinScore && ins.Confidence >= p.MinConfidence &&
			ins.Sample.RecentMatches >= p.MinRecentMatches {
			ins.Severity = SeverityConfirmed
		}
	}
	return ins
}

// scoreEloQuemado detects burned-out ranked grinding: huge game volume stuck
// below 50%, compounded by a poor recent window or an active losing streak.
// Below the minimum-games floor the scorer returns none outright.
func (e *Engine) scoreEloQuemado(sig signals.PlayerSignals) Insight {
	w := e.config.EloQuemado
	ins := Insight{Kind: KindEloQuemado, Severity: SeverityNone, Reasons: []string{}, Sample: sampleOf(sig)}

	r := sig.Ranked
	if r == nil || r.Games() < w.MinRankedGames {
		return ins
	}

	var score float64
	games, wr := r.Games(), r.Winrate()

	if games >= w.HighVolume {
		score += w.HighVolumePts
		ins.Reasons = append(ins.Reasons, fmt.Sprintf("%d ranked games this season", games))
	}
	if games >= w.VeryHighVolume {
		score += w.VeryHighVolumePts
		ins.Reasons = append(ins.Reasons, "extreme ranked volume")
	}
	if wr < w.SubparWinrate {
		score += w.SubparWinratePts
		ins.Reasons = append(ins.Reasons, fmt.Sprintf("career winrate %.0f%% at that volume", wr*100))
	}
	if wr < w.BadWinrate {
		score += w.BadWinratePts
		ins.Reasons = append(ins.Reasons, "winrate well below break-even")
	}

	if rec := sig.Recent; rec != nil {
		if rec.Matches >= w.RecentMinMatches && rec.Winrate < w.RecentWinrate {
			score += w.RecentWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("recent winrate %.0f%%", rec.Winrate*100))
		}
		if rec.Streak.Type == "loss" && rec.Streak.Count >= w.LossStreak {
			score += w.LossStreakPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("on a %d-game losing streak", rec.Streak.Count))
		}
	}

	ins.Score = clampScore(score)
	ins.Confidence = ratio(games, 200)
	ins.Severity = e.severityFor(ins.Score)
	return ins
}

// scoreLowWR detects plain underperformance: low winrates at moderate volume
// with role-aware metric shortfalls.
func (e *Engine) scoreLowWR(sig signals.PlayerSignals) Insight {
	w := e.config.LowWR
	ins := Insight{Kind: KindLowWR, Reasons: []string{}, Sample: sampleOf(sig)}
	var score float64

	if r := sig.Ranked; r != nil {
		games, wr := r.Games(), r.Winrate()
		if games >= w.RankedMinGames && wr < w.RankedWinrate {
			score += w.RankedWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("ranked winrate %.0f%% over %d games", wr*100, games))
			if wr < w.BadRankedWinrate {
				score += w.BadRankedWinratePts
			}
		}
	}

	if rec := sig.Recent; rec != nil {
		if rec.Matches >= w.RecentMinMatches && rec.Winrate < w.RecentWinrate {
			score += w.RecentWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("recent winrate %.0f%%", rec.Winrate*100))
		}

		if rec.Matches >= w.RecentMinMatches {
			switch role := effectiveRole(sig); role {
			case roleSupport:
				if rec.Avg.VisionPerMin > 0 && rec.Avg.VisionPerMin < w.SupportVisionPerMin {
					score += w.RoleShortfallPts
					ins.Reasons = append(ins.Reasons, fmt.Sprintf("vision score %.1f/min as support", rec.Avg.VisionPerMin))
				}
			case "JUNGLE":
				if rec.Avg.CSPerMin > 0 && rec.Avg.CSPerMin < w.JungleCSPerMin {
					score += w.RoleShortfallPts
					ins.Reasons = append(ins.Reasons, fmt.Sprintf("%.1f CS/min in the jungle", rec.Avg.CSPerMin))
				}
			case "TOP", "MIDDLE", "BOTTOM":
				if rec.Avg.CSPerMin > 0 && rec.Avg.CSPerMin < w.LaneCSPerMin {
					score += w.RoleShortfallPts
					ins.Reasons = append(ins.Reasons, fmt.Sprintf("%.1f CS/min in lane", rec.Avg.CSPerMin))
				}
			}

			if rec.Avg.KDA > 0 && rec.Avg.KDA < w.LowKDA {
				score += w.LowKDAPts
				ins.Reasons = append(ins.Reasons, fmt.Sprintf("average KDA %.1f", rec.Avg.KDA))
			}
		}
	}

	ins.Score = clampScore(score)
	ins.Confidence = 0.6*ratio(ins.Sample.RankedGames, 40) +
		0.4*ratio(ins.Sample.RecentMatches, fullConfidenceRecent)
	ins.Severity = e.severityFor(ins.Score)
	return ins
}

// scoreCarried detects winning without strong individual performance.
func (e *Engine) scoreCarried(sig signals.PlayerSignals) Insight {
	w := e.config.Carried
	ins := Insight{Kind: KindCarried, Reasons: []string{}, Sample: sampleOf(sig)}
	var score float64

	r, rec := sig.Ranked, sig.Recent
	if r != nil && rec != nil &&
		r.Games() >= w.RankedMinGames && r.Winrate() >= w.RankedWinrate &&
		rec.Matches >= w.RecentMinMatches && rec.Avg.KDA > 0 && rec.Avg.KDA < w.LowKDA {
		score += w.BasePts
		ins.Reasons = append(ins.Reasons, fmt.Sprintf("ranked winrate %.0f%% with average KDA %.1f", r.Winrate()*100, rec.Avg.KDA))

		if rec.Avg.KDA < w.VeryLowKDA {
			score += w.VeryLowKDAPts
			ins.Reasons = append(ins.Reasons, "individual performance far below the winrate")
		}
		if rec.Avg.Deaths >= w.HighDeaths {
			score += w.HighDeathsPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("%.1f deaths per game", rec.Avg.Deaths))
		}
	}

	ins.Score = clampScore(score)
	ins.Confidence = 0.5*ratio(ins.Sample.RankedGames, fullConfidenceRanked) +
		0.5*ratio(ins.Sample.RecentMatches, fullConfidenceRecent)
	ins.Severity = e.severityFor(ins.Score)
	return ins
}

// scoreTilted detects an active downward spiral: a long current loss streak
// and a depressed recent winrate.
func (e *Engine) scoreTilted(sig signals.PlayerSignals) Insight {
	w := e.config.Tilted
	ins := Insight{Kind: KindTilted, Reasons: []string{}, Sample: sampleOf(sig)}
	var score float64

	if rec := sig.Recent; rec != nil {
		if rec.Streak.Type == "loss" && rec.Streak.Count >= w.LossStreak {
			score += w.LossStreakPts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("on a %d-game losing streak", rec.Streak.Count))
			if rec.Streak.Count >= w.LongLossStreak {
				score += w.LongLossStreakPts
			}
		}
		if rec.Matches >= w.RecentMinMatches && rec.Winrate <= w.RecentWinrate {
			score += w.RecentWinratePts
			ins.Reasons = append(ins.Reasons, fmt.Sprintf("recent winrate %.0f%% over %d matches", rec.Winrate*100, rec.Matches))
			if rec.Winrate <= w.BadRecentWinrate {
				score += w.BadRecentPts
			}
		}
	}

	ins.Score = clampScore(score)
	ins.Confidence = ratio(ins.Sample.RecentMatches, fullConfidenceRecent)
	ins.Severity = e.severityFor(ins.Score)
	return ins
}

func boolRatio(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
