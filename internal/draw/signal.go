package draw

import (
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// minHeadToHeadMeetings is the minimum observed meetings before the
// head-to-head draw rate is trusted as a signal.
const minHeadToHeadMeetings = 3

// Signals carries the auxiliary inputs to the draw-proneness heuristic.
// Optional fields are pointers; a nil field is simply omitted from the
// average rather than defaulted.
type Signals struct {
	// TotalExpectedGoals is the fixture's combined goal expectancy.
	TotalExpectedGoals float64
	// MarketDrawProb is the margin-normalized draw probability from the
	// three-way market, when odds are available.
	MarketDrawProb *float64
	// WeatherExtremity is an index in [0,1]: 0 benign, 1 severe conditions.
	WeatherExtremity *float64
	// HeadToHeadDrawRate is the draw fraction over past meetings; only used
	// when HeadToHeadMeetings >= 3.
	HeadToHeadDrawRate *float64
	HeadToHeadMeetings int
	// LeagueDrawRate is the league's historical draw rate from the
	// configured prior table.
	LeagueDrawRate *float64
}

// SignalsFromFixture builds the heuristic inputs the calling layer usually
// has at hand: expectancies plus the odds snapshot, with league priors from
// an explicit table (unknown leagues just omit the term).
func SignalsFromFixture(goals models.GoalExpectations, odds *models.MarketOdds, leaguePriors map[string]float64, leagueID string) Signals {
	s := Signals{TotalExpectedGoals: goals.Total()}
	if odds != nil && odds.Valid() {
		implied := odds.Implied().Draw
		s.MarketDrawProb = &implied
	}
	if rate, ok := leaguePriors[leagueID]; ok {
		s.LeagueDrawRate = &rate
	}
	return s
}

// Compute aggregates up to five independent heuristics, each mapped to
// [0,1], into a single draw-proneness signal. Missing inputs are omitted
// from the unweighted mean; with nothing available the signal is a neutral
// 0.5.
func (s Signals) Compute() float64 {
	var sum float64
	var n int

	// Lower total expected goals means more draw-prone. 2.6 total goals is
	// treated as the neutral point of the mapping.
	if s.TotalExpectedGoals > 0 {
		sum += clamp(1.0-(s.TotalExpectedGoals-1.5)/2.5, 0, 1)
		n++
	}
	if s.MarketDrawProb != nil {
		// Market draw probabilities live in roughly [0.15, 0.40]; stretch
		// that band over [0,1].
		sum += clamp((*s.MarketDrawProb-0.15)/0.25, 0, 1)
		n++
	}
	if s.WeatherExtremity != nil {
		sum += clamp(*s.WeatherExtremity, 0, 1)
		n++
	}
	if s.HeadToHeadDrawRate != nil && s.HeadToHeadMeetings >= minHeadToHeadMeetings {
		sum += clamp(*s.HeadToHeadDrawRate, 0, 1)
		n++
	}
	if s.LeagueDrawRate != nil {
		// League draw rates cluster around 0.20-0.32; stretch similarly.
		sum += clamp((*s.LeagueDrawRate-0.15)/0.25, 0, 1)
		n++
	}

	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}
