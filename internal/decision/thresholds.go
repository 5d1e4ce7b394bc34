// Package decision scores candidate picks and tickets: expected value with
// odds damping and confidence weighting, rule-based penalties, hard
// contradiction vetoes, and the accept/reject gate over the aggregate score.
package decision

import "fmt"

// Accept-gate defaults.
const (
	DefaultMinScore          = 0.12
	DefaultMaxContradictions = 1
	DefaultLeagueWeight      = 1.0
	// DefaultDrawEntropyPenalty scales the penalty proportional to the
	// fraction of draw picks in a ticket.
	DefaultDrawEntropyPenalty = 0.10
)

// Hard-contradiction rule constants. Chosen empirically upstream; behavioral
// parity matters, do not tune.
const (
	contradictionHomeProbVsDraw  = 0.55
	contradictionGoalGapVsDraw   = 0.45
	contradictionAwayOdds        = 3.2
	contradictionHomeProbVsAway  = 0.50
	contradictionExtremeDelta    = 0.25
)

// Structural-penalty rule constants.
const (
	structuralDrawHighOdds   = 3.6
	structuralDrawGoalGap    = 0.35
	structuralAwayHighOdds   = 3.0
	structuralPenaltyDraw    = 0.05
	structuralPenaltyAway    = 0.04
)

// Market-disagreement step penalty over |model_prob - 1/odds|.
const (
	marketDeltaLow    = 0.05
	marketDeltaMid    = 0.10
	marketDeltaHigh   = 0.20
	marketPenaltyLow  = 0.10
	marketPenaltyMid  = 0.20
	marketPenaltyHigh = 0.30
)

// softContradictionPenalty is the market-disagreement level at which a pick
// counts toward the ticket's contradiction budget without being vetoed.
const softContradictionPenalty = marketPenaltyMid

// Thresholds configures the accept/reject gate. League weights scale each
// pick's contribution to the ticket score; unknown leagues fall back to
// DefaultLeagueWeight.
type Thresholds struct {
	MinScore           float64            `mapstructure:"min_score" json:"min_score"`
	MaxContradictions  int                `mapstructure:"max_contradictions" json:"max_contradictions" validate:"gte=0"`
	DrawEntropyPenalty float64            `mapstructure:"draw_entropy_penalty" json:"draw_entropy_penalty" validate:"gte=0"`
	LeagueWeights      map[string]float64 `mapstructure:"league_weights" json:"league_weights"`
}

// DefaultThresholds returns the production accept-gate defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:           DefaultMinScore,
		MaxContradictions:  DefaultMaxContradictions,
		DrawEntropyPenalty: DefaultDrawEntropyPenalty,
		LeagueWeights:      map[string]float64{},
	}
}

// Validate rejects malformed threshold configuration.
func (t Thresholds) Validate() error {
	if t.MaxContradictions < 0 {
		return fmt.Errorf("max contradictions must be non-negative, got %d", t.MaxContradictions)
	}
	if t.DrawEntropyPenalty < 0 {
		return fmt.Errorf("draw entropy penalty must be non-negative, got %f", t.DrawEntropyPenalty)
	}
	for league, w := range t.LeagueWeights {
		if w < 0 {
			return fmt.Errorf("league weight for %s must be non-negative, got %f", league, w)
		}
	}
	return nil
}

// LeagueWeight returns the configured weight for a league, with the
// documented fallback for unknown keys.
func (t Thresholds) LeagueWeight(leagueID string) float64 {
	if w, ok := t.LeagueWeights[leagueID]; ok {
		return w
	}
	return DefaultLeagueWeight
}
