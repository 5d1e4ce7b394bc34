package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Pick is one leg's selection on a fixture.
type Pick struct {
	FixtureID uuid.UUID `json:"fixture_id"`
	LeagueID  string    `json:"league_id"`
	Selection Outcome   `json:"selection" validate:"required,oneof=H D A"`
	// ModelProb is the calibrated model probability for the chosen side.
	ModelProb float64 `json:"model_prob" validate:"gte=0,lte=1"`
	// MarketOdds is the decimal price offered for the chosen side.
	MarketOdds float64 `json:"market_odds" validate:"gt=1"`
	// Market holds the full three-way prices when available; contradiction
	// rules need the implied home probability, not just the picked side.
	Market        *MarketOdds      `json:"market,omitempty"`
	ExpectedGoals GoalExpectations `json:"expected_goals"`
}

// Validate checks the pick invariants at construction time.
func (p *Pick) Validate() error {
	if !p.Selection.Valid() {
		return ErrInvalidOutcome
	}
	if p.MarketOdds <= 1.0 {
		return fmt.Errorf("%w: got %f", ErrInvalidOdds, p.MarketOdds)
	}
	if p.ModelProb < 0 || p.ModelProb > 1 {
		return fmt.Errorf("model probability %f out of [0,1]", p.ModelProb)
	}
	return nil
}

// MarketImplied returns the margin-normalized probability the market assigns
// to the picked side, falling back to the raw inverse price when the full
// three-way market is unknown.
func (p *Pick) MarketImplied() float64 {
	if p.Market != nil && p.Market.Valid() {
		return p.Market.Implied().Get(p.Selection)
	}
	return 1.0 / p.MarketOdds
}

// PickEvaluation is the decision metadata attached to one pick.
type PickEvaluation struct {
	Pick              Pick    `json:"pick"`
	ExpectedValue     float64 `json:"expected_value"`
	OddsDampedEV      float64 `json:"odds_damped_ev"`
	ConfidenceEV      float64 `json:"confidence_ev"`
	StructuralPenalty float64 `json:"structural_penalty"`
	MarketPenalty     float64 `json:"market_penalty"`
	// Score is -Inf when HardContradiction is set.
	Score             float64 `json:"score"`
	HardContradiction bool    `json:"hard_contradiction"`
	ContradictionReason string `json:"contradiction_reason,omitempty"`
}

// TicketEvaluation is the decision metadata for a full ticket.
type TicketEvaluation struct {
	ID                 uuid.UUID        `json:"id"`
	Picks              []PickEvaluation `json:"picks"`
	Score              float64          `json:"score"`
	ContradictionCount int              `json:"contradiction_count"`
	Accepted           bool             `json:"accepted"`
	RejectionReason    string           `json:"rejection_reason,omitempty"`
	EvaluatedAt        time.Time        `json:"evaluated_at"`
}

// Selections returns the ordered outcomes of the ticket's legs, used for
// positional ticket-correlation.
func (t *TicketEvaluation) Selections() []Outcome {
	out := make([]Outcome, len(t.Picks))
	for i, p := range t.Picks {
		out[i] = p.Pick.Selection
	}
	return out
}

// SettledTicket is a historical ticket with its realized result, consumed by
// the acceptance-threshold re-estimation job.
type SettledTicket struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Score     float64   `db:"score" json:"score"`
	Won       bool      `db:"won" json:"won"`
	SettledAt time.Time `db:"settled_at" json:"settled_at"`
}
