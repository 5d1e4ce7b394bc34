package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketOdds holds margin-bearing decimal odds for a three-way market.
type MarketOdds struct {
	Home float64 `db:"home_odds" json:"home" validate:"gt=1"`
	Draw float64 `db:"draw_odds" json:"draw" validate:"gt=1"`
	Away float64 `db:"away_odds" json:"away" validate:"gt=1"`
}

// Valid reports whether all three prices are usable decimal odds.
func (m MarketOdds) Valid() bool {
	return m.Home > 1.0 && m.Draw > 1.0 && m.Away > 1.0
}

// Implied returns the margin-normalized fair probabilities for the market,
// stripping the bookmaker overround.
func (m MarketOdds) Implied() OutcomeProbabilities {
	rawH := 1.0 / m.Home
	rawD := 1.0 / m.Draw
	rawA := 1.0 / m.Away
	total := rawH + rawD + rawA
	return OutcomeProbabilities{
		Home: rawH / total,
		Draw: rawD / total,
		Away: rawA / total,
	}
}

// Fixture describes one scheduled match with the auxiliary features the
// correlation model consumes. Odds and signals are snapshots fetched once
// per request by the calling layer.
type Fixture struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	LeagueID     string      `db:"league_id" json:"league_id" validate:"required"`
	HomeTeamID   string      `db:"home_team_id" json:"home_team_id"`
	AwayTeamID   string      `db:"away_team_id" json:"away_team_id"`
	KickoffTime  time.Time   `db:"kickoff_time" json:"kickoff_time"`
	Odds         *MarketOdds `json:"odds,omitempty"`
	DrawSignal   float64     `json:"draw_signal" validate:"gte=0,lte=1"`
	ExpectedGoals GoalExpectations `json:"expected_goals"`
}
