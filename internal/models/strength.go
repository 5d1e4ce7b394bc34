package models

// TeamStrength is a team's offensive/defensive rating on a log scale at a
// point in time. Zero values are neutral (multiplicative 1.0), so an unknown
// team can be modeled without erroring.
type TeamStrength struct {
	TeamID   string  `db:"team_id" json:"team_id"`
	LeagueID string  `db:"league_id" json:"league_id"`
	Attack   float64 `db:"attack" json:"attack"`
	Defense  float64 `db:"defense" json:"defense"`
}

// NeutralStrength returns the default rating used when a team is unknown.
func NeutralStrength(teamID string) TeamStrength {
	return TeamStrength{TeamID: teamID}
}

// ModelParameters holds the global tunables of the goal-expectancy model.
// They are produced by an external training process and read-only here.
type ModelParameters struct {
	// Rho is the Dixon-Coles low-score dependency correction,
	// typically in [-0.15, 0.1].
	Rho float64 `db:"rho" json:"rho" validate:"gte=-0.5,lte=0.5"`
	// TimeDecay is the exponential down-weighting rate (xi) applied by the
	// external trainer to older fixtures. Carried for provenance; the core
	// does not consume it directly.
	TimeDecay float64 `db:"time_decay" json:"time_decay" validate:"gte=0"`
	// HomeAdvantage is the additive log-scale boost (gamma) to the home
	// side's goal expectancy.
	HomeAdvantage float64 `db:"home_advantage" json:"home_advantage"`
	// ModelVersion scopes calibration curves to the parameter set that
	// produced the raw probabilities.
	ModelVersion string `db:"model_version" json:"model_version"`
}

// DefaultModelParameters returns the parameter set used when the training
// store has nothing newer.
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		Rho:           -0.13,
		TimeDecay:     0.0065,
		HomeAdvantage: 0.25,
		ModelVersion:  "v1",
	}
}

// GoalExpectations holds the expected goals for one fixture, derived
// deterministically from two TeamStrength records and ModelParameters.
type GoalExpectations struct {
	LambdaHome float64 `json:"lambda_home" validate:"gt=0"`
	LambdaAway float64 `json:"lambda_away" validate:"gt=0"`
}

// Total returns the combined expected goals for the fixture.
func (g GoalExpectations) Total() float64 {
	return g.LambdaHome + g.LambdaAway
}

// Gap returns the absolute expected-goal split between the sides.
func (g GoalExpectations) Gap() float64 {
	if g.LambdaHome > g.LambdaAway {
		return g.LambdaHome - g.LambdaAway
	}
	return g.LambdaAway - g.LambdaHome
}
