// Package probability implements the parametric goal-expectancy model:
// independent Poisson scoring with the Dixon-Coles low-score correction,
// truncated-grid aggregation to three-way outcome probabilities, and the
// Shannon-entropy diagnostic attached to every distribution.
package probability

import (
	"math"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

const (
	// MaxGoals bounds the score grid; mass beyond 8 goals a side is
	// negligible at football goal expectancies.
	MaxGoals = 8

	// Tau clamp bounds guard against pathological rho/lambda combinations
	// pushing a joint cell negative or absurdly large.
	tauMin = 0.1
	tauMax = 2.0

	// degenerateMass is the pre-normalization total below which the grid is
	// considered numerically empty and a uniform fallback applies.
	degenerateMass = 1e-10
)

// PoissonPMF returns P(X = k) for a Poisson distribution with mean lambda.
func PoissonPMF(lambda float64, k int) float64 {
	if lambda <= 0 || k < 0 {
		if k == 0 {
			return 1.0
		}
		return 0.0
	}
	logP := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logP)
}

func logFactorial(k int) float64 {
	lf := 0.0
	for i := 2; i <= k; i++ {
		lf += math.Log(float64(i))
	}
	return lf
}

// Tau is the Dixon-Coles low-score dependency correction. It applies only to
// the four cells (0,0), (1,0), (0,1), (1,1) and is 1 elsewhere. The result
// is clamped to [0.1, 2.0].
func Tau(homeGoals, awayGoals int, lambdaHome, lambdaAway, rho float64) float64 {
	var t float64
	switch {
	case homeGoals == 0 && awayGoals == 0:
		t = 1 - lambdaHome*lambdaAway*rho
	case homeGoals == 0 && awayGoals == 1:
		t = 1 + lambdaHome*rho
	case homeGoals == 1 && awayGoals == 0:
		t = 1 + lambdaAway*rho
	case homeGoals == 1 && awayGoals == 1:
		t = 1 - rho
	default:
		return 1.0
	}
	return clamp(t, tauMin, tauMax)
}

// ExpectedGoals derives the fixture's goal expectancies from two team
// strengths and the model parameters:
//
//	lambda_home = exp(attack_home - defense_away + home_advantage)
//	lambda_away = exp(attack_away - defense_home)
func ExpectedGoals(home, away models.TeamStrength, params models.ModelParameters) models.GoalExpectations {
	return models.GoalExpectations{
		LambdaHome: math.Exp(home.Attack - away.Defense + params.HomeAdvantage),
		LambdaAway: math.Exp(away.Attack - home.Defense),
	}
}

// ScoreGrid is the joint score distribution over 0..MaxGoals goals a side
// with the Dixon-Coles correction applied.
type ScoreGrid struct {
	cells [MaxGoals + 1][MaxGoals + 1]float64
}

// NewScoreGrid fills the joint grid for the given expectancies and rho.
func NewScoreGrid(goals models.GoalExpectations, rho float64) *ScoreGrid {
	var grid ScoreGrid
	var homePMF, awayPMF [MaxGoals + 1]float64
	for k := 0; k <= MaxGoals; k++ {
		homePMF[k] = PoissonPMF(goals.LambdaHome, k)
		awayPMF[k] = PoissonPMF(goals.LambdaAway, k)
	}
	for h := 0; h <= MaxGoals; h++ {
		for a := 0; a <= MaxGoals; a++ {
			grid.cells[h][a] = homePMF[h] * awayPMF[a] * Tau(h, a, goals.LambdaHome, goals.LambdaAway, rho)
		}
	}
	return &grid
}

// Cell returns the joint probability of the exact scoreline (h, a).
func (g *ScoreGrid) Cell(h, a int) float64 {
	if h < 0 || h > MaxGoals || a < 0 || a > MaxGoals {
		return 0
	}
	return g.cells[h][a]
}

// Outcomes sums the grid into the three-way distribution, renormalizing to
// absorb truncation and floating-point drift. A numerically empty grid falls
// back to a uniform 1/3 split so the model stays total.
func (g *ScoreGrid) Outcomes() models.OutcomeProbabilities {
	var home, draw, away float64
	for h := 0; h <= MaxGoals; h++ {
		for a := 0; a <= MaxGoals; a++ {
			switch {
			case h > a:
				home += g.cells[h][a]
			case h == a:
				draw += g.cells[h][a]
			default:
				away += g.cells[h][a]
			}
		}
	}

	total := home + draw + away
	if total <= degenerateMass {
		return uniformOutcome()
	}

	probs := models.OutcomeProbabilities{
		Home: home / total,
		Draw: draw / total,
		Away: away / total,
	}
	probs.Entropy = Entropy(probs)
	return probs
}

// DrawMass sums only the diagonal of the grid, the probability of any drawn
// scoreline.
func (g *ScoreGrid) DrawMass() float64 {
	var draw float64
	for k := 0; k <= MaxGoals; k++ {
		draw += g.cells[k][k]
	}
	return draw
}

// MatchProbabilities is the primary model entry point: two team strengths
// and the model parameters in, a three-way outcome distribution out.
func MatchProbabilities(home, away models.TeamStrength, params models.ModelParameters) (models.GoalExpectations, models.OutcomeProbabilities) {
	goals := ExpectedGoals(home, away, params)
	grid := NewScoreGrid(goals, params.Rho)
	return goals, grid.Outcomes()
}

func uniformOutcome() models.OutcomeProbabilities {
	third := 1.0 / 3.0
	p := models.OutcomeProbabilities{Home: third, Draw: third, Away: third}
	p.Entropy = Entropy(p)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
