package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

func TestPoissonPMF(t *testing.T) {
	tests := []struct {
		name     string
		lambda   float64
		k        int
		expected float64
	}{
		{"zero goals at 1.4", 1.4, 0, math.Exp(-1.4)},
		{"one goal at 1.4", 1.4, 1, 1.4 * math.Exp(-1.4)},
		{"two goals at 1.1", 1.1, 2, 1.1 * 1.1 / 2 * math.Exp(-1.1)},
		{"zero lambda zero goals", 0, 0, 1.0},
		{"zero lambda one goal", 0, 1, 0.0},
		{"negative k", 1.4, -1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PoissonPMF(tt.lambda, tt.k), 1e-12)
		})
	}
}

func TestPoissonPMFSumsToOneOverGrid(t *testing.T) {
	sum := 0.0
	for k := 0; k <= MaxGoals; k++ {
		sum += PoissonPMF(1.4, k)
	}
	// truncation at 8 goals leaves negligible tail mass
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestTauAffectsOnlyLowScoreCells(t *testing.T) {
	lh, la, rho := 1.4, 1.1, -0.13

	assert.InDelta(t, 1-lh*la*rho, Tau(0, 0, lh, la, rho), 1e-12)
	assert.InDelta(t, 1+lh*rho, Tau(0, 1, lh, la, rho), 1e-12)
	assert.InDelta(t, 1+la*rho, Tau(1, 0, lh, la, rho), 1e-12)
	assert.InDelta(t, 1-rho, Tau(1, 1, lh, la, rho), 1e-12)

	for h := 0; h <= MaxGoals; h++ {
		for a := 0; a <= MaxGoals; a++ {
			if h <= 1 && a <= 1 {
				continue
			}
			assert.Equal(t, 1.0, Tau(h, a, lh, la, rho), "cell (%d,%d)", h, a)
		}
	}
}

func TestTauClamped(t *testing.T) {
	// extreme positive rho drives the (0,0) correction negative
	assert.Equal(t, 0.1, Tau(0, 0, 3.0, 3.0, 0.5))
	// extreme negative rho inflates it past the ceiling
	assert.Equal(t, 2.0, Tau(0, 0, 3.0, 3.0, -0.5))
}

func TestExpectedGoals(t *testing.T) {
	home := models.TeamStrength{Attack: 0.3, Defense: 0.1}
	away := models.TeamStrength{Attack: 0.1, Defense: -0.05}
	params := models.ModelParameters{HomeAdvantage: 0.25}

	goals := ExpectedGoals(home, away, params)
	assert.InDelta(t, math.Exp(0.3-(-0.05)+0.25), goals.LambdaHome, 1e-12)
	assert.InDelta(t, math.Exp(0.1-0.1), goals.LambdaAway, 1e-12)
}

func TestNeutralStrengthsGiveHomeAdvantageOnly(t *testing.T) {
	params := models.DefaultModelParameters()
	goals := ExpectedGoals(models.NeutralStrength("h"), models.NeutralStrength("a"), params)
	assert.InDelta(t, math.Exp(params.HomeAdvantage), goals.LambdaHome, 1e-12)
	assert.InDelta(t, 1.0, goals.LambdaAway, 1e-12)
}

func TestOutcomesTypicalFixture(t *testing.T) {
	goals := models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.1}
	grid := NewScoreGrid(goals, -0.13)
	probs := grid.Outcomes()

	require.NoError(t, probs.Validate())
	assert.InDelta(t, 1.0, probs.Sum(), models.ProbabilitySumTolerance)
	assert.Greater(t, probs.Home, probs.Draw, "home favorite at these expectancies")
	assert.Greater(t, probs.Home, probs.Away)
	assert.GreaterOrEqual(t, probs.Draw, 0.24)
	assert.LessOrEqual(t, probs.Draw, 0.30)
	assert.Greater(t, probs.Entropy, 0.0)
}

func TestNegativeRhoBoostsDraw(t *testing.T) {
	goals := models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.1}
	independent := NewScoreGrid(goals, 0).Outcomes()
	corrected := NewScoreGrid(goals, -0.13).Outcomes()

	assert.Greater(t, corrected.Draw, independent.Draw)
}

func TestDrawMassMatchesDiagonal(t *testing.T) {
	goals := models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.1}
	grid := NewScoreGrid(goals, -0.13)

	var diag float64
	for k := 0; k <= MaxGoals; k++ {
		diag += grid.Cell(k, k)
	}
	assert.InDelta(t, diag, grid.DrawMass(), 1e-15)
}

func TestCellOutOfRange(t *testing.T) {
	grid := NewScoreGrid(models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.1}, 0)
	assert.Equal(t, 0.0, grid.Cell(-1, 0))
	assert.Equal(t, 0.0, grid.Cell(0, MaxGoals+1))
}

func TestDegenerateGridFallsBackToUniform(t *testing.T) {
	var grid ScoreGrid
	probs := grid.Outcomes()

	assert.InDelta(t, 1.0/3.0, probs.Home, 1e-12)
	assert.InDelta(t, 1.0/3.0, probs.Draw, 1e-12)
	assert.InDelta(t, 1.0/3.0, probs.Away, 1e-12)
	assert.InDelta(t, maxEntropy3, probs.Entropy, 1e-12)
}

func TestMatchProbabilities(t *testing.T) {
	params := models.DefaultModelParameters()
	home := models.TeamStrength{TeamID: "home", Attack: 0.2, Defense: 0.1}
	away := models.TeamStrength{TeamID: "away", Attack: 0.0, Defense: 0.0}

	goals, probs := MatchProbabilities(home, away, params)
	assert.Greater(t, goals.LambdaHome, goals.LambdaAway)
	require.NoError(t, probs.Validate())
	assert.Equal(t, models.OutcomeHome, probs.Favorite())
}
