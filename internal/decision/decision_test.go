package decision

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

func homePick(prob, odds float64, goals models.GoalExpectations) models.Pick {
	return models.Pick{
		LeagueID:      "EPL",
		Selection:     models.OutcomeHome,
		ModelProb:     prob,
		MarketOdds:    odds,
		ExpectedGoals: goals,
	}
}

// valueLeg carries a small genuine edge under the market-disagreement
// radar: delta 0.0499 stays in the zero-penalty band.
func valueLeg() models.Pick {
	return homePick(0.2166, 6.00, models.GoalExpectations{LambdaHome: 1.3, LambdaAway: 1.3})
}

func TestEvaluatePickComponents(t *testing.T) {
	pick := homePick(0.54, 2.00, models.GoalExpectations{LambdaHome: 1.6, LambdaAway: 1.2})

	eval, err := EvaluatePick(pick, DefaultThresholds())
	require.NoError(t, err)

	ev := 0.54*1.0 - 0.46
	assert.InDelta(t, ev, eval.ExpectedValue, 1e-12)
	assert.InDelta(t, ev/3.0, eval.OddsDampedEV, 1e-12)
	assert.InDelta(t, ev/3.0/1.4, eval.ConfidenceEV, 1e-12)
	assert.Equal(t, 0.0, eval.StructuralPenalty)
	assert.Equal(t, 0.0, eval.MarketPenalty, "delta 0.04 is inside the agreement band")
	assert.InDelta(t, eval.ConfidenceEV, eval.Score, 1e-12)
	assert.False(t, eval.HardContradiction)
}

func TestMarketDisagreementSteps(t *testing.T) {
	tests := []struct {
		name    string
		delta   float64
		penalty float64
	}{
		{"agreement", 0.04, 0},
		{"low band", 0.07, 0.10},
		{"mid band", 0.12, 0.20},
		{"high band", 0.25, 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// odds 2.00 implies 0.50, so model prob sets the delta directly
			pick := homePick(0.50+tt.delta, 2.00, models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.2})
			eval, err := EvaluatePick(pick, DefaultThresholds())
			require.NoError(t, err)
			assert.InDelta(t, tt.penalty, eval.MarketPenalty, 1e-12)
		})
	}
}

func TestStructuralPenalties(t *testing.T) {
	balanced := models.GoalExpectations{LambdaHome: 1.3, LambdaAway: 1.2}
	tilted := models.GoalExpectations{LambdaHome: 1.6, LambdaAway: 1.2}

	tests := []struct {
		name    string
		pick    models.Pick
		penalty float64
	}{
		{
			"draw at long odds",
			models.Pick{Selection: models.OutcomeDraw, ModelProb: 0.27, MarketOdds: 3.70, ExpectedGoals: balanced},
			0.05,
		},
		{
			"draw under goal asymmetry",
			models.Pick{Selection: models.OutcomeDraw, ModelProb: 0.29, MarketOdds: 3.40, ExpectedGoals: tilted},
			0.05,
		},
		{
			"draw with both flags",
			models.Pick{Selection: models.OutcomeDraw, ModelProb: 0.27, MarketOdds: 3.70, ExpectedGoals: tilted},
			0.10,
		},
		{
			"away at long odds",
			models.Pick{Selection: models.OutcomeAway, ModelProb: 0.31, MarketOdds: 3.10, ExpectedGoals: balanced},
			0.04,
		},
		{
			"home never penalized structurally",
			homePick(0.25, 4.20, tilted),
			0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := EvaluatePick(tt.pick, DefaultThresholds())
			require.NoError(t, err)
			require.False(t, eval.HardContradiction, "structural cases must stay below the veto rules")
			assert.InDelta(t, tt.penalty, eval.StructuralPenalty, 1e-12)
		})
	}
}

func TestHardContradictions(t *testing.T) {
	tests := []struct {
		name   string
		pick   models.Pick
		reason string
	}{
		{
			"draw against market home favorite",
			models.Pick{
				Selection:     models.OutcomeDraw,
				ModelProb:     0.30,
				MarketOdds:    4.50,
				Market:        &models.MarketOdds{Home: 1.50, Draw: 4.50, Away: 7.00},
				ExpectedGoals: models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.2},
			},
			"home favorite",
		},
		{
			"high-value draw still vetoed by the market favorite rule",
			models.Pick{
				Selection:     models.OutcomeDraw,
				ModelProb:     0.40,
				MarketOdds:    4.20,
				Market:        &models.MarketOdds{Home: 1.55, Draw: 4.20, Away: 6.50},
				ExpectedGoals: models.GoalExpectations{LambdaHome: 1.3, LambdaAway: 1.2},
			},
			"home favorite",
		},
		{
			"draw under extreme goal asymmetry",
			models.Pick{
				Selection:     models.OutcomeDraw,
				ModelProb:     0.28,
				MarketOdds:    3.40,
				ExpectedGoals: models.GoalExpectations{LambdaHome: 1.8, LambdaAway: 1.3},
			},
			"expected-goal gap",
		},
		{
			"long away against a home-favored market",
			models.Pick{
				Selection:     models.OutcomeAway,
				ModelProb:     0.30,
				MarketOdds:    3.50,
				Market:        &models.MarketOdds{Home: 1.70, Draw: 3.80, Away: 3.50},
				ExpectedGoals: models.GoalExpectations{LambdaHome: 1.5, LambdaAway: 1.2},
			},
			"away pick at odds",
		},
		{
			"extreme disagreement against the market favorite",
			models.Pick{
				Selection:     models.OutcomeAway,
				ModelProb:     0.60,
				MarketOdds:    4.00,
				Market:        &models.MarketOdds{Home: 2.00, Draw: 3.40, Away: 4.00},
				ExpectedGoals: models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.3},
			},
			"extreme model/market disagreement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := EvaluatePick(tt.pick, DefaultThresholds())
			require.NoError(t, err)
			assert.True(t, eval.HardContradiction)
			assert.Contains(t, eval.ContradictionReason, tt.reason)
			assert.True(t, math.IsInf(eval.Score, -1))
		})
	}
}

func TestEvaluatePickInputValidation(t *testing.T) {
	bad := homePick(0.5, 1.0, models.GoalExpectations{})
	_, err := EvaluatePick(bad, DefaultThresholds())
	assert.True(t, errors.Is(err, models.ErrInvalidOdds))

	_, err = EvaluatePick(valueLeg(), Thresholds{MaxContradictions: -1})
	assert.Error(t, err)
}

func TestEvaluateTicketEmpty(t *testing.T) {
	ticket, err := EvaluateTicket(nil, DefaultThresholds())
	require.NoError(t, err)
	assert.False(t, ticket.Accepted)
	assert.Equal(t, RejectEmptyTicket, ticket.RejectionReason)
	assert.True(t, math.IsInf(ticket.Score, -1))
}

func TestEvaluateTicketAcceptGate(t *testing.T) {
	// each value leg scores just above 0.04; the 0.12 gate needs three
	two := []models.Pick{valueLeg(), valueLeg()}
	three := []models.Pick{valueLeg(), valueLeg(), valueLeg()}

	rejected, err := EvaluateTicket(two, DefaultThresholds())
	require.NoError(t, err)
	assert.False(t, rejected.Accepted)
	assert.Equal(t, RejectBelowThreshold, rejected.RejectionReason)

	accepted, err := EvaluateTicket(three, DefaultThresholds())
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.GreaterOrEqual(t, accepted.Score, DefaultMinScore)
	assert.NotEmpty(t, accepted.ID)
	assert.False(t, accepted.EvaluatedAt.IsZero())
}

func TestEvaluateTicketVetoCollapsesScore(t *testing.T) {
	vetoed := models.Pick{
		Selection:     models.OutcomeDraw,
		ModelProb:     0.30,
		MarketOdds:    4.60,
		Market:        &models.MarketOdds{Home: 1.45, Draw: 4.60, Away: 7.50},
		ExpectedGoals: models.GoalExpectations{LambdaHome: 1.4, LambdaAway: 1.2},
	}
	picks := []models.Pick{valueLeg(), valueLeg(), valueLeg(), vetoed}

	ticket, err := EvaluateTicket(picks, DefaultThresholds())
	require.NoError(t, err)
	assert.False(t, ticket.Accepted)
	assert.Equal(t, RejectHardContradiction, ticket.RejectionReason)
	assert.True(t, math.IsInf(ticket.Score, -1))
	assert.Equal(t, 1, ticket.ContradictionCount)
	assert.Len(t, ticket.Picks, 4, "per-pick evaluations are still reported")
}

func TestEvaluateTicketDrawFractionPenalty(t *testing.T) {
	drawLeg := models.Pick{
		LeagueID:      "EPL",
		Selection:     models.OutcomeDraw,
		ModelProb:     0.32,
		MarketOdds:    3.40,
		ExpectedGoals: models.GoalExpectations{LambdaHome: 1.3, LambdaAway: 1.2},
	}
	picks := []models.Pick{valueLeg(), drawLeg}

	ticket, err := EvaluateTicket(picks, DefaultThresholds())
	require.NoError(t, err)

	legSum := 0.0
	for _, pick := range picks {
		eval, err := EvaluatePick(pick, DefaultThresholds())
		require.NoError(t, err)
		legSum += eval.Score
	}
	assert.InDelta(t, legSum-DefaultDrawEntropyPenalty*0.5, ticket.Score, 1e-12)
}

func TestEvaluateTicketSoftContradictionBudget(t *testing.T) {
	// delta 0.15 lands in the mid penalty band, counting toward the budget
	disputed := homePick(0.65, 2.00, models.GoalExpectations{LambdaHome: 1.5, LambdaAway: 1.2})
	picks := []models.Pick{disputed, disputed}

	ticket, err := EvaluateTicket(picks, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.ContradictionCount)
	assert.False(t, ticket.Accepted)
	assert.Equal(t, RejectTooManyContradictions, ticket.RejectionReason)
}

func TestEvaluateTicketLeagueWeighting(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.LeagueWeights = map[string]float64{"EPL": 0.0}

	ticket, err := EvaluateTicket([]models.Pick{valueLeg(), valueLeg(), valueLeg()}, thresholds)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ticket.Score, 1e-12, "zero-weighted legs contribute nothing")
	assert.False(t, ticket.Accepted)
}

func TestLeagueWeightFallback(t *testing.T) {
	thresholds := Thresholds{LeagueWeights: map[string]float64{"EPL": 0.8}}
	assert.Equal(t, 0.8, thresholds.LeagueWeight("EPL"))
	assert.Equal(t, DefaultLeagueWeight, thresholds.LeagueWeight("UNKNOWN"))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{MaxContradictions: -1}.Validate())
	assert.Error(t, Thresholds{DrawEntropyPenalty: -0.1}.Validate())
	assert.Error(t, Thresholds{LeagueWeights: map[string]float64{"EPL": -1}}.Validate())
}

func settledBatch(n int, score float64, wins int) []models.SettledTicket {
	out := make([]models.SettledTicket, n)
	for i := range out {
		out[i] = models.SettledTicket{Score: score, Won: i < wins}
	}
	return out
}

func TestEstimateScoreThresholdPrefersProfitableBucket(t *testing.T) {
	history := append(settledBatch(40, 0.02, 10), settledBatch(40, 0.12, 30)...)

	cutoff, err := EstimateScoreThreshold(history, DefaultBucketWidth, DefaultMinBucketSamples)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, cutoff, 1e-12, "the high-score bucket's lower bound wins on hit rate")
}

func TestEstimateScoreThresholdInsufficientHistory(t *testing.T) {
	history := settledBatch(10, 0.12, 6)

	_, err := EstimateScoreThreshold(history, DefaultBucketWidth, DefaultMinBucketSamples)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestEstimateScoreThresholdSkipsVetoedTickets(t *testing.T) {
	history := settledBatch(40, 0.12, 30)
	for i := 0; i < 100; i++ {
		history = append(history, models.SettledTicket{Score: math.Inf(-1), Won: false})
	}

	cutoff, err := EstimateScoreThreshold(history, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, cutoff, 1e-12)
}

func TestEstimateScoreThresholdIgnoresThinBuckets(t *testing.T) {
	// a tiny perfect bucket must not set the cutoff
	history := append(settledBatch(40, 0.02, 30), settledBatch(5, 0.40, 5)...)

	cutoff, err := EstimateScoreThreshold(history, DefaultBucketWidth, DefaultMinBucketSamples)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, cutoff, 1e-12)
}
