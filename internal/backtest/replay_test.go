package backtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/decision"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// valueLeg is a home pick with a model edge just under the disagreement
// penalty step, scoring about 0.043. Three of them clear the default 0.12
// acceptance threshold.
func valueLeg() models.Pick {
	return models.Pick{
		FixtureID:  uuid.New(),
		LeagueID:   "EPL",
		Selection:  models.OutcomeHome,
		ModelProb:  0.2166,
		MarketOdds: 6.00,
	}
}

// vetoedLeg trips the draw-against-favorite contradiction.
func vetoedLeg() models.Pick {
	return models.Pick{
		FixtureID:  uuid.New(),
		LeagueID:   "EPL",
		Selection:  models.OutcomeDraw,
		ModelProb:  0.33,
		MarketOdds: 3.50,
		Market:     &models.MarketOdds{Home: 1.45, Draw: 4.60, Away: 7.50},
	}
}

func acca(won bool, day int, legs ...models.Pick) HistoricalTicket {
	return HistoricalTicket{
		ID:        uuid.New(),
		Picks:     legs,
		Won:       won,
		SettledAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, day),
	}
}

func TestReplaySettlesAcceptedTickets(t *testing.T) {
	winner := acca(true, 0, valueLeg(), valueLeg(), valueLeg())
	loser := acca(false, 1, valueLeg(), valueLeg(), valueLeg())
	vetoed := acca(true, 2, vetoedLeg(), valueLeg(), valueLeg())

	result, err := Replay([]HistoricalTicket{winner, loser, vetoed}, decision.DefaultThresholds())
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, 3, m.TotalTickets)
	// The vetoed ticket is never staked, even though it won.
	assert.Equal(t, 2, m.AcceptedTickets)
	assert.Equal(t, 1, m.WinningTickets)
	assert.InDelta(t, 0.5, m.HitRate, 1e-9)

	wantProfit := winner.Payout() - 1.0
	assert.InDelta(t, wantProfit, m.NetProfit, 1e-9)
	assert.InDelta(t, wantProfit/2.0, m.ROI, 1e-9)
	assert.Len(t, result.Equity, 2)
}

func TestReplayEquityOrderedBySettlement(t *testing.T) {
	// Feed the history out of order; the curve must follow settlement time.
	late := acca(false, 5, valueLeg(), valueLeg(), valueLeg())
	early := acca(true, 1, valueLeg(), valueLeg(), valueLeg())

	result, err := Replay([]HistoricalTicket{late, early}, decision.DefaultThresholds())
	require.NoError(t, err)

	require.Len(t, result.Equity, 2)
	assert.True(t, result.Equity[0].Time.Before(result.Equity[1].Time))
	assert.InDelta(t, early.Payout(), result.Equity[0].Value, 1e-9)
	assert.InDelta(t, early.Payout()-1.0, result.Equity[1].Value, 1e-9)
}

func TestSweepThresholds(t *testing.T) {
	history := []HistoricalTicket{
		acca(true, 0, valueLeg(), valueLeg(), valueLeg()),
		acca(true, 1, valueLeg(), valueLeg(), valueLeg()),
		acca(false, 2, valueLeg(), valueLeg(), valueLeg()),
	}

	results, err := SweepThresholds(history, decision.DefaultThresholds(), []float64{0.05, 10.0})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 3, results[0].Metrics.AcceptedTickets)
	// An unreachable threshold accepts nothing.
	assert.Equal(t, 0, results[1].Metrics.AcceptedTickets)
	assert.Zero(t, results[1].Metrics.ROI)

	best, found := BestByROI(results, 1)
	require.True(t, found)
	assert.InDelta(t, results[0].Metrics.ROI, best.Metrics.ROI, 1e-9)

	_, found = BestByROI(results, 5)
	assert.False(t, found)
}

func TestMaxDrawdown(t *testing.T) {
	curve := EquityCurve{
		{Value: 1.0, PnL: 1.0},
		{Value: 3.0, PnL: 2.0},
		{Value: 0.5, PnL: -2.5},
		{Value: 1.5, PnL: 1.0},
	}
	assert.InDelta(t, 2.5, curve.MaxDrawdown(), 1e-9)
}
