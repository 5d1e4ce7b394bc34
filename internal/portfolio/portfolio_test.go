package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

func testFixture(league string, kickoff time.Time, odds *models.MarketOdds, drawSignal, totalGoals float64) models.Fixture {
	return models.Fixture{
		ID:          uuid.New(),
		LeagueID:    league,
		KickoffTime: kickoff,
		Odds:        odds,
		DrawSignal:  drawSignal,
		ExpectedGoals: models.GoalExpectations{
			LambdaHome: totalGoals / 2,
			LambdaAway: totalGoals / 2,
		},
	}
}

func ticketFromPicks(picks ...models.Pick) models.TicketEvaluation {
	t := models.TicketEvaluation{ID: uuid.New()}
	for _, p := range picks {
		t.Picks = append(t.Picks, models.PickEvaluation{Pick: p})
	}
	return t
}

func TestCorrelationWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultCorrelationWeights().Validate())
	assert.Error(t, CorrelationWeights{}.Validate(), "zero sum cannot normalize")
	assert.Error(t, CorrelationWeights{SameLeague: 1.0, Kickoff: -0.1}.Validate())
}

func TestFixtureCorrelationIdenticalFeatures(t *testing.T) {
	kickoff := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	odds := &models.MarketOdds{Home: 2.10, Draw: 3.40, Away: 3.60}

	a := testFixture("EPL", kickoff, odds, 0.5, 2.5)
	b := testFixture("EPL", kickoff, odds, 0.5, 2.5)

	assert.InDelta(t, 1.0, FixtureCorrelation(a, b, DefaultCorrelationWeights()), 1e-12)
}

func TestFixtureCorrelationDissimilarFixtures(t *testing.T) {
	saturday := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	wednesday := saturday.Add(4 * 24 * time.Hour)

	a := testFixture("EPL", saturday, &models.MarketOdds{Home: 1.40, Draw: 4.80, Away: 8.00}, 0.2, 3.4)
	b := testFixture("SerieA", wednesday, &models.MarketOdds{Home: 5.50, Draw: 4.20, Away: 1.60}, 0.8, 1.8)

	corr := FixtureCorrelation(a, b, DefaultCorrelationWeights())
	assert.Less(t, corr, 0.5)
	assert.GreaterOrEqual(t, corr, 0.0)
}

func TestFixtureCorrelationKickoffWindow(t *testing.T) {
	kickoff := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	weights := CorrelationWeights{Kickoff: 1.0}

	a := testFixture("EPL", kickoff, nil, 0, 0)
	within := testFixture("SerieA", kickoff.Add(89*time.Minute), nil, 0, 0)
	outside := testFixture("SerieA", kickoff.Add(3*time.Hour), nil, 0, 0)

	assert.InDelta(t, 1.0, FixtureCorrelation(a, within, weights), 1e-12)
	assert.InDelta(t, 0.0, FixtureCorrelation(a, outside, weights), 1e-12)
}

func TestFixtureCorrelationMissingOddsContributeNothing(t *testing.T) {
	kickoff := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	weights := CorrelationWeights{OddsShape: 1.0}

	a := testFixture("EPL", kickoff, nil, 0, 0)
	b := testFixture("EPL", kickoff, &models.MarketOdds{Home: 2.0, Draw: 3.4, Away: 3.8}, 0, 0)

	assert.Equal(t, 0.0, FixtureCorrelation(a, b, weights))
}

func TestBuildCorrelationMatrixProperties(t *testing.T) {
	kickoff := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	odds := &models.MarketOdds{Home: 2.10, Draw: 3.40, Away: 3.60}
	fixtures := []models.Fixture{
		testFixture("EPL", kickoff, odds, 0.5, 2.5),
		testFixture("EPL", kickoff.Add(30*time.Minute), odds, 0.6, 2.7),
		testFixture("SerieA", kickoff.Add(26*time.Hour), nil, 0.2, 3.2),
	}

	matrix, err := BuildCorrelationMatrix(fixtures, nil)
	require.NoError(t, err)
	require.NoError(t, matrix.Validate())

	assert.Equal(t, 3, matrix.Size)
	assert.Equal(t, matrix.Get(0, 1), matrix.Get(1, 0))
	assert.Greater(t, matrix.Get(0, 1), matrix.Get(0, 2),
		"same-league concurrent fixtures correlate tighter than a distant one")
}

func TestBuildCorrelationMatrixLeagueOverride(t *testing.T) {
	kickoff := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	fixtures := []models.Fixture{
		testFixture("SerieA", kickoff, nil, 0.7, 2.2),
		testFixture("SerieA", kickoff.Add(8*time.Hour), nil, 0.7, 2.2),
	}

	base, err := BuildCorrelationMatrix(fixtures, nil)
	require.NoError(t, err)

	// weight the draw regime fully: identical signals now dominate
	overridden, err := BuildCorrelationMatrix(fixtures, map[string]CorrelationWeights{
		"SerieA": {DrawRegime: 1.0},
	})
	require.NoError(t, err)
	assert.Greater(t, overridden.Get(0, 1), base.Get(0, 1))

	_, err = BuildCorrelationMatrix(fixtures, map[string]CorrelationWeights{"SerieA": {}})
	assert.Error(t, err, "invalid override weights are rejected")
}

func TestTicketCorrelation(t *testing.T) {
	f1, f2, f3 := uuid.New(), uuid.New(), uuid.New()
	pick := func(fixture uuid.UUID, sel models.Outcome) models.Pick {
		return models.Pick{FixtureID: fixture, Selection: sel}
	}

	identicalA := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeDraw))
	identicalB := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeDraw))
	disjoint := ticketFromPicks(pick(f3, models.OutcomeAway))
	halfShared := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeAway))

	assert.Equal(t, 1.0, TicketCorrelation(&identicalA, &identicalB))
	assert.Equal(t, 0.0, TicketCorrelation(&identicalA, &disjoint))
	assert.Equal(t, 0.5, TicketCorrelation(&identicalA, &halfShared))

	empty := models.TicketEvaluation{}
	assert.Equal(t, 0.0, TicketCorrelation(&empty, &empty))
}

func TestTicketCorrelationLengthMismatch(t *testing.T) {
	f1, f2 := uuid.New(), uuid.New()
	long := ticketFromPicks(
		models.Pick{FixtureID: f1, Selection: models.OutcomeHome},
		models.Pick{FixtureID: f2, Selection: models.OutcomeHome},
	)
	short := ticketFromPicks(models.Pick{FixtureID: f1, Selection: models.OutcomeHome})

	// one shared leg over the longer ticket's two
	assert.Equal(t, 0.5, TicketCorrelation(&long, &short))
}

func TestSelectPortfolioPrefersDiversity(t *testing.T) {
	f1, f2, f3, f4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	pick := func(fixture uuid.UUID, sel models.Outcome) models.Pick {
		return models.Pick{FixtureID: fixture, Selection: sel}
	}

	top := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeHome))
	top.Score = 0.20
	clone := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeHome))
	clone.Score = 0.19
	diverse := ticketFromPicks(pick(f3, models.OutcomeAway), pick(f4, models.OutcomeDraw))
	diverse.Score = 0.14

	portfolio := SelectPortfolio([]models.TicketEvaluation{top, clone, diverse}, 2, 0.5)

	require.Len(t, portfolio.Tickets, 2)
	assert.Equal(t, top.ID, portfolio.Tickets[0].ID)
	assert.Equal(t, diverse.ID, portfolio.Tickets[1].ID,
		"the uncorrelated ticket beats the higher-scoring clone after the penalty")
	assert.InDelta(t, 0.0, portfolio.MeanCorrelation, 1e-12)
	assert.InDelta(t, top.Score+diverse.Score, portfolio.TotalScore, 1e-12)
	assert.InDelta(t, portfolio.TotalScore, portfolio.PenalizedScore, 1e-12)
}

func TestSelectPortfolioTakesCloneWithoutPenalty(t *testing.T) {
	f1, f2 := uuid.New(), uuid.New()
	pick := func(fixture uuid.UUID, sel models.Outcome) models.Pick {
		return models.Pick{FixtureID: fixture, Selection: sel}
	}

	top := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeHome))
	top.Score = 0.20
	clone := ticketFromPicks(pick(f1, models.OutcomeHome), pick(f2, models.OutcomeHome))
	clone.Score = 0.19
	diverse := ticketFromPicks(pick(uuid.New(), models.OutcomeAway))
	diverse.Score = 0.14

	portfolio := SelectPortfolio([]models.TicketEvaluation{top, clone, diverse}, 2, 0)

	require.Len(t, portfolio.Tickets, 2)
	assert.Equal(t, clone.ID, portfolio.Tickets[1].ID, "without a penalty raw score wins")
	assert.InDelta(t, 1.0, portfolio.MeanCorrelation, 1e-12)
}

func TestSelectPortfolioFiltersDegenerateScores(t *testing.T) {
	vetoed := ticketFromPicks(models.Pick{FixtureID: uuid.New(), Selection: models.OutcomeDraw})
	vetoed.Score = math.Inf(-1)
	good := ticketFromPicks(models.Pick{FixtureID: uuid.New(), Selection: models.OutcomeHome})
	good.Score = 0.15

	portfolio := SelectPortfolio([]models.TicketEvaluation{vetoed, good}, 5, 0.5)

	require.Len(t, portfolio.Tickets, 1)
	assert.Equal(t, good.ID, portfolio.Tickets[0].ID)
}

func TestSelectPortfolioEmptyCandidates(t *testing.T) {
	portfolio := SelectPortfolio(nil, 3, 0.5)
	assert.Empty(t, portfolio.Tickets)
	assert.Equal(t, 0.0, portfolio.TotalScore)
	assert.Equal(t, 0.0, portfolio.MeanCorrelation)
}

func TestNewCorrelationMatrixIsIdentity(t *testing.T) {
	m := models.NewCorrelationMatrix(4)
	require.NoError(t, m.Validate())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1.0, m.Get(i, i))
		for j := i + 1; j < 4; j++ {
			assert.Equal(t, 0.0, m.Get(i, j))
		}
	}
}
