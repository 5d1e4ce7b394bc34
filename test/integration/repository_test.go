//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/test/helpers"
)

func testCurve(outcome models.Outcome) *models.CalibrationCurve {
	return &models.CalibrationCurve{
		ID:           uuid.New(),
		Outcome:      outcome,
		LeagueID:     "EPL",
		ModelVersion: "v1",
		Knots: []models.CurveKnot{
			{X: 0.1, Y: 0.08},
			{X: 0.5, Y: 0.52},
			{X: 0.9, Y: 0.93},
		},
		SampleCount: 200,
		CreatedAt:   time.Now().UTC(),
	}
}

// TestRepositoryIntegration exercises the repositories against a real
// Postgres instance. Run with: go test -tags integration ./test/integration/
func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := helpers.SetupTestDB(t)
	defer helpers.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	t.Run("CalibrationRepository", func(t *testing.T) {
		scope := models.CurveScope{Outcome: models.OutcomeDraw, LeagueID: "EPL", ModelVersion: "v1"}

		// No curve yet.
		_, err := repos.Calibration.GetActive(ctx, scope)
		require.ErrorIs(t, err, models.ErrNoActiveCurve)

		// Curves are created inactive.
		first := testCurve(models.OutcomeDraw)
		require.NoError(t, repos.Calibration.Create(ctx, first))
		_, err = repos.Calibration.GetActive(ctx, scope)
		require.ErrorIs(t, err, models.ErrNoActiveCurve)

		// First activation replaces nothing.
		replaced, err := repos.Calibration.Activate(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, replaced)

		active, err := repos.Calibration.GetActive(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, first.ID, active.ID)
		assert.Len(t, active.Knots, 3)

		// Activating a second curve atomically swaps the active flag.
		second := testCurve(models.OutcomeDraw)
		require.NoError(t, repos.Calibration.Create(ctx, second))
		replaced, err = repos.Calibration.Activate(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, replaced)

		active, err = repos.Calibration.GetActive(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)

		// History keeps both rows.
		curves, err := repos.Calibration.ListByScope(ctx, scope)
		require.NoError(t, err)
		assert.Len(t, curves, 2)

		// A different scope is unaffected.
		_, err = repos.Calibration.GetActive(ctx, models.CurveScope{
			Outcome: models.OutcomeHome, LeagueID: "EPL", ModelVersion: "v1",
		})
		require.ErrorIs(t, err, models.ErrNoActiveCurve)
	})

	t.Run("PredictionLogRepository", func(t *testing.T) {
		scope := models.CurveScope{Outcome: models.OutcomeHome, LeagueID: "EPL", ModelVersion: "v1"}
		fixtureID := uuid.New()

		require.NoError(t, repos.PredictionLog.Record(ctx, fixtureID, scope, 0.42))

		// Unsettled rows are not fitting samples.
		samples, err := repos.PredictionLog.GetSamples(ctx, scope, 100)
		require.NoError(t, err)
		assert.Empty(t, samples)

		require.NoError(t, repos.PredictionLog.Settle(ctx, fixtureID, models.OutcomeHome, true))

		samples, err = repos.PredictionLog.GetSamples(ctx, scope, 100)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.InDelta(t, 0.42, samples[0].Predicted, 1e-9)
		assert.Equal(t, 1, samples[0].Realized)
	})

	t.Run("SettledTicketRepository", func(t *testing.T) {
		ticket := &models.SettledTicket{
			ID:        uuid.New(),
			Score:     0.18,
			Won:       true,
			SettledAt: time.Now().UTC(),
		}
		require.NoError(t, repos.SettledTicket.Record(ctx, ticket))

		since, err := repos.SettledTicket.GetSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, since, 1)
		assert.Equal(t, ticket.ID, since[0].ID)

		older, err := repos.SettledTicket.GetSince(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, older)
	})
}
