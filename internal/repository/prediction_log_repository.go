package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// PostgresPredictionLogRepository implements PredictionLogRepository for PostgreSQL
type PostgresPredictionLogRepository struct {
	db *database.DB
}

// NewPostgresPredictionLogRepository creates a new prediction log repository
func NewPostgresPredictionLogRepository(db *database.DB) PredictionLogRepository {
	return &PostgresPredictionLogRepository{db: db}
}

// Record appends one prediction for later settlement.
func (r *PostgresPredictionLogRepository) Record(ctx context.Context, fixtureID uuid.UUID, scope models.CurveScope, predicted float64) error {
	query := `
		INSERT INTO prediction_log (fixture_id, league_id, model_version, outcome, predicted)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		fixtureID, scope.LeagueID, scope.ModelVersion, string(scope.Outcome), predicted,
	)
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}
	return nil
}

// Settle marks the fixture's logged predictions for one outcome class with
// the realized result.
func (r *PostgresPredictionLogRepository) Settle(ctx context.Context, fixtureID uuid.UUID, outcome models.Outcome, realized bool) error {
	value := 0
	if realized {
		value = 1
	}
	query := `
		UPDATE prediction_log SET realized = $3
		WHERE fixture_id = $1 AND outcome = $2 AND realized IS NULL
	`
	_, err := r.db.GetPool().Exec(ctx, query, fixtureID, string(outcome), value)
	if err != nil {
		return fmt.Errorf("failed to settle prediction: %w", err)
	}
	return nil
}

// GetSamples returns settled (predicted, realized) pairs for a scope,
// newest first, up to limit.
func (r *PostgresPredictionLogRepository) GetSamples(ctx context.Context, scope models.CurveScope, limit int) ([]models.CalibrationSample, error) {
	query := `
		SELECT predicted, realized
		FROM prediction_log
		WHERE outcome = $1 AND league_id = $2 AND model_version = $3 AND realized IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $4
	`
	rows, err := r.db.GetPool().Query(ctx, query,
		string(scope.Outcome), scope.LeagueID, scope.ModelVersion, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction samples: %w", err)
	}
	defer rows.Close()

	var samples []models.CalibrationSample
	for rows.Next() {
		var s models.CalibrationSample
		if err := rows.Scan(&s.Predicted, &s.Realized); err != nil {
			return nil, fmt.Errorf("failed to scan prediction sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
