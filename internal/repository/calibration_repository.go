package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// PostgresCalibrationRepository implements CalibrationRepository for PostgreSQL
type PostgresCalibrationRepository struct {
	db *database.DB
}

// NewPostgresCalibrationRepository creates a new calibration repository
func NewPostgresCalibrationRepository(db *database.DB) CalibrationRepository {
	return &PostgresCalibrationRepository{db: db}
}

const curveColumns = "id, outcome, league_id, model_version, knots, sample_count, active, created_at"

// Create inserts a new calibration curve. Curves are always inserted
// inactive; activation is a separate transactional step.
func (r *PostgresCalibrationRepository) Create(ctx context.Context, curve *models.CalibrationCurve) error {
	if err := curve.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid curve: %w", err)
	}
	knots, err := json.Marshal(curve.Knots)
	if err != nil {
		return fmt.Errorf("failed to encode curve knots: %w", err)
	}

	query := `
		INSERT INTO calibration_curves (id, outcome, league_id, model_version, knots, sample_count, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`
	_, err = r.db.GetPool().Exec(ctx, query,
		curve.ID, string(curve.Outcome), curve.LeagueID, curve.ModelVersion, knots, curve.SampleCount, curve.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create calibration curve: %w", err)
	}
	return nil
}

// GetByID retrieves a curve by ID
func (r *PostgresCalibrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CalibrationCurve, error) {
	query := `SELECT ` + curveColumns + ` FROM calibration_curves WHERE id = $1`
	curve, err := scanCurve(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calibration curve: %w", err)
	}
	return curve, nil
}

// GetActive retrieves the single active curve for a scope.
func (r *PostgresCalibrationRepository) GetActive(ctx context.Context, scope models.CurveScope) (*models.CalibrationCurve, error) {
	query := `
		SELECT ` + curveColumns + `
		FROM calibration_curves
		WHERE outcome = $1 AND league_id = $2 AND model_version = $3 AND active
	`
	curve, err := scanCurve(r.db.GetPool().QueryRow(ctx, query, string(scope.Outcome), scope.LeagueID, scope.ModelVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNoActiveCurve
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active curve: %w", err)
	}
	return curve, nil
}

// Activate performs the atomic swap: inside one transaction the scope's
// current active curve (if any) is deactivated and the given curve
// activated. Readers observe either the old or the new curve, never zero or
// two active rows; the partial unique index enforces the same invariant at
// the database level.
func (r *PostgresCalibrationRepository) Activate(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var replaced uuid.UUID

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var outcome, leagueID, modelVersion string
		err := tx.QueryRow(ctx,
			`SELECT outcome, league_id, model_version FROM calibration_curves WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&outcome, &leagueID, &modelVersion)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load curve scope: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE calibration_curves SET active = FALSE
			WHERE outcome = $1 AND league_id = $2 AND model_version = $3 AND active AND id <> $4
			RETURNING id
		`, outcome, leagueID, modelVersion, id).Scan(&replaced)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to deactivate prior curve: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE calibration_curves SET active = TRUE WHERE id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to activate curve: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return replaced, nil
}

// ListByScope returns every curve ever fitted for a scope, newest first.
// This is what makes rollback trivial: pick an older row and Activate it.
func (r *PostgresCalibrationRepository) ListByScope(ctx context.Context, scope models.CurveScope) ([]*models.CalibrationCurve, error) {
	query := `
		SELECT ` + curveColumns + `
		FROM calibration_curves
		WHERE outcome = $1 AND league_id = $2 AND model_version = $3
		ORDER BY created_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, string(scope.Outcome), scope.LeagueID, scope.ModelVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query curves: %w", err)
	}
	defer rows.Close()

	var curves []*models.CalibrationCurve
	for rows.Next() {
		curve, err := scanCurve(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curve: %w", err)
		}
		curves = append(curves, curve)
	}
	return curves, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurve(row rowScanner) (*models.CalibrationCurve, error) {
	curve := &models.CalibrationCurve{}
	var outcome string
	var knots []byte
	err := row.Scan(
		&curve.ID, &outcome, &curve.LeagueID, &curve.ModelVersion,
		&knots, &curve.SampleCount, &curve.Active, &curve.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	curve.Outcome = models.Outcome(outcome)
	if err := json.Unmarshal(knots, &curve.Knots); err != nil {
		return nil, fmt.Errorf("failed to decode curve knots: %w", err)
	}
	return curve, nil
}
