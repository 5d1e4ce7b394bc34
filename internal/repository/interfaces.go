// Package repository provides persistence for calibration curves, the
// prediction log, and settled-ticket history.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// CalibrationRepository stores calibration curves. Rows are append-only;
// only the active flag ever changes, and only through Activate.
type CalibrationRepository interface {
	// Create persists a new, inactive curve.
	Create(ctx context.Context, curve *models.CalibrationCurve) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CalibrationCurve, error)
	// GetActive returns the single active curve for a scope, or
	// models.ErrNoActiveCurve.
	GetActive(ctx context.Context, scope models.CurveScope) (*models.CalibrationCurve, error)
	// Activate atomically deactivates the scope's current active curve (if
	// any) and activates the given one, returning the replaced curve ID.
	Activate(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListByScope(ctx context.Context, scope models.CurveScope) ([]*models.CalibrationCurve, error)
}

// PredictionLogRepository is the persisted prediction log the calibration
// fitting job samples from.
type PredictionLogRepository interface {
	Record(ctx context.Context, fixtureID uuid.UUID, scope models.CurveScope, predicted float64) error
	// Settle fills in the realized flag once the fixture result is known.
	Settle(ctx context.Context, fixtureID uuid.UUID, outcome models.Outcome, realized bool) error
	// GetSamples returns settled (predicted, realized) pairs for a scope,
	// newest first, up to limit.
	GetSamples(ctx context.Context, scope models.CurveScope, limit int) ([]models.CalibrationSample, error)
}

// SettledTicketRepository stores historical ticket results for acceptance
// threshold re-estimation.
type SettledTicketRepository interface {
	Record(ctx context.Context, ticket *models.SettledTicket) error
	GetSince(ctx context.Context, since time.Time) ([]models.SettledTicket, error)
}

// Repositories holds all repository implementations
type Repositories struct {
	Calibration   CalibrationRepository
	PredictionLog PredictionLogRepository
	SettledTicket SettledTicketRepository
}
