package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurveKnot is one (raw, calibrated) point of a calibration curve.
type CurveKnot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CalibrationCurve is a fitted, monotonic mapping from raw to calibrated
// probability for a single outcome class. Curves are append-only: a fitting
// job persists new rows inactive, and a separate transactional activation
// step flips the active flag so rollback is just reactivating an older row.
type CalibrationCurve struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Outcome      Outcome     `db:"outcome" json:"outcome" validate:"required,oneof=H D A"`
	LeagueID     string      `db:"league_id" json:"league_id"`
	ModelVersion string      `db:"model_version" json:"model_version" validate:"required"`
	Knots        []CurveKnot `db:"knots" json:"knots" validate:"required,min=2"`
	SampleCount  int         `db:"sample_count" json:"sample_count"`
	Active       bool        `db:"active" json:"active"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// Validate checks the curve invariants: a valid outcome tag and knots that
// are strictly increasing in x and non-decreasing in y.
func (c *CalibrationCurve) Validate() error {
	if !c.Outcome.Valid() {
		return ErrInvalidOutcome
	}
	if len(c.Knots) < 2 {
		return fmt.Errorf("calibration curve needs at least 2 knots, got %d", len(c.Knots))
	}
	for i := 1; i < len(c.Knots); i++ {
		if c.Knots[i].X <= c.Knots[i-1].X {
			return fmt.Errorf("curve knots not strictly increasing in x at index %d", i)
		}
		if c.Knots[i].Y < c.Knots[i-1].Y {
			return fmt.Errorf("curve not monotonic at index %d: y %f < %f", i, c.Knots[i].Y, c.Knots[i-1].Y)
		}
	}
	return nil
}

// CurveScope identifies the (outcome, league, model-version) slot that can
// hold at most one active curve at a time.
type CurveScope struct {
	Outcome      Outcome
	LeagueID     string
	ModelVersion string
}

// String renders the scope as a stable cache/log key.
func (s CurveScope) String() string {
	return fmt.Sprintf("%s:%s:%s", s.Outcome, s.LeagueID, s.ModelVersion)
}

// Scope returns the activation scope of the curve.
func (c *CalibrationCurve) Scope() CurveScope {
	return CurveScope{Outcome: c.Outcome, LeagueID: c.LeagueID, ModelVersion: c.ModelVersion}
}

// CalibrationSample is one (predicted probability, realized outcome) pair
// from the persisted prediction log.
type CalibrationSample struct {
	Predicted float64 `db:"predicted" json:"predicted"`
	// Realized is 1 when the outcome class occurred, 0 otherwise.
	Realized int `db:"realized" json:"realized"`
}

// Temperature bounds: softening only, never sharpening.
const (
	TemperatureMin = 1.0
	TemperatureMax = 1.5
)

// TemperatureSetting is the learned uncertainty-softening scalar applied
// after per-outcome calibration.
type TemperatureSetting struct {
	Value         float64   `db:"value" json:"value" validate:"gte=1,lte=1.5"`
	FittedLogLoss float64   `db:"fitted_log_loss" json:"fitted_log_loss"`
	SampleCount   int       `db:"sample_count" json:"sample_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Validate enforces the softening-only contract.
func (t TemperatureSetting) Validate() error {
	if t.Value < TemperatureMin || t.Value > TemperatureMax {
		return fmt.Errorf("temperature %f outside [%0.1f, %0.1f]", t.Value, TemperatureMin, TemperatureMax)
	}
	return nil
}
