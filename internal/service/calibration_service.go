package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/calibration"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/logger"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
)

// sampleFetchLimit bounds how much settled history one refit pulls.
const sampleFetchLimit = 10000

// CalibrationService owns curve fitting, transactional activation, and
// temperature learning.
type CalibrationService struct {
	calibrationRepo repository.CalibrationRepository
	predictionLog   repository.PredictionLogRepository
	curveCache      *CurveCache
	temperature     *TemperatureStore
	minSamples      int
	modelVersion    string
	audit           *logger.AuditLogger
	logger          *logrus.Logger
}

// NewCalibrationService creates a calibration service.
func NewCalibrationService(
	calibrationRepo repository.CalibrationRepository,
	predictionLog repository.PredictionLogRepository,
	curveCache *CurveCache,
	temperature *TemperatureStore,
	minSamples int,
	modelVersion string,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *CalibrationService {
	if log == nil {
		log = logrus.New()
	}
	if minSamples <= 0 {
		minSamples = calibration.DefaultMinSamples
	}

	return &CalibrationService{
		calibrationRepo: calibrationRepo,
		predictionLog:   predictionLog,
		curveCache:      curveCache,
		temperature:     temperature,
		minSamples:      minSamples,
		modelVersion:    modelVersion,
		audit:           audit,
		logger:          log,
	}
}

// FitCurve fits a new, inactive curve for a scope from settled prediction-log
// samples and persists it. Returns models.ErrInsufficientData when the scope
// does not yet have enough settled history.
func (s *CalibrationService) FitCurve(ctx context.Context, scope models.CurveScope) (*models.CalibrationCurve, error) {
	samples, err := s.predictionLog.GetSamples(ctx, scope, sampleFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration samples for %s: %w", scope.String(), err)
	}

	curve, err := calibration.Fit(scope.Outcome, scope.LeagueID, scope.ModelVersion, samples, s.minSamples)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			metrics.CalibrationFitsTotal.WithLabelValues("insufficient_data").Inc()
		} else {
			metrics.CalibrationFitsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := s.calibrationRepo.Create(ctx, curve); err != nil {
		metrics.CalibrationFitsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist fitted curve for %s: %w", scope.String(), err)
	}
	metrics.CalibrationFitsTotal.WithLabelValues("fitted").Inc()

	s.logger.WithFields(logrus.Fields{
		"curve_id": curve.ID,
		"scope":    scope.String(),
		"samples":  curve.SampleCount,
		"knots":    len(curve.Knots),
	}).Info("Fitted calibration curve")

	return curve, nil
}

// ActivateCurve atomically swaps the active curve for the curve's scope and
// invalidates the cache so new predictions see it immediately.
func (s *CalibrationService) ActivateCurve(ctx context.Context, curveID uuid.UUID) error {
	curve, err := s.calibrationRepo.GetByID(ctx, curveID)
	if err != nil {
		return fmt.Errorf("failed to load curve %s: %w", curveID, err)
	}

	replacedID, err := s.calibrationRepo.Activate(ctx, curveID)
	if err != nil {
		return fmt.Errorf("failed to activate curve %s: %w", curveID, err)
	}

	scope := models.CurveScope{
		Outcome:      curve.Outcome,
		LeagueID:     curve.LeagueID,
		ModelVersion: curve.ModelVersion,
	}
	s.curveCache.Invalidate(scope)
	metrics.CurveActivationsTotal.Inc()

	replaced := ""
	if replacedID != uuid.Nil {
		replaced = replacedID.String()
	}
	if s.audit != nil {
		s.audit.LogCurveActivation(
			curveID.String(), replaced,
			string(curve.Outcome), curve.LeagueID, curve.ModelVersion,
			curve.SampleCount, curve.CreatedAt,
		)
	}

	return nil
}

// Rollback reactivates a previously fitted curve for a scope. Because curve
// rows are append-only, rolling back is just activating an older row.
func (s *CalibrationService) Rollback(ctx context.Context, curveID uuid.UUID) error {
	return s.ActivateCurve(ctx, curveID)
}

// RefitResult summarizes one scope's outcome within a batch refit.
type RefitResult struct {
	Scope     models.CurveScope
	CurveID   uuid.UUID
	Activated bool
	Err       error
}

// RefitLeagues fits and activates fresh curves for every (outcome, league)
// scope. Scopes without enough history are skipped, not failed.
func (s *CalibrationService) RefitLeagues(ctx context.Context, leagueIDs []string) []RefitResult {
	results := make([]RefitResult, 0, len(leagueIDs)*3)

	for _, leagueID := range leagueIDs {
		for _, outcome := range models.Outcomes() {
			scope := models.CurveScope{
				Outcome:      outcome,
				LeagueID:     leagueID,
				ModelVersion: s.modelVersion,
			}
			result := RefitResult{Scope: scope}

			curve, err := s.FitCurve(ctx, scope)
			if err != nil {
				result.Err = err
				if errors.Is(err, models.ErrInsufficientData) {
					s.logger.WithField("scope", scope.String()).Debug("Skipping refit, insufficient settled history")
				} else {
					s.logger.WithError(err).WithField("scope", scope.String()).Warn("Curve refit failed")
				}
				results = append(results, result)
				continue
			}

			result.CurveID = curve.ID
			if err := s.ActivateCurve(ctx, curve.ID); err != nil {
				result.Err = err
				s.logger.WithError(err).WithField("scope", scope.String()).Warn("Curve activation failed")
			} else {
				result.Activated = true
			}
			results = append(results, result)
		}
	}

	return results
}

// UpdateTemperature learns a new softening temperature from matched
// prediction/outcome history and installs it.
func (s *CalibrationService) UpdateTemperature(
	predictions []models.OutcomeProbabilities,
	actuals []models.Outcome,
) (*models.TemperatureSetting, error) {
	setting, err := calibration.LearnTemperature(predictions, actuals)
	if err != nil {
		return nil, err
	}

	s.temperature.Set(setting.Value)
	if s.audit != nil {
		s.audit.LogTemperatureUpdate(setting.Value, setting.FittedLogLoss, setting.SampleCount)
	}

	return setting, nil
}

// ListCurves returns the fit history for a scope, newest first.
func (s *CalibrationService) ListCurves(ctx context.Context, scope models.CurveScope) ([]*models.CalibrationCurve, error) {
	return s.calibrationRepo.ListByScope(ctx, scope)
}
