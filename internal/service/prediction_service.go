package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/calibration"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/draw"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/monitor"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/probability"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
)

// TemperatureStore holds the currently active softening temperature. The
// calibration job updates it; the prediction path reads it per fixture.
type TemperatureStore struct {
	mu    sync.RWMutex
	value float64
}

// NewTemperatureStore returns a store at the identity temperature.
func NewTemperatureStore() *TemperatureStore {
	return &TemperatureStore{value: models.TemperatureMin}
}

// Value returns the active temperature.
func (ts *TemperatureStore) Value() float64 {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.value
}

// Set installs a new temperature, clamped to the allowed range.
func (ts *TemperatureStore) Set(value float64) {
	if math.IsNaN(value) || value < models.TemperatureMin {
		value = models.TemperatureMin
	}
	if value > models.TemperatureMax {
		value = models.TemperatureMax
	}
	ts.mu.Lock()
	ts.value = value
	ts.mu.Unlock()
	metrics.ActiveTemperature.Set(value)
}

// Prediction is the full per-fixture pipeline output, keeping each stage's
// triple for diagnostics.
type Prediction struct {
	FixtureID         uuid.UUID                  `json:"fixture_id"`
	Goals             models.GoalExpectations    `json:"goals"`
	Raw               models.OutcomeProbabilities `json:"raw"`
	Adjusted          models.OutcomeProbabilities `json:"adjusted"`
	Calibrated        models.OutcomeProbabilities `json:"calibrated"`
	Final             models.OutcomeProbabilities `json:"final"`
	DrawSignal        float64                    `json:"draw_signal"`
	Temperature       float64                    `json:"temperature"`
	NormalizedEntropy float64                    `json:"normalized_entropy"`
}

// PredictionService runs the model → draw → calibration → temperature
// pipeline for a fixture and records the result into the prediction log and
// the entropy monitor.
type PredictionService struct {
	calibrationRepo repository.CalibrationRepository
	predictionLog   repository.PredictionLogRepository
	curveCache      *CurveCache
	temperature     *TemperatureStore
	entropyMonitor  *monitor.EntropyMonitor
	params          models.ModelParameters
	drawConfig      draw.Config
	leaguePriors    map[string]float64
	logger          *logrus.Logger
}

// NewPredictionService creates a prediction service.
func NewPredictionService(
	calibrationRepo repository.CalibrationRepository,
	predictionLog repository.PredictionLogRepository,
	curveCache *CurveCache,
	temperature *TemperatureStore,
	entropyMonitor *monitor.EntropyMonitor,
	params models.ModelParameters,
	drawConfig draw.Config,
	leaguePriors map[string]float64,
	logger *logrus.Logger,
) *PredictionService {
	if logger == nil {
		logger = logrus.New()
	}

	return &PredictionService{
		calibrationRepo: calibrationRepo,
		predictionLog:   predictionLog,
		curveCache:      curveCache,
		temperature:     temperature,
		entropyMonitor:  entropyMonitor,
		params:          params,
		drawConfig:      drawConfig,
		leaguePriors:    leaguePriors,
		logger:          logger,
	}
}

// Predict runs the full pipeline for one fixture. Stage order is fixed: raw
// grid probabilities, draw-signal structural adjustment, multi-source draw
// blending, calibration, temperature softening.
func (s *PredictionService) Predict(
	ctx context.Context,
	fixture models.Fixture,
	home, away models.TeamStrength,
) (*Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPrediction(time.Since(start).Seconds())
	}()

	goals, raw := probability.MatchProbabilities(home, away, s.params)
	if isUniform(raw) {
		metrics.DegenerateFallbacksTotal.WithLabelValues("score_grid").Inc()
	}

	signal := draw.SignalsFromFixture(goals, fixture.Odds, s.leaguePriors, fixture.LeagueID).Compute()

	adjusted, err := draw.Adjust(raw, goals, signal, s.drawConfig)
	if err != nil {
		return nil, fmt.Errorf("draw adjustment failed for fixture %s: %w", fixture.ID, err)
	}

	// Blending settles the final draw value; the adjusted triple supplies
	// the home/away ratio it is reconciled against.
	blended, err := draw.BlendSources(goals, s.params.Rho, fixture.Odds, s.drawConfig)
	if err != nil {
		return nil, fmt.Errorf("draw blending failed for fixture %s: %w", fixture.ID, err)
	}
	combined, err := draw.Reconcile(adjusted, blended.Draw)
	if err != nil {
		return nil, fmt.Errorf("draw reconciliation failed for fixture %s: %w", fixture.ID, err)
	}

	curves := s.loadCurveSet(ctx, fixture.LeagueID)
	calibrated := calibration.ApplySet(curves, combined)

	temp := s.temperature.Value()
	final := calibration.Soften(calibrated, temp)

	normEntropy := probability.NormalizedEntropy(final)
	s.entropyMonitor.Record(normEntropy)

	s.logPrediction(ctx, fixture, final)

	return &Prediction{
		FixtureID:         fixture.ID,
		Goals:             goals,
		Raw:               raw,
		Adjusted:          adjusted,
		Calibrated:        calibrated,
		Final:             final,
		DrawSignal:        signal,
		Temperature:       temp,
		NormalizedEntropy: normEntropy,
	}, nil
}

// PredictBatch predicts a slice of fixtures, skipping fixtures that fail
// rather than aborting the batch.
func (s *PredictionService) PredictBatch(
	ctx context.Context,
	fixtures []models.Fixture,
	strengths map[string]models.TeamStrength,
) ([]Prediction, error) {
	predictions := make([]Prediction, 0, len(fixtures))
	for _, fixture := range fixtures {
		home, hok := strengths[fixture.HomeTeamID]
		awayStrength, aok := strengths[fixture.AwayTeamID]
		if !hok || !aok {
			s.logger.WithField("fixture_id", fixture.ID).Warn("Missing team strengths, skipping fixture")
			continue
		}

		pred, err := s.Predict(ctx, fixture, home, awayStrength)
		if err != nil {
			s.logger.WithError(err).WithField("fixture_id", fixture.ID).Warn("Prediction failed, skipping fixture")
			continue
		}
		predictions = append(predictions, *pred)
	}
	return predictions, nil
}

// EntropySnapshot exposes the monitor state for health checks and reports.
func (s *PredictionService) EntropySnapshot() monitor.Snapshot {
	snap := s.entropyMonitor.Snapshot()
	metrics.RecordEntropyStatus(snap.Status, snap.Mean)
	return snap
}

// loadCurveSet assembles the per-outcome active curves for a league,
// cache-first. A scope with no active curve calibrates as identity.
func (s *PredictionService) loadCurveSet(ctx context.Context, leagueID string) calibration.CurveSet {
	var set calibration.CurveSet
	for _, outcome := range models.Outcomes() {
		scope := models.CurveScope{
			Outcome:      outcome,
			LeagueID:     leagueID,
			ModelVersion: s.params.ModelVersion,
		}

		curve, cached := s.curveCache.Get(scope)
		if !cached {
			var err error
			curve, err = s.calibrationRepo.GetActive(ctx, scope)
			if err != nil {
				if !errors.Is(err, models.ErrNoActiveCurve) {
					s.logger.WithError(err).WithField("scope", scope.String()).Warn("Active curve lookup failed, using identity")
					continue
				}
				curve = nil
			}
			s.curveCache.Set(scope, curve)
		}

		switch outcome {
		case models.OutcomeHome:
			set.Home = curve
		case models.OutcomeDraw:
			set.Draw = curve
		case models.OutcomeAway:
			set.Away = curve
		}
	}
	return set
}

// logPrediction appends one prediction-log row per outcome class. Failures
// are logged, not fatal: the prediction itself is still usable.
func (s *PredictionService) logPrediction(ctx context.Context, fixture models.Fixture, final models.OutcomeProbabilities) {
	if s.predictionLog == nil {
		return
	}
	for _, outcome := range models.Outcomes() {
		scope := models.CurveScope{
			Outcome:      outcome,
			LeagueID:     fixture.LeagueID,
			ModelVersion: s.params.ModelVersion,
		}
		if err := s.predictionLog.Record(ctx, fixture.ID, scope, final.Get(outcome)); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"fixture_id": fixture.ID,
				"scope":      scope.String(),
			}).Warn("Failed to record prediction log entry")
		}
	}
}

func isUniform(p models.OutcomeProbabilities) bool {
	const third = 1.0 / 3.0
	const eps = 1e-12
	return math.Abs(p.Home-third) < eps &&
		math.Abs(p.Draw-third) < eps &&
		math.Abs(p.Away-third) < eps
}
