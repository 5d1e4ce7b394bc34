package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/decision"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/logger"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/portfolio"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
)

// thresholdHistoryWindow is how far back settled tickets are pulled when
// re-estimating the acceptance threshold.
const thresholdHistoryWindow = 90 * 24 * time.Hour

// DecisionService evaluates tickets against the accept gate and selects
// correlation-diverse portfolios. The acceptance threshold is mutable state:
// the scheduler re-estimates it from settled history.
type DecisionService struct {
	settledRepo      repository.SettledTicketRepository
	mu               sync.RWMutex
	thresholds       decision.Thresholds
	bucketWidth      float64
	minBucketSamples int
	penaltyWeight    float64
	leagueWeights    map[string]portfolio.CorrelationWeights
	audit            *logger.AuditLogger
	logger           *logrus.Logger
}

// NewDecisionService creates a decision service.
func NewDecisionService(
	settledRepo repository.SettledTicketRepository,
	thresholds decision.Thresholds,
	minBucketSamples int,
	penaltyWeight float64,
	leagueWeights map[string]portfolio.CorrelationWeights,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) (*DecisionService, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision thresholds: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	if minBucketSamples <= 0 {
		minBucketSamples = decision.DefaultMinBucketSamples
	}
	if penaltyWeight < 0 {
		penaltyWeight = portfolio.DefaultCorrelationPenaltyWeight
	}

	metrics.AcceptanceThreshold.Set(thresholds.MinScore)

	return &DecisionService{
		settledRepo:      settledRepo,
		thresholds:       thresholds,
		bucketWidth:      decision.DefaultBucketWidth,
		minBucketSamples: minBucketSamples,
		penaltyWeight:    penaltyWeight,
		leagueWeights:    leagueWeights,
		audit:            audit,
		logger:           log,
	}, nil
}

// Thresholds returns a copy of the current accept-gate thresholds.
func (s *DecisionService) Thresholds() decision.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// EvaluateTicket scores a ticket's picks and applies the accept gate.
func (s *DecisionService) EvaluateTicket(ctx context.Context, ticketID uuid.UUID, picks []models.Pick) (*models.TicketEvaluation, error) {
	eval, err := decision.EvaluateTicket(picks, s.Thresholds())
	if err != nil {
		return nil, fmt.Errorf("ticket evaluation failed: %w", err)
	}
	eval.ID = ticketID

	for _, pick := range eval.Picks {
		if pick.HardContradiction {
			metrics.HardContradictionsTotal.Inc()
			s.logger.WithFields(logrus.Fields{
				"ticket_id":  ticketID,
				"fixture_id": pick.Pick.FixtureID,
				"selection":  pick.Pick.Selection,
				"reason":     pick.ContradictionReason,
			}).Warn("Hard contradiction detected")
		}
	}

	metrics.RecordTicketDecision(eval.Accepted, eval.RejectionReason)
	if s.audit != nil {
		s.audit.LogTicketDecision(ticketID.String(), eval.Accepted, eval.Score, eval.ContradictionCount, eval.RejectionReason)
	}

	return &eval, nil
}

// SelectPortfolio greedily picks up to size tickets balancing aggregate
// score against mutual correlation.
func (s *DecisionService) SelectPortfolio(candidates []models.TicketEvaluation, size int) models.Portfolio {
	start := time.Now()
	defer func() {
		metrics.PortfolioSelectionDuration.Observe(time.Since(start).Seconds())
	}()

	return portfolio.SelectPortfolio(candidates, size, s.penaltyWeight)
}

// FixtureCorrelations builds the fixture correlation matrix used for
// portfolio diagnostics.
func (s *DecisionService) FixtureCorrelations(fixtures []models.Fixture) (models.CorrelationMatrix, error) {
	return portfolio.BuildCorrelationMatrix(fixtures, s.leagueWeights)
}

// RecordSettlement stores a settled ticket for threshold re-estimation.
func (s *DecisionService) RecordSettlement(ctx context.Context, ticket *models.SettledTicket) error {
	return s.settledRepo.Record(ctx, ticket)
}

// ReestimateThreshold re-derives the minimum acceptance score from settled
// history and installs it. Insufficient history leaves the current
// threshold untouched.
func (s *DecisionService) ReestimateThreshold(ctx context.Context) (float64, error) {
	history, err := s.settledRepo.GetSince(ctx, time.Now().Add(-thresholdHistoryWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to load settled tickets: %w", err)
	}

	estimated, err := decision.EstimateScoreThreshold(history, s.bucketWidth, s.minBucketSamples)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			s.logger.WithField("history_size", len(history)).Info("Keeping acceptance threshold, insufficient settled history")
			return s.Thresholds().MinScore, nil
		}
		return 0, err
	}

	s.mu.Lock()
	old := s.thresholds.MinScore
	s.thresholds.MinScore = estimated
	s.mu.Unlock()

	metrics.AcceptanceThreshold.Set(estimated)
	if s.audit != nil {
		s.audit.LogThresholdUpdate(old, estimated, len(history))
	}

	return estimated, nil
}
