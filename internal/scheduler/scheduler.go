// Package scheduler runs the periodic maintenance jobs: odds-feed polls,
// calibration curve refits, acceptance-threshold re-estimation, and entropy
// status reports.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/logger"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/service"
)

const (
	refitJobTimeout     = 30 * time.Minute
	thresholdJobTimeout = 5 * time.Minute
	ingestJobTimeout    = 10 * time.Minute
)

// Scheduler manages the cron-driven background jobs.
type Scheduler struct {
	cron            *cron.Cron
	predictionSvc   *service.PredictionService
	calibrationSvc  *service.CalibrationService
	decisionSvc     *service.DecisionService
	ingestionSvc    *service.IngestionService
	leagueIDs       []string
	audit           *logger.AuditLogger
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler. leagueIDs is the set of leagues the
// refit job covers.
func NewScheduler(
	predictionSvc *service.PredictionService,
	calibrationSvc *service.CalibrationService,
	decisionSvc *service.DecisionService,
	ingestionSvc *service.IngestionService,
	leagueIDs []string,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *Scheduler {
	if log == nil {
		log = logrus.New()
	}

	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		predictionSvc:   predictionSvc,
		calibrationSvc:  calibrationSvc,
		decisionSvc:     decisionSvc,
		ingestionSvc:    ingestionSvc,
		leagueIDs:       leagueIDs,
		audit:           audit,
		logger:          log,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleOddsIngestion schedules the periodic odds-feed poll that pulls
// upcoming fixtures into the prediction pipeline.
func (s *Scheduler) ScheduleOddsIngestion(cronExpression string) error {
	return s.addJob(cronExpression, "odds_ingestion", func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestJobTimeout)
		defer cancel()

		predictions, err := s.ingestionSvc.IngestOnce(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Scheduled odds ingestion failed")
			return
		}
		s.logger.WithField("predictions", len(predictions)).Info("Scheduled odds ingestion completed")
	})
}

// ScheduleCalibrationRefit schedules the periodic curve refit across all
// configured leagues.
func (s *Scheduler) ScheduleCalibrationRefit(cronExpression string) error {
	return s.addJob(cronExpression, "calibration_refit", func() {
		ctx, cancel := context.WithTimeout(context.Background(), refitJobTimeout)
		defer cancel()

		results := s.calibrationSvc.RefitLeagues(ctx, s.leagueIDs)

		activated := 0
		for _, r := range results {
			if r.Activated {
				activated++
			}
		}
		s.logger.WithFields(logrus.Fields{
			"scopes":    len(results),
			"activated": activated,
		}).Info("Scheduled calibration refit completed")
	})
}

// ScheduleThresholdReestimation schedules the acceptance-threshold update
// from settled-ticket history.
func (s *Scheduler) ScheduleThresholdReestimation(cronExpression string) error {
	return s.addJob(cronExpression, "threshold_reestimation", func() {
		ctx, cancel := context.WithTimeout(context.Background(), thresholdJobTimeout)
		defer cancel()

		threshold, err := s.decisionSvc.ReestimateThreshold(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Scheduled threshold re-estimation failed")
			return
		}
		s.logger.WithField("threshold", threshold).Info("Scheduled threshold re-estimation completed")
	})
}

// ScheduleEntropyReport schedules the periodic entropy monitor snapshot.
// Both cron expressions and @every intervals are accepted.
func (s *Scheduler) ScheduleEntropyReport(cronExpression string) error {
	return s.addJob(cronExpression, "entropy_report", func() {
		snap := s.predictionSvc.EntropySnapshot()
		if s.audit != nil {
			s.audit.LogEntropyStatus(snap.Status, snap.Mean, snap.P10, snap.P90, snap.Count)
		}
	})
}

func (s *Scheduler) addJob(cronExpression, name string, jobFunc func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"schedule": cronExpression,
	}).Info("Scheduled job")

	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to the
// graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest next scheduled run time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}
