// Package main provides the entry point for the probability engine daemon.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/datasource"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/decision"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/draw"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/health"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/logger"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/monitor"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/portfolio"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/scheduler"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.LoadWithDefaults(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Football probability engine starting")

	metrics.InitRegistry()
	audit := logger.NewAuditLogger(appLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	drawConfig, err := draw.NewConfig(
		cfg.Draw.WeightPoisson,
		cfg.Draw.WeightDixonColes,
		cfg.Draw.WeightMarket,
		cfg.Draw.DrawFloor,
		cfg.Draw.DrawCap,
	)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid draw configuration")
	}

	params := models.ModelParameters{
		Rho:           cfg.Model.Rho,
		TimeDecay:     cfg.Model.TimeDecay,
		HomeAdvantage: cfg.Model.HomeAdvantage,
		ModelVersion:  cfg.Model.ModelVersion,
	}

	curveCache := service.NewCurveCache(time.Duration(cfg.Calibration.CurveCacheTTL) * time.Second)
	temperature := service.NewTemperatureStore()
	entropyMonitor := monitor.NewEntropyMonitor(
		cfg.Monitor.WindowSize,
		cfg.Monitor.WarningThreshold,
		cfg.Monitor.CriticalThreshold,
	)

	predictionSvc := service.NewPredictionService(
		repos.Calibration, repos.PredictionLog,
		curveCache, temperature, entropyMonitor,
		params, drawConfig, cfg.Draw.LeaguePriors, appLog,
	)

	calibrationSvc := service.NewCalibrationService(
		repos.Calibration, repos.PredictionLog,
		curveCache, temperature,
		cfg.Calibration.MinSamples, cfg.Model.ModelVersion,
		audit, appLog,
	)

	thresholds := decision.Thresholds{
		MinScore:           cfg.Decision.MinScore,
		MaxContradictions:  cfg.Decision.MaxContradictions,
		DrawEntropyPenalty: cfg.Decision.DrawEntropyPenalty,
		LeagueWeights:      cfg.Decision.LeagueWeights,
	}
	decisionSvc, err := service.NewDecisionService(
		repos.SettledTicket, thresholds,
		cfg.Decision.MinBucketSamples,
		cfg.Portfolio.CorrelationPenaltyWeight,
		correlationOverrides(cfg.Portfolio.LeagueWeightOverrides),
		audit, appLog,
	)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize decision service")
	}

	oddsFeed := datasource.NewOddsFeedClient(&cfg.OddsFeed, appLog)
	defer oddsFeed.Close()
	ingestionSvc := service.NewIngestionService(
		oddsFeed, predictionSvc, nil,
		time.Duration(cfg.OddsFeed.LookaheadHours)*time.Hour,
		appLog,
	)
	if _, err := ingestionSvc.IngestOnce(ctx); err != nil {
		appLog.WithError(err).Warn("Initial odds ingestion failed; continuing with scheduled polls")
	}

	var stream *datasource.StreamClient
	if cfg.OddsFeed.StreamURL != "" {
		stream = datasource.NewStreamClient(cfg.OddsFeed.StreamURL, cfg.OddsFeed.APIKey, appLog)
		ingestionSvc.AttachStream(stream)
		go func() {
			if err := stream.ConnectWithRetry(ctx); err != nil {
				appLog.WithError(err).Error("Odds stream connection failed")
				return
			}
			if err := stream.Authenticate(ctx); err != nil {
				appLog.WithError(err).Error("Odds stream authentication failed")
				return
			}
			if err := stream.Subscribe(ctx, ingestionSvc.TrackedFixtureIDs()); err != nil {
				appLog.WithError(err).Error("Odds stream subscription failed")
			}
		}()
	}

	sched := scheduler.NewScheduler(
		predictionSvc, calibrationSvc, decisionSvc, ingestionSvc,
		configuredLeagues(cfg), audit, appLog,
	)
	if cfg.Scheduler.Enabled {
		if err := sched.ScheduleOddsIngestion(cfg.OddsFeed.PollEvery); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule odds ingestion")
		}
		if err := sched.ScheduleCalibrationRefit(cfg.Calibration.RefitSchedule); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule calibration refit")
		}
		if err := sched.ScheduleThresholdReestimation(cfg.Decision.ThresholdSchedule); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule threshold re-estimation")
		}
		if err := sched.ScheduleEntropyReport(cfg.Scheduler.EntropyReportEvery); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule entropy report")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	} else {
		appLog.Info("Scheduler disabled; background jobs will not run")
	}

	healthServer := health.NewServer(health.Config{
		ServiceName:  cfg.App.Name,
		Version:      Version,
		Commit:       GitCommit,
		Port:         strconv.Itoa(cfg.Metrics.Port),
		Logger:       appLog,
		DB:           db,
		Entropy:      predictionSvc,
		ServeMetrics: cfg.Metrics.Enabled,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"scheduler": cfg.Scheduler.Enabled,
		"metrics":   cfg.Metrics.Enabled,
		"leagues":   len(configuredLeagues(cfg)),
	}).Info("Engine is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			appLog.WithError(err).Error("Error during odds stream shutdown")
		}
	}
	cancel()
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during health server shutdown")
	}

	appLog.Info("Engine stopped")
}

func configPath() string {
	if path := os.Getenv("FOOTBALL_ENGINE_CONFIG"); path != "" {
		return path
	}
	return "config/config.yaml"
}

// configuredLeagues derives the refit league set from the draw priors and
// decision league weights, deduplicated and sorted for stable job logs.
func configuredLeagues(cfg *config.Config) []string {
	seen := make(map[string]struct{})
	for leagueID := range cfg.Draw.LeaguePriors {
		seen[leagueID] = struct{}{}
	}
	for leagueID := range cfg.Decision.LeagueWeights {
		seen[leagueID] = struct{}{}
	}

	leagues := make([]string, 0, len(seen))
	for leagueID := range seen {
		leagues = append(leagues, leagueID)
	}
	sort.Strings(leagues)
	return leagues
}

func correlationOverrides(overrides map[string]config.CorrelationWeights) map[string]portfolio.CorrelationWeights {
	if len(overrides) == 0 {
		return nil
	}
	out := make(map[string]portfolio.CorrelationWeights, len(overrides))
	for leagueID, w := range overrides {
		out[leagueID] = portfolio.CorrelationWeights{
			SameLeague: w.SameLeague,
			Kickoff:    w.Kickoff,
			OddsShape:  w.OddsShape,
			DrawRegime: w.DrawRegime,
			TotalGoals: w.TotalGoals,
		}
	}
	return out
}
