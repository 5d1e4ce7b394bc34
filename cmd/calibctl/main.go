// Package main provides calibctl, the calibration operations CLI: fitting,
// activating, and rolling back curves, and learning the softening
// temperature from exported history.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/logger"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/repository"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/service"
)

var (
	configFile string
	leagueID   string
	outcome    string

	cfg            *config.Config
	appLog         *logrus.Logger
	db             *database.DB
	calibrationSvc *service.CalibrationService
)

const commandTimeout = 60 * time.Second

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	fitCmd.Flags().StringVar(&leagueID, "league", "", "League identifier (required)")
	fitCmd.Flags().StringVar(&outcome, "outcome", "", "Outcome class: H, D, or A (required)")
	fitCmd.MarkFlagRequired("league")
	fitCmd.MarkFlagRequired("outcome")

	listCmd.Flags().StringVar(&leagueID, "league", "", "League identifier (required)")
	listCmd.Flags().StringVar(&outcome, "outcome", "", "Outcome class: H, D, or A (required)")
	listCmd.MarkFlagRequired("league")
	listCmd.MarkFlagRequired("outcome")

	rootCmd.AddCommand(fitCmd, activateCmd, rollbackCmd, listCmd, temperatureCmd)
}

var rootCmd = &cobra.Command{
	Use:   "calibctl",
	Short: "Manage calibration curves and temperature",
	Long:  `Fits, activates, rolls back, and inspects calibration curves, and learns the softening temperature from exported prediction history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		appLog = logger.NewLogger("warn")

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}

		calibrationSvc = service.NewCalibrationService(
			repos.Calibration, repos.PredictionLog,
			service.NewCurveCache(time.Minute),
			service.NewTemperatureStore(),
			cfg.Calibration.MinSamples, cfg.Model.ModelVersion,
			logger.NewAuditLogger(appLog), appLog,
		)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func parseScope() (models.CurveScope, error) {
	o := models.Outcome(outcome)
	if !o.Valid() {
		return models.CurveScope{}, fmt.Errorf("invalid outcome %q, want H, D, or A", outcome)
	}
	return models.CurveScope{
		Outcome:      o,
		LeagueID:     leagueID,
		ModelVersion: cfg.Model.ModelVersion,
	}, nil
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a new inactive curve for a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := parseScope()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		curve, err := calibrationSvc.FitCurve(ctx, scope)
		if err != nil {
			return err
		}

		fmt.Printf("Fitted curve %s for %s\n", curve.ID, scope.String())
		fmt.Printf("  samples: %d\n", curve.SampleCount)
		fmt.Printf("  knots:   %d\n", len(curve.Knots))
		fmt.Println("Curve is inactive; run 'calibctl activate' to install it.")
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <curve-id>",
	Short: "Activate a fitted curve, replacing the scope's current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		curveID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid curve id %q: %w", args[0], err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := calibrationSvc.ActivateCurve(ctx, curveID); err != nil {
			return err
		}
		fmt.Printf("Activated curve %s\n", curveID)
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <curve-id>",
	Short: "Reactivate a previously fitted curve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		curveID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid curve id %q: %w", args[0], err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := calibrationSvc.Rollback(ctx, curveID); err != nil {
			return err
		}
		fmt.Printf("Rolled back to curve %s\n", curveID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fit history for a scope, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := parseScope()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		curves, err := calibrationSvc.ListCurves(ctx, scope)
		if err != nil {
			return err
		}
		if len(curves) == 0 {
			fmt.Printf("No curves fitted for %s\n", scope.String())
			return nil
		}

		fmt.Printf("Curves for %s:\n", scope.String())
		for _, curve := range curves {
			marker := " "
			if curve.Active {
				marker = "*"
			}
			fmt.Printf("%s %s  samples=%-6d knots=%-3d fitted=%s\n",
				marker, curve.ID, curve.SampleCount, len(curve.Knots),
				curve.CreatedAt.UTC().Format(time.RFC3339))
		}
		return nil
	},
}

// temperatureHistory is the exported prediction/outcome history format the
// temperature command consumes.
type temperatureHistory struct {
	Predictions []models.OutcomeProbabilities `json:"predictions"`
	Actuals     []models.Outcome              `json:"actuals"`
}

var temperatureCmd = &cobra.Command{
	Use:   "temperature <history.json>",
	Short: "Learn the softening temperature from exported history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read history file: %w", err)
		}

		var history temperatureHistory
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("failed to parse history file: %w", err)
		}

		setting, err := calibrationSvc.UpdateTemperature(history.Predictions, history.Actuals)
		if err != nil {
			return err
		}

		fmt.Printf("Learned temperature %.2f\n", setting.Value)
		fmt.Printf("  mean log loss: %.6f\n", setting.FittedLogLoss)
		fmt.Printf("  samples:       %d\n", setting.SampleCount)
		return nil
	},
}
