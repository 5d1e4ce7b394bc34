package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "football-probability-engine",
			Environment: "development",
			LogLevel:    "info",
		},
		Database: DatabaseConfig{
			Host:               "localhost",
			Port:               5432,
			Name:               "engine",
			User:               "engine",
			Password:           "secret",
			SSLMode:            "disable",
			MaxConnections:     10,
			MaxIdleConnections: 2,
		},
		Model: ModelConfig{
			Rho:           -0.13,
			TimeDecay:     0.0065,
			HomeAdvantage: 0.25,
			ModelVersion:  "v1",
		},
		Draw: DrawConfig{
			WeightPoisson:    0.55,
			WeightDixonColes: 0.30,
			WeightMarket:     0.15,
			DrawFloor:        0.18,
			DrawCap:          0.38,
			LeaguePriors:     map[string]float64{"EPL": 0.25},
		},
		Calibration: CalibrationConfig{
			MinSamples:    50,
			CurveCacheTTL: 300,
			RefitSchedule: "0 3 * * *",
		},
		Decision: DecisionConfig{
			MinScore:           0.12,
			MaxContradictions:  1,
			DrawEntropyPenalty: 0.10,
			ThresholdSchedule:  "0 4 * * 1",
			MinBucketSamples:   30,
		},
		Portfolio: PortfolioConfig{CorrelationPenaltyWeight: 0.5},
		Monitor: MonitorConfig{
			WindowSize:        500,
			WarningThreshold:  0.45,
			CriticalThreshold: 0.35,
		},
		OddsFeed: OddsFeedConfig{
			BaseURL:        "https://odds.example.com",
			TimeoutSeconds: 30,
			MaxRetries:     5,
			RateLimit:      10.0,
			PollEvery:      "@every 15m",
			LookaheadHours: 72,
		},
		Scheduler: SchedulerConfig{Enabled: true, EntropyReportEvery: "@every 15m"},
		Metrics:   MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validTestConfig()))
}

func TestValidateRejectsBadWeightSum(t *testing.T) {
	cfg := validTestConfig()
	cfg.Draw.WeightPoisson = 0.80
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}

func TestValidateRejectsFloorAboveCap(t *testing.T) {
	cfg := validTestConfig()
	cfg.Draw.DrawFloor = 0.40
	cfg.Draw.DrawCap = 0.38
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw_floor")
}

func TestValidateRejectsInvertedMonitorThresholds(t *testing.T) {
	cfg := validTestConfig()
	cfg.Monitor.CriticalThreshold = 0.50
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validTestConfig()
	cfg.App.Environment = "sandbox"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsProductionWithoutSSL(t *testing.T) {
	cfg := validTestConfig()
	cfg.App.Environment = "production"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSL")
}

func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.55, cfg.Draw.WeightPoisson)
	assert.Equal(t, 0.12, cfg.Decision.MinScore)
	assert.Equal(t, 500, cfg.Monitor.WindowSize)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	os.Setenv("TEST_ENGINE_DB_PASSWORD", "supersecret")
	defer os.Unsetenv("TEST_ENGINE_DB_PASSWORD")

	yaml := `
app:
  name: football-probability-engine
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: engine
  user: engine
  password: ${TEST_ENGINE_DB_PASSWORD}
  ssl_mode: disable
  max_connections: 10
  max_idle_connections: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "supersecret", cfg.Database.Password)
}
