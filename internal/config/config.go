// Package config provides configuration management for the football
// probability engine.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Model       ModelConfig       `mapstructure:"model" validate:"required"`
	Draw        DrawConfig        `mapstructure:"draw" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Decision    DecisionConfig    `mapstructure:"decision" validate:"required"`
	Portfolio   PortfolioConfig   `mapstructure:"portfolio" validate:"required"`
	Monitor     MonitorConfig     `mapstructure:"monitor" validate:"required"`
	OddsFeed    OddsFeedConfig    `mapstructure:"odds_feed" validate:"required"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ModelConfig holds the goal-expectancy model defaults used when the
// training store has nothing newer for a league.
type ModelConfig struct {
	Rho           float64 `mapstructure:"rho" validate:"gte=-0.5,lte=0.5"`
	TimeDecay     float64 `mapstructure:"time_decay" validate:"gte=0"`
	HomeAdvantage float64 `mapstructure:"home_advantage"`
	ModelVersion  string  `mapstructure:"model_version" validate:"required"`
}

// DrawConfig holds the draw blending weights, the hard floor/cap, and the
// per-league historical draw priors consumed by the draw-signal heuristic.
// Unknown leagues simply omit the prior term.
type DrawConfig struct {
	WeightPoisson    float64            `mapstructure:"weight_poisson" validate:"gte=0,lte=1"`
	WeightDixonColes float64            `mapstructure:"weight_dixon_coles" validate:"gte=0,lte=1"`
	WeightMarket     float64            `mapstructure:"weight_market" validate:"gte=0,lte=1"`
	DrawFloor        float64            `mapstructure:"draw_floor" validate:"gte=0,lt=1"`
	DrawCap          float64            `mapstructure:"draw_cap" validate:"gt=0,lte=1"`
	LeaguePriors     map[string]float64 `mapstructure:"league_priors"`
}

// CalibrationConfig configures curve fitting and temperature learning.
type CalibrationConfig struct {
	MinSamples     int    `mapstructure:"min_samples" validate:"required,gt=0"`
	CurveCacheTTL  int    `mapstructure:"curve_cache_ttl_seconds" validate:"required,gt=0"`
	RefitSchedule  string `mapstructure:"refit_schedule" validate:"required"`
}

// DecisionConfig configures the accept/reject gate.
type DecisionConfig struct {
	MinScore           float64            `mapstructure:"min_score"`
	MaxContradictions  int                `mapstructure:"max_contradictions" validate:"gte=0"`
	DrawEntropyPenalty float64            `mapstructure:"draw_entropy_penalty" validate:"gte=0"`
	LeagueWeights      map[string]float64 `mapstructure:"league_weights"`
	// ThresholdSchedule drives the periodic re-estimation of MinScore from
	// settled-ticket history.
	ThresholdSchedule  string `mapstructure:"threshold_schedule" validate:"required"`
	MinBucketSamples   int    `mapstructure:"min_bucket_samples" validate:"gt=0"`
}

// PortfolioConfig configures correlation-aware selection.
type PortfolioConfig struct {
	CorrelationPenaltyWeight float64                       `mapstructure:"correlation_penalty_weight" validate:"gte=0"`
	LeagueWeightOverrides    map[string]CorrelationWeights `mapstructure:"league_weight_overrides"`
}

// CorrelationWeights mirrors the five-factor fixture-correlation weights in
// configuration form.
type CorrelationWeights struct {
	SameLeague float64 `mapstructure:"same_league" validate:"gte=0"`
	Kickoff    float64 `mapstructure:"kickoff" validate:"gte=0"`
	OddsShape  float64 `mapstructure:"odds_shape" validate:"gte=0"`
	DrawRegime float64 `mapstructure:"draw_regime" validate:"gte=0"`
	TotalGoals float64 `mapstructure:"total_goals" validate:"gte=0"`
}

// MonitorConfig configures the entropy monitor.
type MonitorConfig struct {
	WindowSize        int     `mapstructure:"window_size" validate:"required,gt=0"`
	WarningThreshold  float64 `mapstructure:"warning_threshold" validate:"required,gt=0,lt=1"`
	CriticalThreshold float64 `mapstructure:"critical_threshold" validate:"required,gt=0,lt=1"`
}

// OddsFeedConfig configures the market-odds ingestion client.
type OddsFeedConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL      string  `mapstructure:"stream_url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	PollEvery      string  `mapstructure:"poll_every" validate:"required"`
	LookaheadHours int     `mapstructure:"lookahead_hours" validate:"required,gt=0"`
}

// SchedulerConfig enables the background jobs.
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	EntropyReportEvery string `mapstructure:"entropy_report_every" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// String renders a redacted summary safe for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{app=%s env=%s db=%s:%d/%s model=%s}",
		c.App.Name, c.App.Environment, c.Database.Host, c.Database.Port, c.Database.Name, c.Model.ModelVersion)
}
