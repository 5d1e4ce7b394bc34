// Package config provides configuration management for the football
// probability engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "FOOTBALL_ENGINE"

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders in the YAML file (${VAR})
// are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for optional fields, so
// a partial file (or none at all) still yields a runnable development
// configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "football-probability-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("model.rho", -0.13)
	v.SetDefault("model.time_decay", 0.0065)
	v.SetDefault("model.home_advantage", 0.25)
	v.SetDefault("model.model_version", "v1")
	v.SetDefault("draw.weight_poisson", 0.55)
	v.SetDefault("draw.weight_dixon_coles", 0.30)
	v.SetDefault("draw.weight_market", 0.15)
	v.SetDefault("draw.draw_floor", 0.18)
	v.SetDefault("draw.draw_cap", 0.38)
	v.SetDefault("calibration.min_samples", 50)
	v.SetDefault("calibration.curve_cache_ttl_seconds", 300)
	v.SetDefault("calibration.refit_schedule", "0 3 * * *")
	v.SetDefault("decision.min_score", 0.12)
	v.SetDefault("decision.max_contradictions", 1)
	v.SetDefault("decision.draw_entropy_penalty", 0.10)
	v.SetDefault("decision.threshold_schedule", "0 4 * * 1")
	v.SetDefault("decision.min_bucket_samples", 30)
	v.SetDefault("portfolio.correlation_penalty_weight", 0.5)
	v.SetDefault("monitor.window_size", 500)
	v.SetDefault("monitor.warning_threshold", 0.45)
	v.SetDefault("monitor.critical_threshold", 0.35)
	v.SetDefault("odds_feed.timeout_seconds", 30)
	v.SetDefault("odds_feed.max_retries", 5)
	v.SetDefault("odds_feed.rate_limit", 10.0)
	v.SetDefault("odds_feed.poll_every", "@every 15m")
	v.SetDefault("odds_feed.lookahead_hours", 72)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.entropy_report_every", "@every 15m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
