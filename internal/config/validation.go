// Package config provides configuration management for the football
// probability engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations that struct tags
// cannot express. Malformed numerical configuration is rejected here, never
// silently corrected.
func validateCrossField(cfg *Config) error {
	weightSum := cfg.Draw.WeightPoisson + cfg.Draw.WeightDixonColes + cfg.Draw.WeightMarket
	if math.Abs(weightSum-1.0) > 1e-9 {
		return fmt.Errorf("draw blending weights must sum to 1, got %f", weightSum)
	}
	if cfg.Draw.DrawFloor >= cfg.Draw.DrawCap {
		return fmt.Errorf("draw_floor %f must be below draw_cap %f", cfg.Draw.DrawFloor, cfg.Draw.DrawCap)
	}

	if cfg.Monitor.CriticalThreshold >= cfg.Monitor.WarningThreshold {
		return fmt.Errorf("monitor critical_threshold %f must be below warning_threshold %f",
			cfg.Monitor.CriticalThreshold, cfg.Monitor.WarningThreshold)
	}

	for league, w := range cfg.Decision.LeagueWeights {
		if w < 0 {
			return fmt.Errorf("decision league weight for %s must be non-negative, got %f", league, w)
		}
	}
	for league, prior := range cfg.Draw.LeaguePriors {
		if prior < 0 || prior > 1 {
			return fmt.Errorf("draw league prior for %s must be in [0,1], got %f", league, prior)
		}
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
