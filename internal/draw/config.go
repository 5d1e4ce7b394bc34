// Package draw models draw likelihood: a multi-signal draw-proneness
// heuristic, structural home-away compression, and blending of Poisson,
// Dixon-Coles and market-implied draw estimates under hard safety bounds.
package draw

import (
	"fmt"
	"math"
)

// Default blending weights and safety bounds. These constants were chosen
// empirically upstream; behavioral parity matters more than elegance.
const (
	DefaultWeightPoisson    = 0.55
	DefaultWeightDixonColes = 0.30
	DefaultWeightMarket     = 0.15
	DefaultDrawFloor        = 0.18
	DefaultDrawCap          = 0.38
)

const weightSumTolerance = 1e-9

// Config holds the blending weights and the hard floor/cap applied to every
// draw estimate. Invalid configurations are rejected at construction, never
// silently corrected.
type Config struct {
	WeightPoisson    float64 `mapstructure:"weight_poisson" json:"weight_poisson" validate:"gte=0,lte=1"`
	WeightDixonColes float64 `mapstructure:"weight_dixon_coles" json:"weight_dixon_coles" validate:"gte=0,lte=1"`
	WeightMarket     float64 `mapstructure:"weight_market" json:"weight_market" validate:"gte=0,lte=1"`
	DrawFloor        float64 `mapstructure:"draw_floor" json:"draw_floor" validate:"gte=0,lt=1"`
	DrawCap          float64 `mapstructure:"draw_cap" json:"draw_cap" validate:"gt=0,lte=1"`
}

// NewConfig validates and returns a blending configuration.
func NewConfig(wPoisson, wDixonColes, wMarket, floor, cap float64) (Config, error) {
	cfg := Config{
		WeightPoisson:    wPoisson,
		WeightDixonColes: wDixonColes,
		WeightMarket:     wMarket,
		DrawFloor:        floor,
		DrawCap:          cap,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WeightPoisson:    DefaultWeightPoisson,
		WeightDixonColes: DefaultWeightDixonColes,
		WeightMarket:     DefaultWeightMarket,
		DrawFloor:        DefaultDrawFloor,
		DrawCap:          DefaultDrawCap,
	}
}

// Validate enforces the construction invariants: weights summing to one and
// floor strictly below cap.
func (c Config) Validate() error {
	sum := c.WeightPoisson + c.WeightDixonColes + c.WeightMarket
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("draw blending weights must sum to 1, got %f", sum)
	}
	if c.WeightPoisson < 0 || c.WeightDixonColes < 0 || c.WeightMarket < 0 {
		return fmt.Errorf("draw blending weights must be non-negative")
	}
	if c.DrawFloor >= c.DrawCap {
		return fmt.Errorf("draw floor %f must be below cap %f", c.DrawFloor, c.DrawCap)
	}
	if c.DrawFloor < 0 || c.DrawCap > 1 {
		return fmt.Errorf("draw bounds [%f, %f] outside [0,1]", c.DrawFloor, c.DrawCap)
	}
	return nil
}

// ClampDraw applies the hard floor/cap to a draw estimate.
func (c Config) ClampDraw(p float64) float64 {
	return clamp(p, c.DrawFloor, c.DrawCap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
