package models

import (
	"fmt"
	"math"
)

// Outcome identifies one side of a three-way football market.
type Outcome string

// Three-way market outcomes
const (
	OutcomeHome Outcome = "H"
	OutcomeDraw Outcome = "D"
	OutcomeAway Outcome = "A"
)

// Valid reports whether the outcome is one of H, D, A.
func (o Outcome) Valid() bool {
	return o == OutcomeHome || o == OutcomeDraw || o == OutcomeAway
}

// Outcomes lists the three outcomes in market order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}
}

// ProbabilitySumTolerance is the permitted drift when checking that a
// three-way distribution sums to one.
const ProbabilitySumTolerance = 1e-6

// OutcomeProbabilities is a three-way distribution over {home, draw, away}
// together with its Shannon entropy (base 2).
type OutcomeProbabilities struct {
	Home    float64 `json:"home" validate:"gte=0,lte=1"`
	Draw    float64 `json:"draw" validate:"gte=0,lte=1"`
	Away    float64 `json:"away" validate:"gte=0,lte=1"`
	Entropy float64 `json:"entropy" validate:"gte=0"`
}

// Sum returns home+draw+away.
func (p OutcomeProbabilities) Sum() float64 {
	return p.Home + p.Draw + p.Away
}

// Get returns the probability assigned to a single outcome.
func (p OutcomeProbabilities) Get(o Outcome) float64 {
	switch o {
	case OutcomeHome:
		return p.Home
	case OutcomeDraw:
		return p.Draw
	case OutcomeAway:
		return p.Away
	}
	return 0
}

// Validate checks the distribution invariants: each component in [0,1] and
// the triple summing to one within tolerance.
func (p OutcomeProbabilities) Validate() error {
	for _, o := range Outcomes() {
		v := p.Get(o)
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s probability %f out of range", ErrProbabilityInvariant, o, v)
		}
	}
	if math.Abs(p.Sum()-1.0) > ProbabilitySumTolerance {
		return fmt.Errorf("%w: sum %f", ErrProbabilityInvariant, p.Sum())
	}
	return nil
}

// Favorite returns the outcome carrying the largest probability mass.
func (p OutcomeProbabilities) Favorite() Outcome {
	best := OutcomeHome
	if p.Draw > p.Get(best) {
		best = OutcomeDraw
	}
	if p.Away > p.Get(best) {
		best = OutcomeAway
	}
	return best
}
