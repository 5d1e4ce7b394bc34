// Package calibration fits and applies post-hoc probability corrections:
// per-outcome isotonic regression curves and a bounded temperature-softening
// scalar. Fitting fails loudly on thin or imbalanced samples rather than
// producing a degenerate curve.
package calibration

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

const (
	// DefaultMinSamples is the minimum pair count before an isotonic fit is
	// attempted.
	DefaultMinSamples = 50
	// minPositiveRate guards rare outcome classes: below this observed
	// positive rate a fit would mostly learn the base rate's noise.
	minPositiveRate = 0.05
)

// Fit runs pool-adjacent-violators isotonic regression over
// (predicted probability, realized outcome) pairs for one outcome class and
// returns a new, inactive curve scoped to (outcome, league, model-version).
//
// Fitting fails with models.ErrInsufficientData when fewer than minSamples
// pairs are supplied or the observed positive rate is under 5%.
func Fit(outcome models.Outcome, leagueID, modelVersion string, samples []models.CalibrationSample, minSamples int) (*models.CalibrationCurve, error) {
	if !outcome.Valid() {
		return nil, models.ErrInvalidOutcome
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	if len(samples) < minSamples {
		return nil, fmt.Errorf("%w: need %d, got %d", models.ErrInsufficientData, minSamples, len(samples))
	}

	positives := 0
	for _, s := range samples {
		if s.Realized != 0 {
			positives++
		}
	}
	if rate := float64(positives) / float64(len(samples)); rate < minPositiveRate {
		return nil, fmt.Errorf("%w: positive rate %.3f below %.2f for outcome %s",
			models.ErrInsufficientData, rate, minPositiveRate, outcome)
	}

	sorted := make([]models.CalibrationSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Predicted < sorted[j].Predicted })

	knots := poolAdjacentViolators(sorted)

	curve := &models.CalibrationCurve{
		ID:           uuid.New(),
		Outcome:      outcome,
		LeagueID:     leagueID,
		ModelVersion: modelVersion,
		Knots:        knots,
		SampleCount:  len(samples),
		Active:       false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := curve.Validate(); err != nil {
		return nil, fmt.Errorf("isotonic fit produced invalid curve: %w", err)
	}
	return curve, nil
}

// block is one pooled segment during PAV: samples whose fitted value has
// been averaged to restore monotonicity.
type block struct {
	sumX   float64
	sumY   float64
	weight float64
}

func (b block) meanX() float64 { return b.sumX / b.weight }
func (b block) meanY() float64 { return b.sumY / b.weight }

func poolAdjacentViolators(sorted []models.CalibrationSample) []models.CurveKnot {
	blocks := make([]block, 0, len(sorted))
	for _, s := range sorted {
		blocks = append(blocks, block{sumX: s.Predicted, sumY: float64(s.Realized), weight: 1})
		// Merge backward while the monotonicity constraint is violated.
		for len(blocks) >= 2 {
			last := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			if prev.meanY() <= last.meanY() {
				break
			}
			merged := block{
				sumX:   prev.sumX + last.sumX,
				sumY:   prev.sumY + last.sumY,
				weight: prev.weight + last.weight,
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, merged)
		}
	}

	knots := make([]models.CurveKnot, 0, len(blocks))
	for _, b := range blocks {
		knots = append(knots, models.CurveKnot{X: b.meanX(), Y: b.meanY()})
	}
	return dedupeKnots(knots)
}

// dedupeKnots collapses knots sharing an x coordinate (possible when many
// samples carry the exact same prediction), keeping the pooled y, and pads a
// single-knot result into a flat two-knot curve so interpolation is defined.
func dedupeKnots(knots []models.CurveKnot) []models.CurveKnot {
	out := knots[:0]
	for _, k := range knots {
		if len(out) > 0 && k.X <= out[len(out)-1].X {
			out[len(out)-1].Y = k.Y
			continue
		}
		out = append(out, k)
	}
	if len(out) == 1 {
		only := out[0]
		out = []models.CurveKnot{{X: 0, Y: only.Y}, {X: 1, Y: only.Y}}
	}
	return out
}
