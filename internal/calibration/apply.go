package calibration

import (
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/probability"
)

// Apply maps a raw probability through a fitted curve. Inputs are clipped to
// [0,1]; inputs outside the knot range clip to the nearest knot; between
// knots the curve is linearly interpolated. A nil curve is the identity.
func Apply(curve *models.CalibrationCurve, raw float64) float64 {
	if raw < 0 {
		raw = 0
	} else if raw > 1 {
		raw = 1
	}
	if curve == nil || len(curve.Knots) == 0 {
		return raw
	}

	knots := curve.Knots
	if raw <= knots[0].X {
		return knots[0].Y
	}
	last := knots[len(knots)-1]
	if raw >= last.X {
		return last.Y
	}
	for i := 1; i < len(knots); i++ {
		if raw <= knots[i].X {
			x0, y0 := knots[i-1].X, knots[i-1].Y
			x1, y1 := knots[i].X, knots[i].Y
			w := (raw - x0) / (x1 - x0)
			return y0 + w*(y1-y0)
		}
	}
	return last.Y
}

// CurveSet holds the active curves for one (league, model-version) scope,
// keyed by outcome. Missing outcomes pass through uncalibrated.
type CurveSet struct {
	Home *models.CalibrationCurve
	Draw *models.CalibrationCurve
	Away *models.CalibrationCurve
}

// Curve returns the set's curve for one outcome.
func (cs CurveSet) Curve(o models.Outcome) *models.CalibrationCurve {
	switch o {
	case models.OutcomeHome:
		return cs.Home
	case models.OutcomeDraw:
		return cs.Draw
	case models.OutcomeAway:
		return cs.Away
	}
	return nil
}

// ApplySet calibrates each component independently and renormalizes the
// triple to sum to one. A degenerate all-zero calibrated triple falls back
// to the uncalibrated input.
func ApplySet(set CurveSet, raw models.OutcomeProbabilities) models.OutcomeProbabilities {
	out := models.OutcomeProbabilities{
		Home: Apply(set.Home, raw.Home),
		Draw: Apply(set.Draw, raw.Draw),
		Away: Apply(set.Away, raw.Away),
	}
	total := out.Sum()
	if total <= 0 {
		return raw
	}
	out.Home /= total
	out.Draw /= total
	out.Away /= total
	out.Entropy = probability.Entropy(out)
	return out
}
