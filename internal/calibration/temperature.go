package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/probability"
)

// minTemperatureSamples is the smallest held-out slice the grid search will
// accept.
const minTemperatureSamples = 20

// temperatureGrid is the candidate set searched for the softening scalar.
// The clamp to [1.0, 1.5] is enforced regardless of what the search finds.
var temperatureGrid = []float64{1.00, 1.05, 1.10, 1.15, 1.20, 1.25, 1.30, 1.35, 1.40}

// logLossFloor keeps log terms finite on degenerate zero probabilities.
const logLossFloor = 1e-12

// Soften applies temperature softening p_i' = p_i^(1/T) / sum p_j^(1/T).
// T is clamped to [1.0, 1.5] before use, so softening can never sharpen a
// distribution.
func Soften(p models.OutcomeProbabilities, temperature float64) models.OutcomeProbabilities {
	t := clampTemperature(temperature)
	if t == 1.0 {
		return p
	}
	inv := 1.0 / t
	out := models.OutcomeProbabilities{
		Home: math.Pow(p.Home, inv),
		Draw: math.Pow(p.Draw, inv),
		Away: math.Pow(p.Away, inv),
	}
	total := out.Sum()
	if total <= 0 {
		return p
	}
	out.Home /= total
	out.Draw /= total
	out.Away /= total
	out.Entropy = probability.Entropy(out)
	return out
}

// LearnTemperature grid-searches the softening scalar minimizing mean
// log-loss over a held-out validation slice of (predicted distribution,
// realized outcome) pairs. The result is hard-clamped to [1.0, 1.5].
func LearnTemperature(predictions []models.OutcomeProbabilities, actuals []models.Outcome) (*models.TemperatureSetting, error) {
	if len(predictions) != len(actuals) {
		return nil, fmt.Errorf("prediction/actual length mismatch: %d vs %d", len(predictions), len(actuals))
	}
	if len(predictions) < minTemperatureSamples {
		return nil, fmt.Errorf("%w: need %d validation pairs, got %d",
			models.ErrInsufficientData, minTemperatureSamples, len(predictions))
	}
	for _, a := range actuals {
		if !a.Valid() {
			return nil, models.ErrInvalidOutcome
		}
	}

	bestT := temperatureGrid[0]
	bestLoss := math.Inf(1)
	for _, t := range temperatureGrid {
		loss := meanLogLoss(predictions, actuals, t)
		if loss < bestLoss {
			bestLoss = loss
			bestT = t
		}
	}

	setting := &models.TemperatureSetting{
		Value:         clampTemperature(bestT),
		FittedLogLoss: bestLoss,
		SampleCount:   len(predictions),
		CreatedAt:     time.Now().UTC(),
	}
	if err := setting.Validate(); err != nil {
		return nil, err
	}
	return setting, nil
}

func meanLogLoss(predictions []models.OutcomeProbabilities, actuals []models.Outcome, temperature float64) float64 {
	total := 0.0
	for i, p := range predictions {
		softened := Soften(p, temperature)
		realized := softened.Get(actuals[i])
		if realized < logLossFloor {
			realized = logLossFloor
		}
		total -= math.Log(realized)
	}
	return total / float64(len(predictions))
}

func clampTemperature(t float64) float64 {
	if t < models.TemperatureMin || math.IsNaN(t) {
		return models.TemperatureMin
	}
	if t > models.TemperatureMax {
		return models.TemperatureMax
	}
	return t
}
