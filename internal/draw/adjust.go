package draw

import (
	"fmt"
	"math"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/probability"
)

// Home-away compression constants. The signal pulls the home/away split
// toward its mean; evenly matched sides compress further.
const (
	compressionSlope  = 0.5
	compressionMin    = 0.4
	compressionMax    = 1.0
	evenMatchGap      = 0.25
	evenMatchDampen   = 0.85
	drawBoostPerUnit  = 0.08
)

// Adjust applies the structural draw adjustment to a raw three-way
// distribution: the draw signal compresses the home-away split, adds a
// conservative draw-mass boost clamped to [floor, cap], and redistributes
// the remaining mass proportionally to the post-compression split. The
// returned triple is renormalized; a violated sum invariant is an error,
// not a silent fixup.
func Adjust(raw models.OutcomeProbabilities, goals models.GoalExpectations, signal float64, cfg Config) (models.OutcomeProbabilities, error) {
	if err := cfg.Validate(); err != nil {
		return models.OutcomeProbabilities{}, err
	}
	signal = clamp(signal, 0, 1)

	compression := clamp(1.0-compressionSlope*signal, compressionMin, compressionMax)
	if goals.Gap() < evenMatchGap {
		compression = clamp(compression*evenMatchDampen, compressionMin, compressionMax)
	}

	// Pull the home/away split toward its mean.
	mean := (raw.Home + raw.Away) / 2.0
	home := mean + (raw.Home-mean)*compression
	away := mean + (raw.Away-mean)*compression

	adjustedDraw := cfg.ClampDraw(raw.Draw + signal*drawBoostPerUnit)

	// Redistribute the remaining mass proportionally to the compressed split.
	remaining := 1.0 - adjustedDraw
	sideTotal := home + away
	if sideTotal <= 0 {
		home = remaining / 2.0
		away = remaining / 2.0
	} else {
		home = remaining * home / sideTotal
		away = remaining * away / sideTotal
	}

	adjusted := models.OutcomeProbabilities{Home: home, Draw: adjustedDraw, Away: away}
	total := adjusted.Sum()
	if total <= 0 {
		return models.OutcomeProbabilities{}, fmt.Errorf("draw adjustment produced zero mass from %+v", raw)
	}
	adjusted.Home /= total
	adjusted.Draw /= total
	adjusted.Away /= total
	adjusted.Entropy = probability.Entropy(adjusted)

	if math.Abs(adjusted.Sum()-1.0) > models.ProbabilitySumTolerance {
		return models.OutcomeProbabilities{}, fmt.Errorf("%w: adjusted sum %f", models.ErrProbabilityInvariant, adjusted.Sum())
	}
	return adjusted, nil
}
