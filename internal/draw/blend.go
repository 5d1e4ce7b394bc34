package draw

import (
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/probability"
)

// BlendSources combines three draw estimates (plain independent-Poisson,
// Dixon-Coles-corrected, and market-implied) under the configured weights,
// clamps the result to [floor, cap], and reconciles the triple so it sums to
// one while preserving the relative home/away strength ratio.
//
// When market odds are unavailable the two model weights are renormalized to
// sum to one and the market term is dropped.
func BlendSources(goals models.GoalExpectations, rho float64, market *models.MarketOdds, cfg Config) (models.OutcomeProbabilities, error) {
	if err := cfg.Validate(); err != nil {
		return models.OutcomeProbabilities{}, err
	}

	// Independent Poisson: tau suppressed entirely.
	plainGrid := probability.NewScoreGrid(goals, 0)
	poissonDraw := plainGrid.DrawMass()
	if t := plainTotal(plainGrid); t > 0 {
		poissonDraw /= t
	}

	// The Dixon-Coles draw estimate applies tau only at (0,0) and (1,1);
	// the (0,1)/(1,0) corrections shift win mass, not draw mass, and must
	// not leak into this estimate through the normalizer.
	dcDraw := diagonalTauDraw(plainGrid, goals, rho)

	// The full corrected grid still anchors the home/away ratio.
	dcOutcomes := probability.NewScoreGrid(goals, rho).Outcomes()

	var blended float64
	if market != nil && market.Valid() {
		marketDraw := market.Implied().Draw
		blended = cfg.WeightPoisson*poissonDraw + cfg.WeightDixonColes*dcDraw + cfg.WeightMarket*marketDraw
	} else {
		modelWeight := cfg.WeightPoisson + cfg.WeightDixonColes
		if modelWeight <= 0 {
			// Degenerate configuration with all weight on the missing
			// market source: fall back to the Dixon-Coles estimate.
			blended = dcDraw
		} else {
			blended = (cfg.WeightPoisson*poissonDraw + cfg.WeightDixonColes*dcDraw) / modelWeight
		}
	}
	blended = cfg.ClampDraw(blended)

	return Reconcile(dcOutcomes, blended)
}

// Reconcile fixes the draw component at the blended value and rescales the
// home/away components proportionally so the triple sums to one, preserving
// their relative strength ratio. A degenerate zero-sum home+away case falls
// back to an even 50/50 split of the remaining mass.
func Reconcile(base models.OutcomeProbabilities, drawProb float64) (models.OutcomeProbabilities, error) {
	remaining := 1.0 - drawProb
	sideTotal := base.Home + base.Away

	out := models.OutcomeProbabilities{Draw: drawProb}
	if sideTotal <= 0 {
		out.Home = remaining / 2.0
		out.Away = remaining / 2.0
	} else {
		out.Home = remaining * base.Home / sideTotal
		out.Away = remaining * base.Away / sideTotal
	}
	out.Entropy = probability.Entropy(out)

	if err := out.Validate(); err != nil {
		return models.OutcomeProbabilities{}, err
	}
	return out, nil
}

// diagonalTauDraw normalizes the diagonal draw mass against a grid where tau
// touches only the (0,0) and (1,1) cells.
func diagonalTauDraw(plainGrid *probability.ScoreGrid, goals models.GoalExpectations, rho float64) float64 {
	shift00 := plainGrid.Cell(0, 0) * (probability.Tau(0, 0, goals.LambdaHome, goals.LambdaAway, rho) - 1)
	shift11 := plainGrid.Cell(1, 1) * (probability.Tau(1, 1, goals.LambdaHome, goals.LambdaAway, rho) - 1)

	mass := plainGrid.DrawMass() + shift00 + shift11
	total := plainTotal(plainGrid) + shift00 + shift11
	if total <= 0 {
		return 0
	}
	return mass / total
}

func plainTotal(g *probability.ScoreGrid) float64 {
	total := 0.0
	for h := 0; h <= probability.MaxGoals; h++ {
		for a := 0; a <= probability.MaxGoals; a++ {
			total += g.Cell(h, a)
		}
	}
	return total
}
