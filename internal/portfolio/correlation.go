// Package portfolio builds fixture/ticket correlation estimates and selects
// a diversified bundle of accepted tickets under a correlation penalty.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// kickoffProximityWindow is the kickoff gap treated as "concurrent".
const kickoffProximityWindow = 90 * time.Minute

// Similarity scales for the continuous factors.
const (
	drawRegimeScale = 0.5
	totalGoalsScale = 2.0
)

// CorrelationWeights are the per-factor weights of the fixture-pair
// correlation model. Draw-heavy leagues typically override DrawRegime
// upward.
type CorrelationWeights struct {
	SameLeague  float64 `mapstructure:"same_league" json:"same_league" validate:"gte=0"`
	Kickoff     float64 `mapstructure:"kickoff" json:"kickoff" validate:"gte=0"`
	OddsShape   float64 `mapstructure:"odds_shape" json:"odds_shape" validate:"gte=0"`
	DrawRegime  float64 `mapstructure:"draw_regime" json:"draw_regime" validate:"gte=0"`
	TotalGoals  float64 `mapstructure:"total_goals" json:"total_goals" validate:"gte=0"`
}

// DefaultCorrelationWeights returns the fallback weights used for leagues
// without an explicit override.
func DefaultCorrelationWeights() CorrelationWeights {
	return CorrelationWeights{
		SameLeague: 0.30,
		Kickoff:    0.20,
		OddsShape:  0.20,
		DrawRegime: 0.15,
		TotalGoals: 0.15,
	}
}

// Validate rejects weight sets that cannot produce a [0,1] correlation.
func (w CorrelationWeights) Validate() error {
	sum := w.SameLeague + w.Kickoff + w.OddsShape + w.DrawRegime + w.TotalGoals
	if sum <= 0 {
		return fmt.Errorf("correlation weights must have positive sum, got %f", sum)
	}
	for name, v := range map[string]float64{
		"same_league": w.SameLeague, "kickoff": w.Kickoff, "odds_shape": w.OddsShape,
		"draw_regime": w.DrawRegime, "total_goals": w.TotalGoals,
	} {
		if v < 0 {
			return fmt.Errorf("correlation weight %s must be non-negative, got %f", name, v)
		}
	}
	return nil
}

func (w CorrelationWeights) sum() float64 {
	return w.SameLeague + w.Kickoff + w.OddsShape + w.DrawRegime + w.TotalGoals
}

// FixtureCorrelation scores the similarity of two fixtures in [0,1] as the
// normalized weighted sum of five factors: shared league, kickoff proximity
// within 90 minutes, odds-shape similarity, draw-signal regime similarity,
// and total expected-goals similarity.
func FixtureCorrelation(a, b models.Fixture, weights CorrelationWeights) float64 {
	var score float64

	if a.LeagueID != "" && a.LeagueID == b.LeagueID {
		score += weights.SameLeague
	}

	gap := a.KickoffTime.Sub(b.KickoffTime)
	if gap < 0 {
		gap = -gap
	}
	if gap <= kickoffProximityWindow {
		score += weights.Kickoff
	}

	score += weights.OddsShape * oddsShapeSimilarity(a.Odds, b.Odds)
	score += weights.DrawRegime * bandedSimilarity(a.DrawSignal, b.DrawSignal, drawRegimeScale)
	score += weights.TotalGoals * bandedSimilarity(a.ExpectedGoals.Total(), b.ExpectedGoals.Total(), totalGoalsScale)

	return clamp01(score / weights.sum())
}

// BuildCorrelationMatrix computes pairwise correlations over a candidate
// slate. Per-league weight overrides apply when both fixtures share the
// overridden league; everything else uses the default weights.
func BuildCorrelationMatrix(fixtures []models.Fixture, leagueWeights map[string]CorrelationWeights) (models.CorrelationMatrix, error) {
	defaults := DefaultCorrelationWeights()
	for league, w := range leagueWeights {
		if err := w.Validate(); err != nil {
			return models.CorrelationMatrix{}, fmt.Errorf("league %s: %w", league, err)
		}
	}

	matrix := models.NewCorrelationMatrix(len(fixtures))
	for i := 0; i < len(fixtures); i++ {
		for j := i + 1; j < len(fixtures); j++ {
			weights := defaults
			if fixtures[i].LeagueID == fixtures[j].LeagueID {
				if override, ok := leagueWeights[fixtures[i].LeagueID]; ok {
					weights = override
				}
			}
			matrix.Set(i, j, FixtureCorrelation(fixtures[i], fixtures[j], weights))
		}
	}
	return matrix, nil
}

// TicketCorrelation is the fraction of identical picks at matching
// positions. Tickets of different lengths compare over the longer length,
// so identical tickets score exactly 1.0 and disjoint ones 0.0.
func TicketCorrelation(a, b *models.TicketEvaluation) float64 {
	as, bs := a.Selections(), b.Selections()
	afix, bfix := fixtureIDs(a), fixtureIDs(b)

	longest := len(as)
	if len(bs) > longest {
		longest = len(bs)
	}
	if longest == 0 {
		return 0
	}

	matches := 0
	limit := len(as)
	if len(bs) < limit {
		limit = len(bs)
	}
	for i := 0; i < limit; i++ {
		if afix[i] == bfix[i] && as[i] == bs[i] {
			matches++
		}
	}
	return float64(matches) / float64(longest)
}

func fixtureIDs(t *models.TicketEvaluation) []string {
	out := make([]string, len(t.Picks))
	for i, p := range t.Picks {
		out[i] = p.Pick.FixtureID.String()
	}
	return out
}

func oddsShapeSimilarity(a, b *models.MarketOdds) float64 {
	if a == nil || b == nil || !a.Valid() || !b.Valid() {
		return 0
	}
	pa, pb := a.Implied(), b.Implied()
	// Half the L1 distance of two distributions is the total variation
	// distance, already in [0,1].
	dist := (math.Abs(pa.Home-pb.Home) + math.Abs(pa.Draw-pb.Draw) + math.Abs(pa.Away-pb.Away)) / 2.0
	return clamp01(1.0 - dist)
}

func bandedSimilarity(a, b, scale float64) float64 {
	return clamp01(1.0 - math.Abs(a-b)/scale)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
