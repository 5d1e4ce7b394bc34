package decision

import (
	"fmt"
	"math"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// EvaluatePick scores one candidate leg. Hard contradictions are detected
// independently of the numeric score and force the evaluation to -Inf.
func EvaluatePick(pick models.Pick, thresholds Thresholds) (models.PickEvaluation, error) {
	if err := pick.Validate(); err != nil {
		return models.PickEvaluation{}, fmt.Errorf("invalid pick: %w", err)
	}
	if err := thresholds.Validate(); err != nil {
		return models.PickEvaluation{}, fmt.Errorf("invalid thresholds: %w", err)
	}

	eval := models.PickEvaluation{Pick: pick}

	p := pick.ModelProb
	odds := pick.MarketOdds

	eval.ExpectedValue = p*(odds-1) - (1 - p)
	// Damping discourages over-weighting long-shot prices whose raw EV is
	// inflated by a large (odds-1) term.
	eval.OddsDampedEV = eval.ExpectedValue / (1 + odds)
	confidence := 1.0 / (1.0 + pick.ExpectedGoals.Gap())
	eval.ConfidenceEV = eval.OddsDampedEV * confidence

	eval.StructuralPenalty = structuralPenalty(pick)
	eval.MarketPenalty = marketDisagreementPenalty(pick)

	if reason := hardContradiction(pick); reason != "" {
		eval.HardContradiction = true
		eval.ContradictionReason = reason
		eval.Score = math.Inf(-1)
		return eval, nil
	}

	eval.Score = eval.ConfidenceEV - eval.StructuralPenalty - eval.MarketPenalty
	return eval, nil
}

// structuralPenalty encodes the rule-based priors against structurally weak
// selections: draws at high odds or under large expected-goal asymmetry,
// and away picks at high odds.
func structuralPenalty(pick models.Pick) float64 {
	penalty := 0.0
	switch pick.Selection {
	case models.OutcomeDraw:
		if pick.MarketOdds > structuralDrawHighOdds {
			penalty += structuralPenaltyDraw
		}
		if pick.ExpectedGoals.Gap() > structuralDrawGoalGap {
			penalty += structuralPenaltyDraw
		}
	case models.OutcomeAway:
		if pick.MarketOdds > structuralAwayHighOdds {
			penalty += structuralPenaltyAway
		}
	}
	return penalty
}

// marketDisagreementPenalty is a step function of the gap between the model
// probability and the raw market-implied probability of the picked side.
func marketDisagreementPenalty(pick models.Pick) float64 {
	delta := math.Abs(pick.ModelProb - 1.0/pick.MarketOdds)
	switch {
	case delta < marketDeltaLow:
		return 0
	case delta < marketDeltaMid:
		return marketPenaltyLow
	case delta < marketDeltaHigh:
		return marketPenaltyMid
	default:
		return marketPenaltyHigh
	}
}

// hardContradiction checks the veto rules and returns the triggered reason,
// or an empty string. The rules are deliberately independent of the score.
func hardContradiction(pick models.Pick) string {
	marketHome := impliedHomeProb(pick)

	if pick.Selection == models.OutcomeDraw && marketHome > contradictionHomeProbVsDraw {
		return fmt.Sprintf("draw pick against market home favorite (implied home %.2f > %.2f)",
			marketHome, contradictionHomeProbVsDraw)
	}
	if pick.Selection == models.OutcomeDraw && pick.ExpectedGoals.Gap() > contradictionGoalGapVsDraw {
		return fmt.Sprintf("draw pick with expected-goal gap %.2f > %.2f",
			pick.ExpectedGoals.Gap(), contradictionGoalGapVsDraw)
	}
	if pick.Selection == models.OutcomeAway && pick.MarketOdds > contradictionAwayOdds && marketHome > contradictionHomeProbVsAway {
		return fmt.Sprintf("away pick at odds %.2f with implied home %.2f",
			pick.MarketOdds, marketHome)
	}

	delta := math.Abs(pick.ModelProb - pick.MarketImplied())
	if delta > contradictionExtremeDelta && opposesMarketFavorite(pick) {
		return fmt.Sprintf("extreme model/market disagreement (delta %.2f) against market favorite", delta)
	}
	return ""
}

// impliedHomeProb returns the market's margin-normalized home probability.
// Without the full three-way market only a home pick carries the home
// price, so other selections report zero and the home-probability rules
// simply cannot trigger.
func impliedHomeProb(pick models.Pick) float64 {
	if pick.Market != nil && pick.Market.Valid() {
		return pick.Market.Implied().Home
	}
	if pick.Selection == models.OutcomeHome {
		return 1.0 / pick.MarketOdds
	}
	return 0
}

// opposesMarketFavorite reports whether the pick is not the side the market
// prices as favorite. Without the full market the shortest known price is
// the picked side itself, so nothing opposes it.
func opposesMarketFavorite(pick models.Pick) bool {
	if pick.Market == nil || !pick.Market.Valid() {
		return false
	}
	return pick.Market.Implied().Favorite() != pick.Selection
}
