package portfolio

import (
	"math"
	"sort"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// correlationPenaltyKnee is the pairwise correlation level below which no
// penalty accrues.
const correlationPenaltyKnee = 0.5

// DefaultCorrelationPenaltyWeight scales the pairwise penalty during
// selection.
const DefaultCorrelationPenaltyWeight = 0.5

// SelectPortfolio picks a diversified subset of candidate tickets, at most
// size entries, by greedy marginal gain: the highest-scoring candidate
// first, then repeatedly the candidate maximizing its score minus the
// correlation penalty against everything already selected.
//
// Greedy selection is a deliberate heuristic; exhaustive search is
// combinatorially infeasible at realistic slate sizes.
func SelectPortfolio(candidates []models.TicketEvaluation, size int, penaltyWeight float64) models.Portfolio {
	if penaltyWeight < 0 {
		penaltyWeight = DefaultCorrelationPenaltyWeight
	}

	pool := make([]models.TicketEvaluation, 0, len(candidates))
	for _, c := range candidates {
		if math.IsInf(c.Score, -1) || math.IsNaN(c.Score) {
			continue
		}
		pool = append(pool, c)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })

	var selected []models.TicketEvaluation
	penalized := 0.0
	used := make([]bool, len(pool))

	for len(selected) < size {
		bestIdx := -1
		bestGain := math.Inf(-1)
		for i := range pool {
			if used[i] {
				continue
			}
			gain := pool[i].Score - penaltyWeight*correlationPenalty(&pool[i], selected)
			if gain > bestGain {
				bestGain = gain
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		selected = append(selected, pool[bestIdx])
		penalized += bestGain
	}

	return models.Portfolio{
		Tickets:         selected,
		TotalScore:      totalScore(selected),
		PenalizedScore:  penalized,
		MeanCorrelation: meanCorrelation(selected),
	}
}

// correlationPenalty sums the above-knee pairwise correlation of a
// candidate against the already-selected tickets.
func correlationPenalty(candidate *models.TicketEvaluation, selected []models.TicketEvaluation) float64 {
	penalty := 0.0
	for i := range selected {
		corr := TicketCorrelation(candidate, &selected[i])
		if corr > correlationPenaltyKnee {
			penalty += corr - correlationPenaltyKnee
		}
	}
	return penalty
}

func totalScore(tickets []models.TicketEvaluation) float64 {
	total := 0.0
	for _, t := range tickets {
		total += t.Score
	}
	return total
}

func meanCorrelation(tickets []models.TicketEvaluation) float64 {
	if len(tickets) < 2 {
		return 0
	}
	sum := 0.0
	pairs := 0
	for i := 0; i < len(tickets); i++ {
		for j := i + 1; j < len(tickets); j++ {
			sum += TicketCorrelation(&tickets[i], &tickets[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}
