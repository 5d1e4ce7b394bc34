package decision

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// Rejection reasons carried on rejected tickets.
const (
	RejectHardContradiction = "hard contradiction"
	RejectTooManyContradictions = "contradiction count above maximum"
	RejectBelowThreshold    = "aggregate score below threshold"
	RejectEmptyTicket       = "ticket has no picks"
)

// EvaluateTicket scores a full ticket: the league-weighted sum of per-pick
// scores minus an entropy penalty proportional to the fraction of draw
// picks. Any single hard contradiction collapses the ticket score to -Inf.
//
// A ticket is accepted only when no veto triggered, the contradiction count
// is within the configured maximum, and the aggregate score clears the
// configured threshold.
func EvaluateTicket(picks []models.Pick, thresholds Thresholds) (models.TicketEvaluation, error) {
	if err := thresholds.Validate(); err != nil {
		return models.TicketEvaluation{}, fmt.Errorf("invalid thresholds: %w", err)
	}

	ticket := models.TicketEvaluation{
		ID:          uuid.New(),
		EvaluatedAt: time.Now().UTC(),
	}
	if len(picks) == 0 {
		ticket.Score = math.Inf(-1)
		ticket.RejectionReason = RejectEmptyTicket
		return ticket, nil
	}

	vetoed := false
	drawPicks := 0
	aggregate := 0.0
	for _, pick := range picks {
		eval, err := EvaluatePick(pick, thresholds)
		if err != nil {
			return models.TicketEvaluation{}, err
		}
		ticket.Picks = append(ticket.Picks, eval)

		if eval.HardContradiction {
			vetoed = true
			ticket.ContradictionCount++
			continue
		}
		if eval.MarketPenalty >= softContradictionPenalty {
			ticket.ContradictionCount++
		}
		if pick.Selection == models.OutcomeDraw {
			drawPicks++
		}
		aggregate += thresholds.LeagueWeight(pick.LeagueID) * eval.Score
	}

	if vetoed {
		ticket.Score = math.Inf(-1)
		ticket.Accepted = false
		ticket.RejectionReason = RejectHardContradiction
		return ticket, nil
	}

	drawFraction := float64(drawPicks) / float64(len(picks))
	ticket.Score = aggregate - thresholds.DrawEntropyPenalty*drawFraction

	switch {
	case ticket.ContradictionCount > thresholds.MaxContradictions:
		ticket.Accepted = false
		ticket.RejectionReason = RejectTooManyContradictions
	case ticket.Score < thresholds.MinScore:
		ticket.Accepted = false
		ticket.RejectionReason = RejectBelowThreshold
	default:
		ticket.Accepted = true
	}
	return ticket, nil
}
