// Package backtest replays historical tickets through the decision gate to
// measure how a threshold configuration would have performed.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/decision"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// HistoricalTicket is one settled ticket with enough detail to re-evaluate
// it under different thresholds. Stakes are normalized to one unit.
type HistoricalTicket struct {
	ID        uuid.UUID     `json:"id"`
	Picks     []models.Pick `json:"picks"`
	Won       bool          `json:"won"`
	SettledAt time.Time     `json:"settled_at"`
}

// Payout returns the unit-stake return of the ticket if it won: the product
// of the leg prices minus the stake.
func (t HistoricalTicket) Payout() float64 {
	payout := 1.0
	for _, p := range t.Picks {
		payout *= p.MarketOdds
	}
	return payout - 1.0
}

// Result is the outcome of one replay run.
type Result struct {
	Thresholds decision.Thresholds `json:"thresholds"`
	Metrics    Metrics             `json:"metrics"`
	Equity     EquityCurve         `json:"equity"`
}

// Replay re-evaluates every historical ticket under the given thresholds and
// settles the accepted ones at unit stake, in settlement order.
func Replay(history []HistoricalTicket, thresholds decision.Thresholds) (*Result, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid replay thresholds: %w", err)
	}

	ordered := make([]HistoricalTicket, len(history))
	copy(ordered, history)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SettledAt.Before(ordered[j].SettledAt)
	})

	var (
		metrics Metrics
		equity  = EquityCurve{}
		bank    = 0.0
	)

	for _, ticket := range ordered {
		metrics.TotalTickets++

		eval, err := decision.EvaluateTicket(ticket.Picks, thresholds)
		if err != nil {
			return nil, fmt.Errorf("replay evaluation failed for ticket %s: %w", ticket.ID, err)
		}
		if !eval.Accepted {
			continue
		}
		metrics.AcceptedTickets++

		var pnl float64
		if ticket.Won {
			metrics.WinningTickets++
			pnl = ticket.Payout()
		} else {
			pnl = -1.0
		}
		metrics.NetProfit += pnl
		bank += pnl

		equity = append(equity, EquityPoint{
			Time:  ticket.SettledAt,
			Value: bank,
			PnL:   pnl,
		})
	}

	metrics.finalize(equity)
	if len(ordered) > 0 {
		metrics.StartDate = ordered[0].SettledAt
		metrics.EndDate = ordered[len(ordered)-1].SettledAt
	}

	return &Result{Thresholds: thresholds, Metrics: metrics, Equity: equity}, nil
}

// SweepThresholds replays the history across a grid of minimum-score
// thresholds and returns the runs ordered as given. Grid values outside the
// history's score range simply accept nothing.
func SweepThresholds(history []HistoricalTicket, base decision.Thresholds, grid []float64) ([]Result, error) {
	results := make([]Result, 0, len(grid))
	for _, minScore := range grid {
		thresholds := base
		thresholds.MinScore = minScore

		result, err := Replay(history, thresholds)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// BestByROI returns the sweep run with the highest ROI among runs that
// accepted at least minAccepted tickets. Returns false when no run
// qualifies.
func BestByROI(results []Result, minAccepted int) (Result, bool) {
	best := Result{}
	found := false
	bestROI := math.Inf(-1)

	for _, r := range results {
		if r.Metrics.AcceptedTickets < minAccepted {
			continue
		}
		if r.Metrics.ROI > bestROI {
			bestROI = r.Metrics.ROI
			best = r
			found = true
		}
	}
	return best, found
}
