package backtest

import (
	"encoding/json"
	"math"
	"time"
)

// EquityPoint is one settled, accepted ticket on the cumulative P&L curve.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	PnL   float64   `json:"pnl"`
}

// EquityCurve is the unit-stake cumulative P&L over the replay.
type EquityCurve []EquityPoint

// MaxDrawdown returns the largest peak-to-trough fall of the curve in stake
// units. The curve starts at a zero bank, so drawdowns are absolute.
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range e {
		if p.Value > peak {
			peak = p.Value
		}
		if dd := peak - p.Value; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Metrics summarizes a replay run at unit stake.
type Metrics struct {
	TotalTickets    int       `json:"total_tickets"`
	AcceptedTickets int       `json:"accepted_tickets"`
	WinningTickets  int       `json:"winning_tickets"`
	AcceptRate      float64   `json:"accept_rate"`
	HitRate         float64   `json:"hit_rate"`
	NetProfit       float64   `json:"net_profit"`
	ROI             float64   `json:"roi"`
	Expectancy      float64   `json:"expectancy"`
	ProfitFactor    float64   `json:"profit_factor"`
	MaxDrawdown     float64   `json:"max_drawdown"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

// finalize derives the ratio metrics once the counters are complete.
func (m *Metrics) finalize(equity EquityCurve) {
	if m.TotalTickets > 0 {
		m.AcceptRate = float64(m.AcceptedTickets) / float64(m.TotalTickets)
	}
	if m.AcceptedTickets > 0 {
		m.HitRate = float64(m.WinningTickets) / float64(m.AcceptedTickets)
		// Stake is one unit per accepted ticket.
		m.ROI = m.NetProfit / float64(m.AcceptedTickets)
		m.Expectancy = m.ROI
	}

	grossProfit := 0.0
	grossLoss := 0.0
	for _, p := range equity {
		if p.PnL > 0 {
			grossProfit += p.PnL
		} else {
			grossLoss += math.Abs(p.PnL)
		}
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	m.MaxDrawdown = equity.MaxDrawdown()
}

// ToJSON exports the metrics for reports.
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}
