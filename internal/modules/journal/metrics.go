package journal

import (
	"encoding/json"
	"math"

	"tradejournal/internal/domain"
)

// MetricsSummary holds aggregate performance statistics over a set of
// closed trades. AvgLoss is reported as a positive magnitude.
type MetricsSummary struct {
	TotalPnL      float64 `json:"totalPnL"`
	WinRate       float64 `json:"winRate"`
	AvgWin        float64 `json:"avgWin"`
	AvgLoss       float64 `json:"avgLoss"`
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	ProfitFactor  float64 `json:"profitFactor"`
}

// MarshalJSON renders an infinite profit factor (wins with zero losses)
// as null, since JSON has no representation for +Inf.
func (m MetricsSummary) MarshalJSON() ([]byte, error) {
	type alias MetricsSummary
	out := struct {
		alias
		ProfitFactor *float64 `json:"profitFactor"`
	}{alias: alias(m)}

	if !math.IsInf(m.ProfitFactor, 0) {
		pf := m.ProfitFactor
		out.ProfitFactor = &pf
	}

	return json.Marshal(out)
}

// ComputeMetrics aggregates a trade set into summary statistics.
// Only closed trades (not open, realized pnl) contribute; trades with
// pnl exactly zero count toward totals but neither wins nor losses.
// An empty closed-trade set degrades to all-zero metrics.
func ComputeMetrics(trades []domain.Trade) MetricsSummary {
	var m MetricsSummary
	var totalWins, totalLosses float64

	for i := range trades {
		t := &trades[i]
		if !t.IsClosed() {
			continue
		}

		pnl := *t.PNL
		m.TotalTrades++
		m.TotalPnL += pnl

		switch {
		case pnl > 0:
			m.WinningTrades++
			totalWins += pnl
		case pnl < 0:
			m.LosingTrades++
			totalLosses += -pnl
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	if m.WinningTrades > 0 {
		m.AvgWin = totalWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = totalLosses / float64(m.LosingTrades)
	}

	switch {
	case totalLosses > 0:
		m.ProfitFactor = totalWins / totalLosses
	case totalWins > 0:
		m.ProfitFactor = math.Inf(1)
	default:
		m.ProfitFactor = 0
	}

	return m
}
