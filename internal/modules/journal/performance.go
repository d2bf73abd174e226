package journal

import (
	"sort"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/pkg/formulas"
)

// EquityPoint is one step of the cumulative P&L curve
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// PerformanceReport is the dashboard view over closed trades: the
// cumulative P&L curve plus distribution statistics.
type PerformanceReport struct {
	EquityCurve []EquityPoint `json:"equityCurve"`
	Expectancy  float64       `json:"expectancy"`
	PnLStdDev   float64       `json:"pnlStdDev"`
	LargestWin  float64       `json:"largestWin"`
	LargestLoss float64       `json:"largestLoss"`
}

// ComputePerformance builds the cumulative P&L curve over closed trades,
// ordered by realization time (exit date, falling back to entry date).
func ComputePerformance(trades []domain.Trade) PerformanceReport {
	report := PerformanceReport{
		EquityCurve: make([]EquityPoint, 0),
	}

	closed := make([]domain.Trade, 0, len(trades))
	for i := range trades {
		if trades[i].IsClosed() {
			closed = append(closed, trades[i])
		}
	}
	if len(closed) == 0 {
		return report
	}

	realizedAt := func(t *domain.Trade) time.Time {
		if t.ExitDate != nil {
			return *t.ExitDate
		}
		return t.EntryDate
	}

	sort.Slice(closed, func(i, j int) bool {
		ti, tj := realizedAt(&closed[i]), realizedAt(&closed[j])
		if ti.Equal(tj) {
			return closed[i].ID < closed[j].ID
		}
		return ti.Before(tj)
	})

	pnls := make([]float64, 0, len(closed))
	var cumulative float64
	for i := range closed {
		pnl := *closed[i].PNL
		pnls = append(pnls, pnl)
		cumulative += pnl

		if pnl > report.LargestWin {
			report.LargestWin = pnl
		}
		if pnl < report.LargestLoss {
			report.LargestLoss = pnl
		}

		report.EquityCurve = append(report.EquityCurve, EquityPoint{
			Time:  realizedAt(&closed[i]),
			Value: cumulative,
		})
	}

	report.PnLStdDev = formulas.StdDev(pnls)

	// Expectancy: winRate * avgWin - lossRate * avgLoss
	m := ComputeMetrics(closed)
	winRate := m.WinRate / 100
	report.Expectancy = winRate*m.AvgWin - (1-winRate)*m.AvgLoss

	return report
}
