package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
)

func TestComputePerformance_Empty(t *testing.T) {
	report := ComputePerformance(nil)

	assert.Empty(t, report.EquityCurve)
	assert.Equal(t, 0.0, report.Expectancy)
	assert.Equal(t, 0.0, report.PnLStdDev)
}

func TestComputePerformance_CurveOrderedByRealization(t *testing.T) {
	base := time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)
	// Insertion order deliberately does not match exit order
	trades := []domain.Trade{
		closedTrade(1, -280.00, base.Add(48*time.Hour)),
		closedTrade(2, 346.50, base),
		closedTrade(3, 170.50, base.Add(24*time.Hour)),
	}

	report := ComputePerformance(trades)

	require.Len(t, report.EquityCurve, 3)
	assert.InDelta(t, 346.50, report.EquityCurve[0].Value, 0.001)
	assert.InDelta(t, 517.00, report.EquityCurve[1].Value, 0.001)
	assert.InDelta(t, 237.00, report.EquityCurve[2].Value, 0.001)

	assert.InDelta(t, 346.50, report.LargestWin, 0.001)
	assert.InDelta(t, -280.00, report.LargestLoss, 0.001)
}

func TestComputePerformance_SkipsOpenPositions(t *testing.T) {
	base := time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		closedTrade(1, 100, base),
		openTrade(2, base.Add(time.Hour)),
	}

	report := ComputePerformance(trades)
	assert.Len(t, report.EquityCurve, 1)
}

func TestComputePerformance_Expectancy(t *testing.T) {
	base := time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		closedTrade(1, 346.50, base),
		closedTrade(2, 170.50, base.Add(time.Hour)),
		closedTrade(3, -280.00, base.Add(2*time.Hour)),
	}

	report := ComputePerformance(trades)

	// 2/3 * 258.50 - 1/3 * 280.00
	assert.InDelta(t, 79.0, report.Expectancy, 0.01)
	assert.Greater(t, report.PnLStdDev, 0.0)
}
