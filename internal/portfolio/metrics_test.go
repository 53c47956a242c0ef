package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func equityCurve(values ...float64) []EquityPoint {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]EquityPoint, len(values))
	for i, v := range values {
		points[i] = EquityPoint{Timestamp: start.AddDate(0, 0, i), Equity: v}
	}
	return points
}

// TestCalculateMetrics_InsufficientHistory verifies the documented
// defaults apply until the equity curve has at least two points.
func TestCalculateMetrics_InsufficientHistory(t *testing.T) {
	for _, curve := range [][]EquityPoint{nil, equityCurve(1000)} {
		m := CalculateMetrics(curve, nil, DefaultWindowDays)

		assert.Equal(t, 0.0, m.Sharpe)
		assert.Equal(t, 0.0, m.Sortino)
		assert.Equal(t, 0.0, m.DrawdownPct)
		assert.Equal(t, 0.5, m.WinRate)
		assert.Equal(t, 0.02, m.Volatility)
		assert.Equal(t, []string{DefaultPair}, m.ActivePairs)
	}
}

// TestCalculateMetrics_RisingEquity tests an equity curve with no losing
// periods: positive Sharpe and Sortino degenerating to Sharpe.
func TestCalculateMetrics_RisingEquity(t *testing.T) {
	m := CalculateMetrics(equityCurve(1000, 1020, 1050, 1070), nil, DefaultWindowDays)

	assert.Greater(t, m.Sharpe, 0.0)
	assert.Equal(t, m.Sharpe, m.Sortino)
	assert.Equal(t, 0.0, m.DrawdownPct)
	assert.Greater(t, m.Volatility, 0.0)
}

// TestCalculateMetrics_Drawdown verifies the peak-to-trough decline is
// measured against the running peak.
func TestCalculateMetrics_Drawdown(t *testing.T) {
	m := CalculateMetrics(equityCurve(1000, 1200, 900, 1100), nil, DefaultWindowDays)

	// Peak 1200, trough 900.
	assert.InDelta(t, 25.0, m.DrawdownPct, 1e-9)
}

// TestCalculateMetrics_DrawdownNeverRecovers keeps the maximum decline
// even after a partial recovery.
func TestCalculateMetrics_DrawdownNeverRecovers(t *testing.T) {
	m := CalculateMetrics(equityCurve(1000, 800, 950), nil, DefaultWindowDays)

	assert.InDelta(t, 20.0, m.DrawdownPct, 1e-9)
}

// TestCalculateMetrics_SharpeAnnualization checks the trading-day
// annualization against a hand-computed curve.
func TestCalculateMetrics_SharpeAnnualization(t *testing.T) {
	// Returns: +2%, -1%. Mean 0.005, population stdev 0.015.
	m := CalculateMetrics(equityCurve(1000, 1020, 1009.8), nil, DefaultWindowDays)

	expected := 0.005 / 0.015 * math.Sqrt(252)
	assert.InDelta(t, expected, m.Sharpe, 1e-6)
	assert.InDelta(t, 0.015, m.Volatility, 1e-9)
}

// TestCalculateMetrics_SortinoUsesDownsideOnly verifies Sortino exceeds
// Sharpe when the downside deviation is the smaller one.
func TestCalculateMetrics_SortinoUsesDownsideOnly(t *testing.T) {
	m := CalculateMetrics(equityCurve(1000, 1100, 1078, 1185.8, 1162.1), nil, DefaultWindowDays)

	assert.NotEqual(t, m.Sharpe, m.Sortino)
}

// TestCalculateMetrics_TradeStatistics covers win rate, average return,
// trade frequency and active pair extraction.
func TestCalculateMetrics_TradeStatistics(t *testing.T) {
	now := time.Now()
	trades := []TradeRecord{
		{Pair: "EUR/USD", PnL: 50, Timestamp: now},
		{Pair: "EUR/USD", PnL: -20, Timestamp: now},
		{Pair: "GBP/USD", PnL: 30, Timestamp: now},
		{Pair: "USD/JPY", PnL: 10, Timestamp: now},
	}

	m := CalculateMetrics(equityCurve(1000, 1070), trades, 30)

	assert.Equal(t, 0.75, m.WinRate)
	assert.InDelta(t, 17.5, m.AvgReturn, 1e-9)
	assert.InDelta(t, 4.0/30.0, m.TradeFrequency, 1e-9)
	assert.ElementsMatch(t, []string{"EUR/USD", "GBP/USD", "USD/JPY"}, m.ActivePairs)
}

// TestCalculateMetrics_BreakEvenTradeIsNotAWin treats zero PnL as a loss
// for win-rate purposes.
func TestCalculateMetrics_BreakEvenTradeIsNotAWin(t *testing.T) {
	trades := []TradeRecord{
		{Pair: "EUR/USD", PnL: 0},
		{Pair: "EUR/USD", PnL: 25},
	}

	m := CalculateMetrics(equityCurve(1000, 1025), trades, 30)

	assert.Equal(t, 0.5, m.WinRate)
}

func TestDefaultMetrics(t *testing.T) {
	m := DefaultMetrics()

	assert.Equal(t, 0.5, m.WinRate)
	assert.Equal(t, 0.02, m.Volatility)
	assert.Equal(t, 0.0, m.Sharpe)
	assert.Equal(t, []string{DefaultPair}, m.ActivePairs)
}
