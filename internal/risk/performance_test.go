package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

func healthyMetrics() portfolio.Metrics {
	m := portfolio.DefaultMetrics()
	m.WinRate = 0.6
	m.Sharpe = 1.0
	m.DrawdownPct = 0
	return m
}

// TestPerformancePenalty_HealthyMetricsFullSize applies no discount when
// every metric clears its threshold.
func TestPerformancePenalty_HealthyMetricsFullSize(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	assert.Equal(t, 1.0, r.Multiplier(healthyMetrics()))
}

// TestPerformancePenalty_LowWinRate scales the discount linearly down to
// 0.5 at a zero win rate.
func TestPerformancePenalty_LowWinRate(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	m := healthyMetrics()
	m.WinRate = 0.2 // threshold 0.4
	assert.InDelta(t, 0.75, r.Multiplier(m), 1e-9)

	m.WinRate = 0
	assert.InDelta(t, 0.5, r.Multiplier(m), 1e-9)
}

// TestPerformancePenalty_LowSharpe clamps negative Sharpe contributions
// at the 0.5 floor instead of going below it.
func TestPerformancePenalty_LowSharpe(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	m := healthyMetrics()
	m.Sharpe = 0.25 // threshold 0.5
	assert.InDelta(t, 0.75, r.Multiplier(m), 1e-9)

	m.Sharpe = -2.0
	assert.InDelta(t, 0.5, r.Multiplier(m), 1e-9)
}

// TestPerformancePenalty_Drawdown kicks in past half the drawdown limit
// and never goes below the 0.1 floor.
func TestPerformancePenalty_Drawdown(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	m := healthyMetrics()
	m.DrawdownPct = 7.0 // below half of the 15% limit
	assert.Equal(t, 1.0, r.Multiplier(m))

	m.DrawdownPct = 12.0 // 0.12/0.15 = 0.8 of the limit
	assert.InDelta(t, 0.6, r.Multiplier(m), 1e-9)

	m.DrawdownPct = 40.0 // formula would go negative
	assert.InDelta(t, 0.1, r.Multiplier(m), 1e-9)
}

// TestPerformancePenalty_FactorsCompound multiplies independent factors.
func TestPerformancePenalty_FactorsCompound(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	m := healthyMetrics()
	m.WinRate = 0.2  // 0.75
	m.Sharpe = 0.25  // 0.75
	m.DrawdownPct = 12.0 // 0.6
	assert.InDelta(t, 0.75*0.75*0.6, r.Multiplier(m), 1e-9)
}

// TestPerformancePenalty_Apply discounts the risk amount.
func TestPerformancePenalty_Apply(t *testing.T) {
	r := NewPerformancePenaltyResolver(DefaultLimits(), logger.NewNop())

	m := healthyMetrics()
	m.WinRate = 0
	assert.InDelta(t, 100.0, r.Apply(200, m), 1e-9)
}
