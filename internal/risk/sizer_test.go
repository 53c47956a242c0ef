package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

func newTestSizer(t *testing.T) *PositionSizer {
	t.Helper()
	log := logger.NewNop()
	return NewPositionSizer(
		DefaultLimits(),
		newTestVixResolver(t),
		NewPerformancePenaltyResolver(DefaultLimits(), log),
		log,
	)
}

func normalVolMetrics() portfolio.Metrics {
	m := healthyMetrics()
	m.Volatility = 0.015
	return m
}

// TestCalculate_DefaultMetricsSmallAccount covers the canonical small
// account case: every discount stacks up and the floor still guarantees
// a tradeable size.
func TestCalculate_DefaultMetricsSmallAccount(t *testing.T) {
	s := newTestSizer(t)

	units := s.Calculate(PositionSizeRequest{AccountBalance: 10000}, 18, portfolio.DefaultMetrics())

	assert.Equal(t, MinPositionUnits, units)
}

// TestCalculate_AggressiveBaseRiskSmallStop floors a tiny raw size even
// under an aggressive risk fraction.
func TestCalculate_AggressiveBaseRiskSmallStop(t *testing.T) {
	log := logger.NewNop()
	limits := DefaultLimits()
	limits.BaseRisk = 0.1
	s := NewPositionSizer(limits, newTestVixResolver(t),
		NewPerformancePenaltyResolver(limits, log), log)

	m := portfolio.DefaultMetrics()
	m.Sharpe = 0.5
	m.Volatility = 0.015

	// risk = 1000; raw = 1000 / (20 pips * 10) = 5 units.
	units := s.Calculate(PositionSizeRequest{
		AccountBalance: 10000,
		StopLossPips:   20,
	}, 20, m)

	assert.Equal(t, MinPositionUnits, units)
}

// TestCalculate_StopLossPath sizes off the stop distance when one is
// provided.
func TestCalculate_StopLossPath(t *testing.T) {
	s := newTestSizer(t)

	// risk = 1,000,000 * 0.02 = 20,000; raw = 20,000 / (1 pip * 10).
	units := s.Calculate(PositionSizeRequest{
		AccountBalance: 1_000_000,
		StopLossPips:   1,
	}, 18, normalVolMetrics())

	assert.Equal(t, 2000, units)
}

// TestCalculate_RoundsDownToThousand truncates to whole 1000-unit lots.
func TestCalculate_RoundsDownToThousand(t *testing.T) {
	s := newTestSizer(t)

	// risk = 25,000; raw = 2,500 units.
	units := s.Calculate(PositionSizeRequest{
		AccountBalance: 1_250_000,
		StopLossPips:   1,
	}, 18, normalVolMetrics())

	assert.Equal(t, 2000, units)
}

// TestCalculate_VixPenaltyShrinksSize verifies an elevated reading cuts
// the size through the penalty curve.
func TestCalculate_VixPenaltyShrinksSize(t *testing.T) {
	s := newTestSizer(t)

	req := PositionSizeRequest{AccountBalance: 1_000_000, StopLossPips: 1}
	calm := s.Calculate(req, 18, normalVolMetrics())
	stressed := s.Calculate(req, 32, normalVolMetrics())

	assert.Equal(t, 2000, calm)
	assert.Equal(t, 1000, stressed)
}

// TestCalculate_ExtremeRegimeShrinksSize verifies the volatility regime
// discount is applied on top of the penalties.
func TestCalculate_ExtremeRegimeShrinksSize(t *testing.T) {
	s := newTestSizer(t)

	req := PositionSizeRequest{AccountBalance: 2_000_000, StopLossPips: 1}

	normal := s.Calculate(req, 18, normalVolMetrics())

	extreme := normalVolMetrics()
	extreme.Volatility = 0.05
	reduced := s.Calculate(req, 18, extreme)

	assert.Equal(t, 4000, normal)
	assert.Less(t, reduced, normal)
}

// TestCalculate_PairExposureCapStillFloorsAtMinimum applies the per-pair
// cap but never returns an untradeable size.
func TestCalculate_PairExposureCapStillFloorsAtMinimum(t *testing.T) {
	s := newTestSizer(t)

	// raw = 2,000 units but the pair cap for a 10k account is ~454.
	units := s.Calculate(PositionSizeRequest{
		AccountBalance: 10_000,
		StopLossPips:   0.01,
	}, 18, normalVolMetrics())

	assert.Equal(t, MinPositionUnits, units)
}

// TestCalculate_VolatilityPath sizes off realized volatility when no
// stop loss is given.
func TestCalculate_VolatilityPath(t *testing.T) {
	s := newTestSizer(t)

	units := s.Calculate(PositionSizeRequest{AccountBalance: 50_000}, 18, normalVolMetrics())

	assert.Equal(t, MinPositionUnits, units)
}

// TestCalculate_InvalidBalanceFallsBack never errors on degenerate
// input.
func TestCalculate_InvalidBalanceFallsBack(t *testing.T) {
	s := newTestSizer(t)

	assert.Equal(t, MinPositionUnits, s.Calculate(PositionSizeRequest{AccountBalance: 0}, 18, portfolio.DefaultMetrics()))
	assert.Equal(t, MinPositionUnits, s.Calculate(PositionSizeRequest{AccountBalance: -500}, 18, portfolio.DefaultMetrics()))
}
