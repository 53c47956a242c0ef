package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

// PerformancePenaltyResolver discounts risk when trailing performance
// deteriorates: low win rate, low Sharpe, or drawdown approaching the
// configured maximum. Factors are independent and multiplicative.
type PerformancePenaltyResolver struct {
	limits Limits
	log    *logger.Logger
}

// NewPerformancePenaltyResolver creates a resolver for the given limits.
func NewPerformancePenaltyResolver(limits Limits, log *logger.Logger) *PerformancePenaltyResolver {
	return &PerformancePenaltyResolver{
		limits: limits,
		log:    log.Component("performance_penalty"),
	}
}

// Multiplier computes the combined performance discount for a metrics
// snapshot. Untriggered factors contribute 1.0.
func (r *PerformancePenaltyResolver) Multiplier(m portfolio.Metrics) float64 {
	multiplier := 1.0

	if m.WinRate < r.limits.WinRateThreshold {
		multiplier *= 0.5 + (m.WinRate/r.limits.WinRateThreshold)*0.5
	}

	if m.Sharpe < r.limits.SharpeThreshold {
		multiplier *= 0.5 + math.Max(0, m.Sharpe/r.limits.SharpeThreshold)*0.5
	}

	drawdownFraction := m.DrawdownPct / 100
	if drawdownFraction > r.limits.MaxDrawdown*0.5 {
		penalty := 1.0 - (drawdownFraction/r.limits.MaxDrawdown)*0.5
		multiplier *= math.Max(0.1, penalty)
	}

	return multiplier
}

// Apply discounts a risk amount by the performance multiplier.
func (r *PerformancePenaltyResolver) Apply(riskAmount float64, m portfolio.Metrics) float64 {
	multiplier := r.Multiplier(m)
	adjusted := riskAmount * multiplier

	r.log.Event("performance_penalty_applied",
		zap.Float64("win_rate", m.WinRate),
		zap.Float64("sharpe", m.Sharpe),
		zap.Float64("drawdown_fraction", m.DrawdownPct/100),
		zap.Float64("multiplier", multiplier),
		zap.Float64("adjusted_risk", adjusted))
	return adjusted
}
