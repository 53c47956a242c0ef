package risk

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

// VixPenaltyRule maps a volatility-index threshold to a risk multiplier.
// Rules form an ordered curve: thresholds strictly increasing, multipliers
// non-increasing, so a higher reading never loosens risk.
type VixPenaltyRule struct {
	Threshold  float64 `json:"threshold"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultVixPenaltyCurve covers the typical index range from calm markets
// through crisis readings.
func DefaultVixPenaltyCurve() []VixPenaltyRule {
	return []VixPenaltyRule{
		{Threshold: 20, Multiplier: 1.0},
		{Threshold: 25, Multiplier: 0.8},
		{Threshold: 30, Multiplier: 0.6},
		{Threshold: 40, Multiplier: 0.3},
		{Threshold: 50, Multiplier: 0.1},
	}
}

// ValidateVixCurve rejects malformed curves at construction time so a
// typo in configuration cannot silently weaken the penalty.
func ValidateVixCurve(curve []VixPenaltyRule) error {
	if len(curve) == 0 {
		return fmt.Errorf("vix penalty curve must not be empty")
	}
	for i, rule := range curve {
		if rule.Threshold < 0 {
			return fmt.Errorf("vix rule %d: threshold must be >= 0, got %v", i, rule.Threshold)
		}
		if rule.Multiplier <= 0 || rule.Multiplier > 1 {
			return fmt.Errorf("vix rule %d: multiplier must be in (0, 1], got %v", i, rule.Multiplier)
		}
		if i > 0 {
			if rule.Threshold <= curve[i-1].Threshold {
				return fmt.Errorf("vix rule %d: thresholds must be strictly increasing", i)
			}
			if rule.Multiplier > curve[i-1].Multiplier {
				return fmt.Errorf("vix rule %d: multipliers must be non-increasing", i)
			}
		}
	}
	return nil
}

// VixPenaltyResolver discounts risk based on a volatility-index reading.
// Exactly one tier applies per reading; tiers are never compounded.
type VixPenaltyResolver struct {
	curve []VixPenaltyRule
	log   *logger.Logger
}

// NewVixPenaltyResolver validates the curve and returns a resolver.
func NewVixPenaltyResolver(curve []VixPenaltyRule, log *logger.Logger) (*VixPenaltyResolver, error) {
	if err := ValidateVixCurve(curve); err != nil {
		return nil, err
	}
	rules := make([]VixPenaltyRule, len(curve))
	copy(rules, curve)
	return &VixPenaltyResolver{
		curve: rules,
		log:   log.Component("vix_penalty"),
	}, nil
}

// Multiplier returns the multiplier of the rule with the largest
// threshold at or below the reading, or 1.0 below every threshold.
func (r *VixPenaltyResolver) Multiplier(vix float64) float64 {
	multiplier := 1.0
	for i := len(r.curve) - 1; i >= 0; i-- {
		if vix >= r.curve[i].Threshold {
			multiplier = r.curve[i].Multiplier
			break
		}
	}
	return multiplier
}

// Apply discounts a risk amount by the resolved multiplier.
func (r *VixPenaltyResolver) Apply(riskAmount, vix float64) float64 {
	multiplier := r.Multiplier(vix)
	adjusted := riskAmount * multiplier

	r.log.Event("vix_penalty_applied",
		zap.Float64("vix", vix),
		zap.Float64("multiplier", multiplier),
		zap.Float64("base_risk", riskAmount),
		zap.Float64("adjusted_risk", adjusted))
	return adjusted
}
