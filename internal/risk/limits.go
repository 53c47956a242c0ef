package risk

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

// Limits is the immutable risk configuration loaded once at startup.
type Limits struct {
	BaseRisk               float64 `json:"base_risk"`                // fraction of balance risked per trade
	MaxDrawdown            float64 `json:"max_drawdown"`             // fraction, e.g. 0.15
	MaxPositions           int     `json:"max_positions"`            // simultaneous open positions
	MaxRiskPerPair         float64 `json:"max_risk_per_pair"`        // fraction of balance
	MaxCorrelationExposure float64 `json:"max_correlation_exposure"` // fraction of balance
	WinRateThreshold       float64 `json:"win_rate_threshold"`
	SharpeThreshold        float64 `json:"sharpe_threshold"`
}

// DefaultLimits mirrors the conservative production defaults.
func DefaultLimits() Limits {
	return Limits{
		BaseRisk:               0.02,
		MaxDrawdown:            0.15,
		MaxPositions:           5,
		MaxRiskPerPair:         0.05,
		MaxCorrelationExposure: 0.10,
		WinRateThreshold:       0.4,
		SharpeThreshold:        0.5,
	}
}

// Validate rejects limit values that would disable or invert a control.
func (l Limits) Validate() error {
	if l.BaseRisk <= 0 || l.BaseRisk > 1 {
		return fmt.Errorf("base_risk must be in (0, 1], got %v", l.BaseRisk)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown > 1 {
		return fmt.Errorf("max_drawdown must be in (0, 1], got %v", l.MaxDrawdown)
	}
	if l.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive, got %d", l.MaxPositions)
	}
	if l.MaxRiskPerPair <= 0 || l.MaxRiskPerPair > 1 {
		return fmt.Errorf("max_risk_per_pair must be in (0, 1], got %v", l.MaxRiskPerPair)
	}
	if l.MaxCorrelationExposure <= 0 || l.MaxCorrelationExposure > 1 {
		return fmt.Errorf("max_correlation_exposure must be in (0, 1], got %v", l.MaxCorrelationExposure)
	}
	if l.WinRateThreshold < 0 || l.WinRateThreshold > 1 {
		return fmt.Errorf("win_rate_threshold must be in [0, 1], got %v", l.WinRateThreshold)
	}
	return nil
}

// Rejection reasons returned by the limit enforcer.
const (
	ReasonApproved         = "position approved"
	ReasonMaxPositions     = "max positions reached"
	ReasonPairRisk         = "pair risk limit exceeded"
	ReasonCorrelationRisk  = "correlation risk limit exceeded"
	ReasonLimitCheckFailed = "error checking limits"
)

// correlationMap lists pairs whose price movements are statistically
// linked closely enough to share an exposure budget.
var correlationMap = map[string][]string{
	"EUR/USD": {"GBP/USD", "AUD/USD"},
	"GBP/USD": {"EUR/USD", "AUD/USD"},
	"USD/JPY": {"USD/CHF"},
	"AUD/USD": {"EUR/USD", "GBP/USD", "NZD/USD"},
	"NZD/USD": {"AUD/USD"},
}

// CorrelatedPairs returns the pairs correlated with the given pair.
func CorrelatedPairs(pair string) []string {
	return correlationMap[pair]
}

// LimitEnforcer checks a proposed position against count, per-pair and
// correlation exposure caps. It is a pure function over its inputs and
// safe for concurrent use.
type LimitEnforcer struct {
	limits Limits
	log    *logger.Logger
}

// NewLimitEnforcer creates an enforcer for the given limits.
func NewLimitEnforcer(limits Limits, log *logger.Logger) *LimitEnforcer {
	return &LimitEnforcer{
		limits: limits,
		log:    log.Component("limit_enforcer"),
	}
}

// Check approves or rejects a proposed position given a point-in-time
// snapshot of open positions and the account balance.
func (e *LimitEnforcer) Check(proposed portfolio.OpenPosition, open []portfolio.OpenPosition, balance float64) (bool, string) {
	if len(open) >= e.limits.MaxPositions {
		e.log.Event("position_limit_exceeded",
			zap.Int("open_positions", len(open)),
			zap.Int("max_positions", e.limits.MaxPositions))
		return false, ReasonMaxPositions
	}

	pairExposure := 0.0
	for _, p := range open {
		if p.Pair == proposed.Pair {
			pairExposure += p.RiskAmount
		}
	}
	maxPairRisk := balance * e.limits.MaxRiskPerPair
	if pairExposure+proposed.RiskAmount > maxPairRisk {
		e.log.Event("pair_risk_limit_exceeded",
			zap.String("pair", proposed.Pair),
			zap.Float64("current_exposure", pairExposure),
			zap.Float64("new_risk", proposed.RiskAmount),
			zap.Float64("max_pair_risk", maxPairRisk))
		return false, ReasonPairRisk
	}

	correlated := CorrelatedPairs(proposed.Pair)
	correlatedExposure := 0.0
	for _, p := range open {
		for _, c := range correlated {
			if p.Pair == c {
				correlatedExposure += p.RiskAmount
				break
			}
		}
	}
	maxCorrelationRisk := balance * e.limits.MaxCorrelationExposure
	if correlatedExposure+proposed.RiskAmount > maxCorrelationRisk {
		e.log.Event("correlation_limit_exceeded",
			zap.String("pair", proposed.Pair),
			zap.Strings("correlated_pairs", correlated),
			zap.Float64("correlated_exposure", correlatedExposure),
			zap.Float64("max_correlation_risk", maxCorrelationRisk))
		return false, ReasonCorrelationRisk
	}

	e.log.Event("position_approved",
		zap.String("pair", proposed.Pair),
		zap.Float64("risk_amount", proposed.RiskAmount))
	return true, ReasonApproved
}
