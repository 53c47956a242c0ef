package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

const (
	// MinPositionUnits is both the rounding step and the floor for any
	// sized position.
	MinPositionUnits = 1000

	// Dollar value of one pip per standard lot, simplified for majors.
	pipValue = 10.0

	// Reference quote price used to convert a dollar cap into units.
	referencePrice = 1.1

	// Volatility floor for the no-stop-loss sizing path.
	volatilityFloor = 0.02
)

// PositionSizeRequest describes a proposed trade to be sized.
type PositionSizeRequest struct {
	AccountBalance float64
	StopLossPips   float64
	Pair           string
}

// PositionSizer converts market and performance signals into a bounded
// trade size. It is stateless and safe for concurrent use.
type PositionSizer struct {
	limits      Limits
	vixPenalty  *VixPenaltyResolver
	perfPenalty *PerformancePenaltyResolver
	log         *logger.Logger
}

// NewPositionSizer wires the penalty resolvers into a sizer.
func NewPositionSizer(limits Limits, vix *VixPenaltyResolver, perf *PerformancePenaltyResolver, log *logger.Logger) *PositionSizer {
	return &PositionSizer{
		limits:      limits,
		vixPenalty:  vix,
		perfPenalty: perf,
		log:         log.Component("position_sizer"),
	}
}

// Calculate returns the unit count for a proposed trade. Degenerate
// input never propagates an error; it falls back to the conservative
// minimum of 1000 units and the condition is logged.
func (s *PositionSizer) Calculate(req PositionSizeRequest, vix float64, m portfolio.Metrics) int {
	if req.AccountBalance <= 0 {
		s.log.Warn("position_size_fallback",
			zap.Float64("account_balance", req.AccountBalance),
			zap.String("pair", req.Pair))
		return MinPositionUnits
	}

	riskAmount := req.AccountBalance * s.limits.BaseRisk
	riskAmount = s.vixPenalty.Apply(riskAmount, vix)
	riskAmount = s.perfPenalty.Apply(riskAmount, m)

	regime := ClassifyVolatility(m.Volatility)
	riskAmount *= regime.Multiplier()

	var rawSize float64
	if req.StopLossPips > 0 {
		rawSize = riskAmount / (req.StopLossPips * pipValue)
	} else {
		volatility := m.Volatility
		if volatility <= 0 {
			volatility = volatilityFloor
		}
		rawSize = riskAmount / (volatility * req.AccountBalance)
	}

	// Whole multiples of 1000 units, never below the minimum.
	size := math.Floor(rawSize/MinPositionUnits) * MinPositionUnits
	if size < MinPositionUnits {
		size = MinPositionUnits
	}

	maxPosition := (req.AccountBalance * s.limits.MaxRiskPerPair) / referencePrice
	final := math.Min(size, maxPosition)
	if final < MinPositionUnits {
		final = MinPositionUnits
	}

	units := int(final)
	s.log.Event("position_size_calculated",
		zap.Float64("account_balance", req.AccountBalance),
		zap.Float64("base_risk", s.limits.BaseRisk),
		zap.Float64("vix", vix),
		zap.String("volatility_regime", string(regime)),
		zap.Float64("stop_loss_pips", req.StopLossPips),
		zap.Float64("risk_amount", riskAmount),
		zap.Float64("raw_size", rawSize),
		zap.Int("final_units", units))
	return units
}
