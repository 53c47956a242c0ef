package risk

// VolatilityRegime buckets realized volatility into a qualitative band.
type VolatilityRegime string

const (
	RegimeLow     VolatilityRegime = "low"
	RegimeNormal  VolatilityRegime = "normal"
	RegimeHigh    VolatilityRegime = "high"
	RegimeExtreme VolatilityRegime = "extreme"
)

// Regime boundaries on the standard deviation of per-period returns.
const (
	lowVolatilityCeiling    = 0.01
	normalVolatilityCeiling = 0.02
	highVolatilityCeiling   = 0.04
)

// ClassifyVolatility maps realized volatility to its regime.
func ClassifyVolatility(volatility float64) VolatilityRegime {
	switch {
	case volatility < lowVolatilityCeiling:
		return RegimeLow
	case volatility < normalVolatilityCeiling:
		return RegimeNormal
	case volatility < highVolatilityCeiling:
		return RegimeHigh
	default:
		return RegimeExtreme
	}
}

// Multiplier returns the sizing discount for the regime. Low and normal
// regimes trade at full size.
func (r VolatilityRegime) Multiplier() float64 {
	switch r {
	case RegimeHigh:
		return 0.7
	case RegimeExtreme:
		return 0.4
	default:
		return 1.0
	}
}
