package portfolio

import "math"

// Trading-day annualization factor for Sharpe/Sortino.
const annualizationFactor = 252

// Metrics holds the trailing performance figures the risk components
// consume. Recomputed on demand every cycle, never persisted.
type Metrics struct {
	Sharpe         float64  `json:"sharpe"`
	Sortino        float64  `json:"sortino"`
	DrawdownPct    float64  `json:"drawdown_pct"`
	WinRate        float64  `json:"win_rate"`
	AvgReturn      float64  `json:"avg_return"`
	Volatility     float64  `json:"volatility"`
	TradeFrequency float64  `json:"trade_frequency"`
	ActivePairs    []string `json:"active_pairs"`
}

// DefaultMetrics returns the documented neutral values used whenever the
// equity curve has fewer than two points or a collaborator fetch fails.
func DefaultMetrics() Metrics {
	return Metrics{
		Sharpe:         0,
		Sortino:        0,
		DrawdownPct:    0,
		WinRate:        0.5,
		AvgReturn:      0,
		Volatility:     0.02,
		TradeFrequency: 0,
		ActivePairs:    []string{DefaultPair},
	}
}

// CalculateMetrics derives performance metrics from an equity curve and
// the trades of the trailing window. Degenerate input never errors; every
// undefined quantity falls back to its DefaultMetrics value.
func CalculateMetrics(equity []EquityPoint, trades []TradeRecord, windowDays int) Metrics {
	if len(equity) < 2 {
		return DefaultMetrics()
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev > 0 {
			returns = append(returns, (equity[i].Equity-prev)/prev)
		}
	}

	m := DefaultMetrics()

	mean := meanOf(returns)
	stdev := stdevOf(returns, mean)

	if len(returns) > 1 && stdev > 0 {
		m.Sharpe = mean / stdev * math.Sqrt(annualizationFactor)
	}

	// Sortino penalizes only downside deviation. With no losing periods
	// it degenerates to the Sharpe value rather than +Inf.
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) > 0 {
		downside := stdevOf(negative, meanOf(negative))
		if downside > 0 {
			m.Sortino = mean / downside * math.Sqrt(annualizationFactor)
		}
	} else {
		m.Sortino = m.Sharpe
	}

	m.DrawdownPct = maxDrawdownPct(equity)

	if len(trades) > 0 {
		wins := 0
		pnlSum := 0.0
		pairs := make(map[string]struct{})
		for _, t := range trades {
			if t.PnL > 0 {
				wins++
			}
			pnlSum += t.PnL
			pairs[t.Pair] = struct{}{}
		}
		m.WinRate = float64(wins) / float64(len(trades))
		m.AvgReturn = pnlSum / float64(len(trades))
		if len(pairs) > 0 {
			m.ActivePairs = m.ActivePairs[:0]
			for p := range pairs {
				m.ActivePairs = append(m.ActivePairs, p)
			}
		}
	}

	if len(returns) > 1 {
		m.Volatility = stdev
	}

	if windowDays > 0 {
		m.TradeFrequency = float64(len(trades)) / float64(windowDays)
	}

	return m
}

// maxDrawdownPct is the largest peak-to-trough equity decline, as a
// percentage of the running peak.
func maxDrawdownPct(equity []EquityPoint) float64 {
	peak := equity[0].Equity
	maxDD := 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdevOf is the population standard deviation around the given mean.
func stdevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}
