package portfolio

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

// DefaultWindowDays is the trailing window used for trade statistics.
const DefaultWindowDays = 30

// Tracker is the single owner of portfolio history. The execution
// collaborator records fills through it; the risk kernel asks it for a
// fresh Metrics snapshot each cycle.
type Tracker struct {
	store      Store
	windowDays int
	log        *logger.Logger
}

// NewTracker wraps a store with the default trailing window.
func NewTracker(store Store, log *logger.Logger) *Tracker {
	return &Tracker{
		store:      store,
		windowDays: DefaultWindowDays,
		log:        log.Component("portfolio_tracker"),
	}
}

// SetWindowDays overrides the trailing statistics window. Values below
// one day are ignored.
func (t *Tracker) SetWindowDays(days int) {
	if days > 0 {
		t.windowDays = days
	}
}

// RecordFill appends a trade and the resulting account equity.
func (t *Tracker) RecordFill(ctx context.Context, trade TradeRecord, newEquity float64) error {
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now().UTC()
	}
	if err := t.store.AppendTrade(ctx, trade); err != nil {
		return err
	}
	if err := t.store.AppendEquity(ctx, EquityPoint{Timestamp: trade.Timestamp, Equity: newEquity}); err != nil {
		return err
	}

	t.log.Event("trade_recorded",
		zap.String("pair", trade.Pair),
		zap.String("direction", trade.Direction),
		zap.Float64("pnl", trade.PnL),
		zap.Float64("equity", newEquity))
	return nil
}

// GetPortfolioMetrics computes metrics over the stored history. A storage
// failure degrades to the documented defaults with a warning rather than
// surfacing an error to the evaluation loop.
func (t *Tracker) GetPortfolioMetrics(ctx context.Context) (Metrics, error) {
	curve, err := t.store.EquityCurve(ctx)
	if err != nil {
		t.log.Warn("equity_curve_read_failed", zap.Error(err))
		return DefaultMetrics(), err
	}

	cutoff := time.Now().AddDate(0, 0, -t.windowDays)
	trades, err := t.store.TradesSince(ctx, cutoff)
	if err != nil {
		t.log.Warn("trade_journal_read_failed", zap.Error(err))
		return DefaultMetrics(), err
	}

	m := CalculateMetrics(curve, trades, t.windowDays)
	t.log.Event("metrics_computed",
		zap.Float64("sharpe", m.Sharpe),
		zap.Float64("sortino", m.Sortino),
		zap.Float64("drawdown_pct", m.DrawdownPct),
		zap.Float64("win_rate", m.WinRate),
		zap.Float64("volatility", m.Volatility),
		zap.Float64("trade_frequency", m.TradeFrequency))
	return m, nil
}

// LastEquity returns the most recent equity sample, or 0 when the curve
// cannot be read.
func (t *Tracker) LastEquity(ctx context.Context) (float64, error) {
	curve, err := t.store.EquityCurve(ctx)
	if err != nil || len(curve) == 0 {
		return 0, err
	}
	return curve[len(curve)-1].Equity, nil
}
