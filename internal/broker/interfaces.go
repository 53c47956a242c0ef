package broker

import (
	"context"

	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

// The risk kernel never talks to a broker or data vendor directly; it
// consumes these narrow interfaces. Every implementation may fail, and
// the kernel degrades each failure to a documented default.

// BalanceProvider reports the current account balance.
type BalanceProvider interface {
	GetBalance(ctx context.Context) (float64, error)
}

// VixProvider reports the current volatility-index reading.
type VixProvider interface {
	GetVix(ctx context.Context) (float64, error)
}

// PositionProvider reports a snapshot of currently open positions.
type PositionProvider interface {
	ListOpenPositions(ctx context.Context) ([]portfolio.OpenPosition, error)
}

// MetricsProvider computes a fresh portfolio metrics snapshot.
type MetricsProvider interface {
	GetPortfolioMetrics(ctx context.Context) (portfolio.Metrics, error)
}

// ExecutionController receives emergency instructions from the risk
// kernel.
type ExecutionController interface {
	// FlattenAll closes every open position.
	FlattenAll(ctx context.Context) error

	// HaltTrading stops the execution layer from submitting new orders.
	HaltTrading(ctx context.Context) error
}
