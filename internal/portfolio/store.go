package portfolio

import (
	"context"
	"time"
)

// Store persists the append-only equity curve and trade journal. The
// execution collaborator appends after each fill; the risk kernel only
// reads. Implementations must be safe for concurrent use.
type Store interface {
	// AppendEquity records a new equity sample.
	AppendEquity(ctx context.Context, point EquityPoint) error

	// AppendTrade records a filled trade.
	AppendTrade(ctx context.Context, trade TradeRecord) error

	// EquityCurve returns the full equity curve in insertion order.
	EquityCurve(ctx context.Context) ([]EquityPoint, error)

	// TradesSince returns trades with a timestamp at or after cutoff,
	// in insertion order.
	TradesSince(ctx context.Context, cutoff time.Time) ([]TradeRecord, error)

	// Close releases any underlying resources.
	Close() error
}
