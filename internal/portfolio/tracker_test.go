package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

// failingStore fails every read.
type failingStore struct{}

func (failingStore) AppendEquity(context.Context, EquityPoint) error { return nil }
func (failingStore) AppendTrade(context.Context, TradeRecord) error  { return nil }
func (failingStore) EquityCurve(context.Context) ([]EquityPoint, error) {
	return nil, errors.New("storage offline")
}
func (failingStore) TradesSince(context.Context, time.Time) ([]TradeRecord, error) {
	return nil, errors.New("storage offline")
}
func (failingStore) Close() error { return nil }

// TestTracker_RecordFillAndMetrics runs a small trading sequence through
// the file store and checks the derived metrics.
func TestTracker_RecordFillAndMetrics(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	tracker := NewTracker(store, logger.NewNop())

	now := time.Now().UTC()
	require.NoError(t, tracker.RecordFill(ctx, TradeRecord{Pair: "EUR/USD", Direction: "long", Size: 2000, PnL: 50, Timestamp: now}, 1050))
	require.NoError(t, tracker.RecordFill(ctx, TradeRecord{Pair: "GBP/USD", Direction: "short", Size: 1000, PnL: -20, Timestamp: now}, 1030))

	m, err := tracker.GetPortfolioMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0.5, m.WinRate)
	assert.Greater(t, m.DrawdownPct, 0.0)
	assert.ElementsMatch(t, []string{"EUR/USD", "GBP/USD"}, m.ActivePairs)

	equity, err := tracker.LastEquity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1030.0, equity)
}

// TestTracker_StorageFailureDegradesToDefaults surfaces the error but
// still hands back usable metric values.
func TestTracker_StorageFailureDegradesToDefaults(t *testing.T) {
	tracker := NewTracker(failingStore{}, logger.NewNop())

	m, err := tracker.GetPortfolioMetrics(context.Background())

	assert.Error(t, err)
	assert.Equal(t, DefaultMetrics(), m)
}

// TestTracker_FillsMissingTimestamp stamps untimestamped fills.
func TestTracker_FillsMissingTimestamp(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	tracker := NewTracker(store, logger.NewNop())
	require.NoError(t, tracker.RecordFill(ctx, TradeRecord{Pair: "EUR/USD", PnL: 10}, 1010))

	trades, err := store.TradesSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.False(t, trades[0].Timestamp.IsZero())
}
