package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileStore_SeedsEquityCurve starts a fresh data directory with one
// seed equity point so metrics are computable immediately.
func TestFileStore_SeedsEquityCurve(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	curve, err := store.EquityCurve(context.Background())
	require.NoError(t, err)
	require.Len(t, curve, 1)
	assert.Equal(t, 1000.0, curve[0].Equity)
}

// TestFileStore_AppendAndReadBack persists across store instances on the
// same directory.
func TestFileStore_AppendAndReadBack(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, store.AppendEquity(ctx, EquityPoint{Timestamp: now, Equity: 1050}))
	require.NoError(t, store.AppendTrade(ctx, TradeRecord{
		Pair: "EUR/USD", Direction: "long", Size: 2000, PnL: 50, Timestamp: now,
	}))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	curve, err := reopened.EquityCurve(ctx)
	require.NoError(t, err)
	require.Len(t, curve, 2)
	assert.Equal(t, 1050.0, curve[1].Equity)

	trades, err := reopened.TradesSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "EUR/USD", trades[0].Pair)
}

// TestFileStore_TradesSinceFiltersByCutoff drops trades older than the
// window.
func TestFileStore_TradesSinceFiltersByCutoff(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	old := time.Now().UTC().AddDate(0, 0, -40)
	recent := time.Now().UTC()
	require.NoError(t, store.AppendTrade(ctx, TradeRecord{Pair: "EUR/USD", PnL: 10, Timestamp: old}))
	require.NoError(t, store.AppendTrade(ctx, TradeRecord{Pair: "GBP/USD", PnL: -5, Timestamp: recent}))

	trades, err := store.TradesSince(ctx, time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "GBP/USD", trades[0].Pair)
}
