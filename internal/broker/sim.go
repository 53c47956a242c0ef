package broker

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
)

// SimVixFeed produces readings drawn uniformly from the typical index
// range. Stands in until a real volatility feed is wired up.
type SimVixFeed struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimVixFeed creates a simulated feed with the given seed.
func NewSimVixFeed(seed int64) *SimVixFeed {
	return &SimVixFeed{rng: rand.New(rand.NewSource(seed))}
}

// GetVix returns a reading in [15, 35).
func (f *SimVixFeed) GetVix(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return 15 + f.rng.Float64()*20, nil
}

// TrackerBalance reports the latest equity sample as the account
// balance.
type TrackerBalance struct {
	tracker *portfolio.Tracker
}

// NewTrackerBalance wraps a portfolio tracker as a balance provider.
func NewTrackerBalance(tracker *portfolio.Tracker) *TrackerBalance {
	return &TrackerBalance{tracker: tracker}
}

// GetBalance returns the most recent recorded equity.
func (b *TrackerBalance) GetBalance(ctx context.Context) (float64, error) {
	return b.tracker.LastEquity(ctx)
}

// MemoryPositionBook is an in-memory open-position snapshot, maintained
// by the execution layer in simulation and by tests.
type MemoryPositionBook struct {
	mu        sync.RWMutex
	positions []portfolio.OpenPosition
}

// NewMemoryPositionBook returns an empty book.
func NewMemoryPositionBook() *MemoryPositionBook {
	return &MemoryPositionBook{}
}

// Open adds a position to the book.
func (b *MemoryPositionBook) Open(p portfolio.OpenPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, p)
}

// CloseAll empties the book.
func (b *MemoryPositionBook) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = nil
}

// ListOpenPositions returns a copy of the current snapshot.
func (b *MemoryPositionBook) ListOpenPositions(ctx context.Context) ([]portfolio.OpenPosition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make([]portfolio.OpenPosition, len(b.positions))
	copy(snapshot, b.positions)
	return snapshot, nil
}

// LoggingExecution is an execution controller that records the
// instructions it receives. Used in simulation, where there is no real
// order layer to flatten.
type LoggingExecution struct {
	book *MemoryPositionBook
	log  *logger.Logger

	mu     sync.Mutex
	halted bool
}

// NewLoggingExecution wraps a position book.
func NewLoggingExecution(book *MemoryPositionBook, log *logger.Logger) *LoggingExecution {
	return &LoggingExecution{book: book, log: log.Component("execution")}
}

// FlattenAll closes every open position.
func (e *LoggingExecution) FlattenAll(ctx context.Context) error {
	positions, _ := e.book.ListOpenPositions(ctx)
	e.book.CloseAll()
	e.log.Event("positions_flattened", zap.Int("count", len(positions)))
	return nil
}

// HaltTrading stops new order submission.
func (e *LoggingExecution) HaltTrading(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.halted = true
	e.log.Event("trading_halted")
	return nil
}

// Halted reports whether trading has been halted.
func (e *LoggingExecution) Halted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}
