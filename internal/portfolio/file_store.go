package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	equityFileName = "equity_curve.json"
	tradesFileName = "trades.json"

	// A fresh account starts with this equity so metrics are computable
	// from the first recorded fill.
	seedEquity = 1000.0
)

// FileStore keeps the equity curve and trade journal as JSON files under
// a data directory. Writes rewrite the whole file; the journal is small
// enough that this stays cheap.
type FileStore struct {
	mu         sync.Mutex
	equityPath string
	tradesPath string
}

// NewFileStore creates the data directory if needed and seeds an empty
// equity curve with the starting equity.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		equityPath: filepath.Join(dataDir, equityFileName),
		tradesPath: filepath.Join(dataDir, tradesFileName),
	}

	if _, err := os.Stat(s.equityPath); os.IsNotExist(err) {
		seed := []EquityPoint{{Timestamp: time.Now().UTC(), Equity: seedEquity}}
		if err := writeJSON(s.equityPath, seed); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(s.tradesPath); os.IsNotExist(err) {
		if err := writeJSON(s.tradesPath, []TradeRecord{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// AppendEquity records a new equity sample.
func (s *FileStore) AppendEquity(ctx context.Context, point EquityPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var curve []EquityPoint
	if err := readJSON(s.equityPath, &curve); err != nil {
		return err
	}
	curve = append(curve, point)
	return writeJSON(s.equityPath, curve)
}

// AppendTrade records a filled trade.
func (s *FileStore) AppendTrade(ctx context.Context, trade TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var trades []TradeRecord
	if err := readJSON(s.tradesPath, &trades); err != nil {
		return err
	}
	trades = append(trades, trade)
	return writeJSON(s.tradesPath, trades)
}

// EquityCurve returns the full equity curve in insertion order.
func (s *FileStore) EquityCurve(ctx context.Context) ([]EquityPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var curve []EquityPoint
	if err := readJSON(s.equityPath, &curve); err != nil {
		return nil, err
	}
	return curve, nil
}

// TradesSince returns trades with a timestamp at or after cutoff.
func (s *FileStore) TradesSince(ctx context.Context, cutoff time.Time) ([]TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var trades []TradeRecord
	if err := readJSON(s.tradesPath, &trades); err != nil {
		return nil, err
	}

	recent := make([]TradeRecord, 0, len(trades))
	for _, t := range trades {
		if !t.Timestamp.Before(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent, nil
}

// Close is a no-op for file-backed storage.
func (s *FileStore) Close() error { return nil }

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
