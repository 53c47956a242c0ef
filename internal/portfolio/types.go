package portfolio

import "time"

// DefaultPair is assumed when no trading history exists yet.
const DefaultPair = "EUR/USD"

// EquityPoint is one sample of the account equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// TradeRecord is an immutable record of one filled trade.
type TradeRecord struct {
	Pair      string    `json:"pair"`
	Direction string    `json:"direction"` // "buy" or "sell"
	Size      float64   `json:"size"`
	PnL       float64   `json:"pnl"`
	Timestamp time.Time `json:"timestamp"`
}

// OpenPosition is a snapshot of one currently open position as reported
// by the execution collaborator. The risk kernel only ever reads these.
type OpenPosition struct {
	Pair       string  `json:"pair"`
	RiskAmount float64 `json:"risk_amount"`
}
