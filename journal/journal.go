// Package journal persists backtest output: the trade ledger, the equity
// curve, and per-run summaries. Backends: SQLite and CSV.
package journal

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run id has no summary row.
var ErrRunNotFound = errors.New("run not found")

// TradeRecord is one executed fill as persisted by a journal backend.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Symbol     string
	Side       string
	Quantity   float64
	Price      float64
	Time       time.Time
	Commission float64
	PnL        float64
}

// EquitySnapshot is one equity-curve point as persisted by a backend.
type EquitySnapshot struct {
	RunID         string
	Time          time.Time
	Equity        float64
	Cash          float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// Journal records the per-bar output of a backtest run.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
