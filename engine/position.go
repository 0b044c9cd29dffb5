package engine

import "time"

// Trade is a completed fill. The ledger is append-only; one Trade is
// recorded per successful order execution. PnL is gross realized P&L and is
// only non-zero on sell fills; commission is tracked separately.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Time       time.Time `json:"timestamp"`
	Commission float64   `json:"commission"`
	PnL        float64   `json:"pnl"`
}

// Position is the per-symbol aggregate holding. Quantity is never negative
// (long only). AvgPrice is the volume-weighted entry price; sells never
// change it, only quantity and realized P&L.
type Position struct {
	Symbol          string  `json:"symbol"`
	Quantity        float64 `json:"quantity"`
	AvgPrice        float64 `json:"avg_price"`
	UnrealizedPnL   float64 `json:"unrealized_pnl"`
	RealizedPnL     float64 `json:"realized_pnl"`
	TotalCommission float64 `json:"total_commission"`
}

// EquityPoint is one timestamped snapshot of the equity curve, appended once
// per processed bar.
type EquityPoint struct {
	Time          time.Time `json:"timestamp"`
	Equity        float64   `json:"equity"`
	Cash          float64   `json:"cash"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	RealizedPnL   float64   `json:"realized_pnl"`
}
