package journal

import "time"

// BacktestRun mirrors one row of the backtest_runs table: the configuration
// and headline metrics of a completed run.
type BacktestRun struct {
	RunID      string
	Created    time.Time
	Symbol     string
	Strategies string // comma-joined strategy names

	Start time.Time
	End   time.Time

	InitialCapital float64
	FinalEquity    float64

	TotalReturn     float64
	SharpeRatio     float64
	MaxDrawdown     float64
	WinRate         float64
	ProfitFactor    float64
	Trades          int
	Wins            int
	Losses          int
	TotalCommission float64
}
