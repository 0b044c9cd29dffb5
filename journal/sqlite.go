package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists trades, equity points and run summaries in a SQLite file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, side, quantity, price, time, commission, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Side,
		t.Quantity, t.Price, t.Time, t.Commission, t.PnL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, equity, cash, unrealized_pnl, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Equity, e.Cash, e.UnrealizedPnL, e.RealizedPnL,
	)
	return err
}

func (j *SQLite) RecordRun(r BacktestRun) error {
	_, err := j.db.Exec(`
		INSERT INTO backtest_runs
		(run_id, created, symbol, strategies, start_time, end_time,
		 initial_capital, final_equity, total_return, sharpe_ratio,
		 max_drawdown, win_rate, profit_factor, trades, wins, losses,
		 total_commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Symbol, r.Strategies, r.Start, r.End,
		r.InitialCapital, r.FinalEquity, r.TotalReturn, r.SharpeRatio,
		r.MaxDrawdown, r.WinRate, r.ProfitFactor, r.Trades, r.Wins, r.Losses,
		r.TotalCommission,
	)
	return err
}

// GetRun returns the summary row for runID.
func (j *SQLite) GetRun(runID string) (BacktestRun, error) {
	var r BacktestRun

	row := j.db.QueryRow(`
		SELECT run_id, created, symbol, strategies, start_time, end_time,
		       initial_capital, final_equity, total_return, sharpe_ratio,
		       max_drawdown, win_rate, profit_factor, trades, wins, losses,
		       total_commission
		FROM backtest_runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID, &r.Created, &r.Symbol, &r.Strategies, &r.Start, &r.End,
		&r.InitialCapital, &r.FinalEquity, &r.TotalReturn, &r.SharpeRatio,
		&r.MaxDrawdown, &r.WinRate, &r.ProfitFactor, &r.Trades, &r.Wins,
		&r.Losses, &r.TotalCommission,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return BacktestRun{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
		}
		return BacktestRun{}, err
	}
	return r, nil
}

// ListTradesByRun returns a run's trades ordered by execution time.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, side, quantity, price, time, commission, pnl
		FROM trades
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID, &rec.RunID, &rec.Symbol, &rec.Side,
			&rec.Quantity, &rec.Price, &rec.Time, &rec.Commission, &rec.PnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity curve ordered by time.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, cash, unrealized_pnl, realized_pnl
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(
			&rec.RunID, &rec.Time, &rec.Equity, &rec.Cash,
			&rec.UnrealizedPnL, &rec.RealizedPnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
