package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	j := newTestSQLite(t)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rec := TradeRecord{
		TradeID:    "trade-1",
		RunID:      "run-1",
		Symbol:     "BTCUSDT",
		Side:       "sell",
		Quantity:   1.5,
		Price:      110,
		Time:       ts,
		Commission: 0.165,
		PnL:        15,
	}
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.ListTradesByRun("run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.TradeID, got[0].TradeID)
	assert.Equal(t, rec.Symbol, got[0].Symbol)
	assert.Equal(t, rec.Side, got[0].Side)
	assert.InDelta(t, rec.PnL, got[0].PnL, 1e-9)
	assert.True(t, got[0].Time.Equal(ts))
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	j := newTestSQLite(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			RunID:  "run-1",
			Time:   base.AddDate(0, 0, i),
			Equity: 10000 + float64(i)*100,
			Cash:   10000,
		}))
	}

	got, err := j.ListEquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 10200, got[2].Equity, 1e-9)

	other, err := j.ListEquityByRun("run-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteRunSummaryRoundTrip(t *testing.T) {
	j := newTestSQLite(t)

	run := BacktestRun{
		RunID:          "run-1",
		Created:        time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		Symbol:         "BTCUSDT",
		Strategies:     "Moving Average Crossover,RSI Strategy",
		Start:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		InitialCapital: 10000,
		FinalEquity:    10250,
		TotalReturn:    2.5,
		SharpeRatio:    1.1,
		MaxDrawdown:    -4.2,
		WinRate:        60,
		ProfitFactor:   1.8,
		Trades:         5,
		Wins:           3,
		Losses:         2,
		TotalCommission: 10.5,
	}
	require.NoError(t, j.RecordRun(run))

	got, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.Strategies, got.Strategies)
	assert.InDelta(t, run.TotalReturn, got.TotalReturn, 1e-9)
	assert.Equal(t, run.Trades, got.Trades)

	_, err = j.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
