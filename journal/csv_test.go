package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournalWritesRows(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:  "trade-1",
		RunID:    "run-1",
		Symbol:   "BTCUSDT",
		Side:     "buy",
		Quantity: 2,
		Price:    100,
		Time:     ts,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID:  "run-1",
		Time:   ts,
		Equity: 10000,
		Cash:   9800,
	}))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2, "header plus one row")
	assert.Equal(t, "trade_id", trades[0][0])
	assert.Equal(t, "trade-1", trades[1][0])
	assert.Equal(t, "BTCUSDT", trades[1][2])
	assert.Equal(t, "2024-01-02T00:00:00Z", trades[1][6])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, "run-1", equity[1][0])
	assert.Equal(t, "10000.000000", equity[1][2])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
