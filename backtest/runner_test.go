package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quant/engine"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategies"
)

// stubStrategy always emits the same signal once warm.
type stubStrategy struct {
	name   string
	action strategies.Action
}

func (s stubStrategy) Name() string { return s.name }
func (s stubStrategy) Warmup() int  { return 0 }
func (s stubStrategy) GenerateSignals(bars []market.Bar, i int) strategies.Signal {
	return strategies.Signal{Action: s.action, Strength: 1}
}

func barsOf(closes ...float64) []market.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{Time: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestRunRequiresEngineAndStrategy(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(barsOf(1, 2), "BTCUSDT", 0.1)
	assert.Error(t, err)

	r = NewRunner(engine.New(10000, 0.001))
	_, err = r.Run(barsOf(1, 2), "BTCUSDT", 0.1)
	assert.Error(t, err)
}

func TestEquityCurveHasOnePointPerProcessedBar(t *testing.T) {
	r := NewRunner(engine.New(10000, 0.001))
	r.AddStrategy(stubStrategy{name: "noop", action: strategies.Hold})

	bars := barsOf(100, 101, 102, 103, 104)
	res, err := r.Run(bars, "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Len(t, res.EquityCurve, len(bars)-1)
	assert.Equal(t, bars[1].Time, res.EquityCurve[0].Time)
	assert.Equal(t, bars[len(bars)-1].Time, res.EquityCurve[len(res.EquityCurve)-1].Time)
}

func TestFlatMarketProducesNoTrades(t *testing.T) {
	r := NewRunner(engine.New(10000, 0.001))
	r.AddStrategy(strategies.NewMACross(2, 3))
	r.AddStrategy(strategies.NewBollingerReversion(3, 2))

	// Constant prices, longer than every warm-up window.
	bars := barsOf(100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
	res, err := r.Run(bars, "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 10000.0, res.Metrics.FinalEquity)
	assert.Equal(t, 0.0, res.Metrics.TotalReturn)
	assert.Empty(t, res.FinalPositions)
}

func TestVotingTiePlacesNoOrder(t *testing.T) {
	e := engine.New(10000, 0.001)
	r := NewRunner(e)
	r.AddStrategy(stubStrategy{name: "bull", action: strategies.Buy})
	r.AddStrategy(stubStrategy{name: "bear", action: strategies.Sell})

	res, err := r.Run(barsOf(100, 101, 102), "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 10000.0, e.Cash())
	assert.Len(t, res.EquityCurve, 2)
}

func TestMajorityBuySizesOrderFromCash(t *testing.T) {
	e := engine.New(10000, 0.001)
	r := NewRunner(e)
	r.AddStrategy(stubStrategy{name: "bull-1", action: strategies.Buy})
	r.AddStrategy(stubStrategy{name: "bull-2", action: strategies.Buy})
	r.AddStrategy(stubStrategy{name: "bear", action: strategies.Sell})

	res, err := r.Run(barsOf(100, 100, 100), "BTCUSDT", 0.1)
	require.NoError(t, err)

	// Bar 1: qty = 10000*0.1/100 = 10, cost 1001. Bar 2: qty = 8999*0.1/100.
	require.Len(t, res.Trades, 2)
	assert.InDelta(t, 10.0, res.Trades[0].Quantity, 1e-9)
	assert.InDelta(t, 8.999, res.Trades[1].Quantity, 1e-9)

	pos := res.FinalPositions["BTCUSDT"]
	assert.InDelta(t, 18.999, pos.Quantity, 1e-9)
}

func TestMajoritySellLiquidatesWholePosition(t *testing.T) {
	e := engine.New(10000, 0.001)
	r := NewRunner(e)

	buyThenSell := &flipStrategy{flipAt: 2}
	r.AddStrategy(buyThenSell)

	res, err := r.Run(barsOf(100, 100, 110, 110), "BTCUSDT", 0.5)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	buy, sell := res.Trades[0], res.Trades[1]
	assert.Equal(t, engine.Buy, buy.Side)
	assert.Equal(t, engine.Sell, sell.Side)
	assert.Equal(t, buy.Quantity, sell.Quantity, "sell liquidates the full position")

	pos := res.FinalPositions["BTCUSDT"]
	assert.Equal(t, 0.0, pos.Quantity)
	assert.Greater(t, pos.RealizedPnL, 0.0)
}

func TestSellSignalWithoutPositionDoesNothing(t *testing.T) {
	e := engine.New(10000, 0.001)
	r := NewRunner(e)
	r.AddStrategy(stubStrategy{name: "bear", action: strategies.Sell})

	res, err := r.Run(barsOf(100, 100, 100), "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 10000.0, e.Cash())
}

func TestResultCarriesStrategyNames(t *testing.T) {
	r := NewRunner(engine.New(10000, 0.001))
	r.AddStrategy(strategies.NewMACross(2, 3))
	r.AddStrategy(strategies.NewRSIReversal(3, 30, 70))

	res, err := r.Run(barsOf(100, 100, 100, 100), "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Moving Average Crossover", "RSI Strategy"}, res.StrategyNames)
}

func TestRunResetsEngineBetweenRuns(t *testing.T) {
	e := engine.New(10000, 0.001)
	r := NewRunner(e)
	r.AddStrategy(stubStrategy{name: "bull", action: strategies.Buy})

	bars := barsOf(100, 100, 100)
	first, err := r.Run(bars, "BTCUSDT", 0.1)
	require.NoError(t, err)
	second, err := r.Run(bars, "BTCUSDT", 0.1)
	require.NoError(t, err)

	assert.Equal(t, len(first.Trades), len(second.Trades))
	assert.InDelta(t, first.Metrics.FinalEquity, second.Metrics.FinalEquity, 1e-9)
	assert.Len(t, second.EquityCurve, len(bars)-1)
}

// flipStrategy buys before flipAt and sells from flipAt on.
type flipStrategy struct {
	flipAt int
}

func (s *flipStrategy) Name() string { return "flip" }
func (s *flipStrategy) Warmup() int  { return 0 }
func (s *flipStrategy) GenerateSignals(bars []market.Bar, i int) strategies.Signal {
	if i < s.flipAt {
		return strategies.Signal{Action: strategies.Buy, Strength: 1}
	}
	return strategies.Signal{Action: strategies.Sell, Strength: 1}
}
