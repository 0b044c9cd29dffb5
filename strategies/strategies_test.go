package strategies

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quant/market"
)

func barsOf(closes ...float64) []market.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{Time: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestMACrossWarmup(t *testing.T) {
	s := NewMACross(2, 3)
	bars := barsOf(10, 10, 10, 10, 14)

	for i := 0; i < s.Warmup(); i++ {
		sig := s.GenerateSignals(bars, i)
		assert.Equal(t, Hold, sig.Action, "index %d is inside warm-up", i)
		assert.Zero(t, sig.Strength)
	}
}

func TestMACrossBuyOnBullishCross(t *testing.T) {
	s := NewMACross(2, 3)
	bars := barsOf(10, 10, 10, 10, 14)

	sig := s.GenerateSignals(bars, 4)
	assert.Equal(t, Buy, sig.Action)
	assert.Equal(t, 1.0, sig.Strength)

	// No cross at the previous bar.
	assert.Equal(t, Hold, s.GenerateSignals(bars, 3).Action)
}

func TestMACrossSellOnBearishCross(t *testing.T) {
	s := NewMACross(2, 3)
	bars := barsOf(10, 10, 10, 10, 14, 14, 14, 10)

	sig := s.GenerateSignals(bars, 7)
	assert.Equal(t, Sell, sig.Action)
	assert.Equal(t, 1.0, sig.Strength)
}

func TestMACrossFlatMarketHolds(t *testing.T) {
	s := NewMACross(2, 3)
	bars := barsOf(10, 10, 10, 10, 10, 10, 10, 10)

	for i := range bars {
		assert.Equal(t, Hold, s.GenerateSignals(bars, i).Action)
	}
}

func TestRSIReversalBuyWhenOversold(t *testing.T) {
	s := NewRSIReversal(3, 30, 70)
	bars := barsOf(100, 95, 90, 85)

	sig := s.GenerateSignals(bars, 3)
	assert.Equal(t, Buy, sig.Action)
	// RSI 0 on a straight decline: strength (30-0)/30.
	assert.InDelta(t, 1.0, sig.Strength, 1e-9)
}

func TestRSIReversalSellWhenOverbought(t *testing.T) {
	s := NewRSIReversal(3, 30, 70)
	bars := barsOf(100, 105, 110, 115)

	sig := s.GenerateSignals(bars, 3)
	assert.Equal(t, Sell, sig.Action)
	// RSI 100 on a straight rise: strength (100-70)/(100-70).
	assert.InDelta(t, 1.0, sig.Strength, 1e-9)
}

func TestRSIReversalFlatMarketHolds(t *testing.T) {
	s := NewRSIReversal(3, 30, 70)
	bars := barsOf(100, 100, 100, 100, 100)

	for i := range bars {
		assert.Equal(t, Hold, s.GenerateSignals(bars, i).Action)
	}
}

func TestBollingerBuyBelowLowerBand(t *testing.T) {
	s := NewBollingerReversion(3, 1)
	bars := barsOf(10, 10, 10, 4)

	sig := s.GenerateSignals(bars, 3)
	require.Equal(t, Buy, sig.Action)

	lower := 8.0 - math.Sqrt(12)
	assert.InDelta(t, (lower-4)/lower, sig.Strength, 1e-9)
}

func TestBollingerSellAboveUpperBand(t *testing.T) {
	s := NewBollingerReversion(3, 1)
	bars := barsOf(10, 10, 10, 16)

	sig := s.GenerateSignals(bars, 3)
	require.Equal(t, Sell, sig.Action)

	upper := 12.0 + math.Sqrt(12)
	assert.InDelta(t, (16-upper)/upper, sig.Strength, 1e-9)
}

func TestBollingerFlatMarketHolds(t *testing.T) {
	s := NewBollingerReversion(3, 2)
	bars := barsOf(10, 10, 10, 10, 10, 10)

	for i := range bars {
		assert.Equal(t, Hold, s.GenerateSignals(bars, i).Action)
	}
}

func TestByName(t *testing.T) {
	s, err := ByName("ma-cross", map[string]float64{"fast_period": 5, "slow_period": 15})
	require.NoError(t, err)
	ma, ok := s.(*MACross)
	require.True(t, ok)
	assert.Equal(t, 5, ma.FastPeriod)
	assert.Equal(t, 15, ma.SlowPeriod)

	s, err = ByName("rsi", nil)
	require.NoError(t, err)
	rsi := s.(*RSIReversal)
	assert.Equal(t, 14, rsi.Period)
	assert.Equal(t, 30.0, rsi.Oversold)
	assert.Equal(t, 70.0, rsi.Overbought)

	s, err = ByName(" Bollinger ", map[string]float64{"period": 10})
	require.NoError(t, err)
	bb := s.(*BollingerReversion)
	assert.Equal(t, 10, bb.Period)
	assert.Equal(t, 2.0, bb.StdDev)

	_, err = ByName("donchian", nil)
	assert.Error(t, err)
}
