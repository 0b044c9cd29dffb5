package strategies

import (
	"github.com/rustyeddy/quant/indicators"
	"github.com/rustyeddy/quant/market"
)

// RSIReversal buys oversold and sells overbought conditions. Strength is
// proportional to how far the RSI sits past the threshold: below oversold it
// is normalized by the threshold itself, above overbought by the remaining
// range to 100.
type RSIReversal struct {
	Period     int     `json:"rsi_period" yaml:"rsi_period"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
	Overbought float64 `json:"overbought" yaml:"overbought"`
}

func NewRSIReversal(period int, oversold, overbought float64) *RSIReversal {
	return &RSIReversal{Period: period, Oversold: oversold, Overbought: overbought}
}

func (s *RSIReversal) Name() string { return "RSI Strategy" }

func (s *RSIReversal) Warmup() int { return s.Period }

func (s *RSIReversal) GenerateSignals(bars []market.Bar, i int) Signal {
	if i < s.Period {
		return hold
	}

	rsi, err := indicators.RSI(market.Closes(bars[:i+1]), s.Period)
	if err != nil {
		return hold
	}

	// NaN (a windowless-movement RSI) compares false on both branches.
	switch {
	case rsi < s.Oversold:
		return Signal{Action: Buy, Strength: (s.Oversold - rsi) / s.Oversold}
	case rsi > s.Overbought:
		return Signal{Action: Sell, Strength: (rsi - s.Overbought) / (100 - s.Overbought)}
	}
	return hold
}
