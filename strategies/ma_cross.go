package strategies

import (
	"github.com/rustyeddy/quant/indicators"
	"github.com/rustyeddy/quant/market"
)

// MACross signals on fast/slow simple-moving-average crossovers:
// - Buy when the fast mean crosses from at-or-below to above the slow mean
// - Sell on the inverse crossover
// Signal strength is fixed at 1.0.
type MACross struct {
	FastPeriod int `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int `json:"slow_period" yaml:"slow_period"`
}

func NewMACross(fast, slow int) *MACross {
	return &MACross{FastPeriod: fast, SlowPeriod: slow}
}

func (s *MACross) Name() string { return "Moving Average Crossover" }

func (s *MACross) Warmup() int { return s.SlowPeriod }

func (s *MACross) GenerateSignals(bars []market.Bar, i int) Signal {
	if i < s.SlowPeriod {
		return hold
	}

	closes := market.Closes(bars)

	curFast, err := indicators.SMA(closes[:i+1], s.FastPeriod)
	if err != nil {
		return hold
	}
	curSlow, err := indicators.SMA(closes[:i+1], s.SlowPeriod)
	if err != nil {
		return hold
	}
	prevFast, err := indicators.SMA(closes[:i], s.FastPeriod)
	if err != nil {
		return hold
	}
	prevSlow, err := indicators.SMA(closes[:i], s.SlowPeriod)
	if err != nil {
		return hold
	}

	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		return Signal{Action: Buy, Strength: 1.0}
	case prevFast >= prevSlow && curFast < curSlow:
		return Signal{Action: Sell, Strength: 1.0}
	}
	return hold
}
