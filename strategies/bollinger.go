package strategies

import (
	"github.com/rustyeddy/quant/indicators"
	"github.com/rustyeddy/quant/market"
)

// BollingerReversion trades mean reversion against the Bollinger bands:
// - Buy when price closes at or below the lower band
// - Sell when price closes at or above the upper band
// Strength is the penetration depth normalized by the band's own value. A
// zero-width band (flat window) never signals.
type BollingerReversion struct {
	Period int     `json:"period" yaml:"period"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

func NewBollingerReversion(period int, stdDev float64) *BollingerReversion {
	return &BollingerReversion{Period: period, StdDev: stdDev}
}

func (s *BollingerReversion) Name() string { return "Bollinger Bands Strategy" }

func (s *BollingerReversion) Warmup() int { return s.Period }

func (s *BollingerReversion) GenerateSignals(bars []market.Bar, i int) Signal {
	if i < s.Period {
		return hold
	}

	upper, _, lower, err := indicators.Bollinger(market.Closes(bars[:i+1]), s.Period, s.StdDev)
	if err != nil || upper <= lower {
		return hold
	}

	price := bars[i].Close
	switch {
	case price <= lower:
		return Signal{Action: Buy, Strength: (lower - price) / lower}
	case price >= upper:
		return Signal{Action: Sell, Strength: (price - upper) / upper}
	}
	return hold
}
