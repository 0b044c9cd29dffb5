// Package strategies contains the signal-generation contracts and the
// built-in strategy implementations.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/quant/market"
)

// Action is the direction of a signal.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

// Signal is one strategy's opinion at a bar. Strength is in [0, 1] and is 0
// on hold.
type Signal struct {
	Action   Action  `json:"signal"`
	Strength float64 `json:"strength"`
}

// hold is the neutral signal every strategy returns during warm-up.
var hold = Signal{Action: Hold}

// Strategy is the minimal interface a backtest strategy must implement. It
// is polled once per bar by the runner.
type Strategy interface {
	// Name returns a stable human-readable identifier.
	Name() string

	// Warmup returns the number of bars needed before the strategy can
	// produce a non-hold signal.
	Warmup() int

	// GenerateSignals evaluates the strategy at bar index i of the series.
	// For i below Warmup it returns hold with strength 0.
	GenerateSignals(bars []market.Bar, i int) Signal
}

// ByName constructs a strategy from its name and a parameter map. Missing
// parameters fall back to the conventional defaults.
func ByName(name string, params map[string]float64) (Strategy, error) {
	get := func(key string, def float64) float64 {
		if v, ok := params[key]; ok {
			return v
		}
		return def
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ma-cross", "macross":
		return NewMACross(
			int(get("fast_period", 10)),
			int(get("slow_period", 20)),
		), nil

	case "rsi":
		return NewRSIReversal(
			int(get("rsi_period", 14)),
			get("oversold", 30),
			get("overbought", 70),
		), nil

	case "bollinger", "bbands":
		return NewBollingerReversion(
			int(get("period", 20)),
			get("std_dev", 2),
		), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: ma-cross, rsi, bollinger)", name)
	}
}
