// Package backtest drives bar-by-bar strategy replay against the accounting
// engine and searches strategy parameter grids.
package backtest

import (
	"fmt"

	"github.com/rustyeddy/quant/engine"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/metrics"
	"github.com/rustyeddy/quant/strategies"
)

// Runner replays a bar series through one or more strategies and issues at
// most one market order per bar, decided by a majority vote of the non-hold
// signals.
type Runner struct {
	Engine     *engine.Engine
	Strategies []strategies.Strategy
}

func NewRunner(e *engine.Engine) *Runner {
	return &Runner{Engine: e}
}

// AddStrategy attaches a strategy to the ensemble.
func (r *Runner) AddStrategy(s strategies.Strategy) {
	r.Strategies = append(r.Strategies, s)
}

// Result is the full output of one backtest run, shaped for serialization to
// reporting and export collaborators.
type Result struct {
	StrategyNames  []string                   `json:"strategy_names"`
	Metrics        metrics.Metrics            `json:"metrics"`
	EquityCurve    []engine.EquityPoint       `json:"equity_curve"`
	Trades         []engine.Trade             `json:"trades"`
	FinalPositions map[string]engine.Position `json:"final_positions"`
}

// Run resets the engine and replays bars from index 1 (index 0 has no prior
// bar for strategies to compare against). Each bar: poll every strategy,
// count non-hold votes, and either buy a positionSize fraction of cash, sell
// the whole held quantity, or do nothing on a tie. The equity curve gains
// one point per processed bar regardless of order activity.
//
// Bars must be ordered by non-decreasing timestamp; the runner does not sort.
func (r *Runner) Run(bars []market.Bar, symbol string, positionSize float64) (*Result, error) {
	if r.Engine == nil {
		return nil, fmt.Errorf("backtest: engine is required")
	}
	if len(r.Strategies) == 0 {
		return nil, fmt.Errorf("backtest: at least one strategy is required")
	}

	r.Engine.Reset()

	for i := 1; i < len(bars); i++ {
		r.Engine.SetTime(bars[i].Time)
		price := bars[i].Close
		prices := map[string]float64{symbol: price}

		buys, sells := 0, 0
		for _, s := range r.Strategies {
			switch s.GenerateSignals(bars, i).Action {
			case strategies.Buy:
				buys++
			case strategies.Sell:
				sells++
			}
		}

		switch {
		case buys > sells:
			qty := r.Engine.Cash() * positionSize / price
			o := r.Engine.CreateOrder(symbol, engine.Buy, engine.Market, qty, 0, 0)
			r.Engine.ExecuteOrder(o, price)

		case sells > buys:
			if pos, ok := r.Engine.Position(symbol); ok && pos.Quantity > 0 {
				o := r.Engine.CreateOrder(symbol, engine.Sell, engine.Market, pos.Quantity, 0, 0)
				r.Engine.ExecuteOrder(o, price)
			}
		}

		r.Engine.UpdateEquityCurve(prices)
	}

	names := make([]string, len(r.Strategies))
	for i, s := range r.Strategies {
		names[i] = s.Name()
	}

	return &Result{
		StrategyNames:  names,
		Metrics:        metrics.Calculate(r.Engine.InitialCapital, r.Engine.EquityCurve(), r.Engine.Trades()),
		EquityCurve:    r.Engine.EquityCurve(),
		Trades:         r.Engine.Trades(),
		FinalPositions: r.Engine.Positions(),
	}, nil
}
