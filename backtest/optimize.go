package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/rustyeddy/quant/engine"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategies"
)

// Constructor builds a fresh strategy instance from one grid point.
type Constructor func(params map[string]float64) (strategies.Strategy, error)

// OptimizeOptions configures a grid search. Zero values fall back to the
// conventional defaults.
type OptimizeOptions struct {
	InitialCapital float64 // default 10000
	CommissionRate float64 // default 0.001
	PositionSize   float64 // default 0.1
	Progress       bool    // render a progress bar over the grid
}

// OptimizeResult is the winning grid point of a parameter search.
type OptimizeResult struct {
	BestParams map[string]float64 `json:"best_params"`
	BestReturn float64            `json:"best_return"`
	BestResult *Result            `json:"best_result"`
}

// Optimize exhaustively backtests every combination in the Cartesian product
// of ranges and returns the one with the strictly highest total return (the
// first such combination on ties). Every combination runs against its own
// fresh Engine, so grid points never share state.
//
// The search fits and reports on the same series; no held-out split is made.
func Optimize(bars []market.Bar, symbol string, ranges map[string][]float64, build Constructor, opts OptimizeOptions) (*OptimizeResult, error) {
	if opts.InitialCapital == 0 {
		opts.InitialCapital = 10000
	}
	if opts.CommissionRate == 0 {
		opts.CommissionRate = 0.001
	}
	if opts.PositionSize == 0 {
		opts.PositionSize = 0.1
	}

	combos := cartesian(ranges)
	if len(combos) == 0 {
		return nil, fmt.Errorf("optimize: no parameter ranges supplied")
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = newGridProgressBar(len(combos))
	}

	best := &OptimizeResult{BestReturn: math.Inf(-1)}

	for _, params := range combos {
		strat, err := build(params)
		if err != nil {
			return nil, fmt.Errorf("optimize: build strategy: %w", err)
		}

		r := NewRunner(engine.New(opts.InitialCapital, opts.CommissionRate))
		r.AddStrategy(strat)

		res, err := r.Run(bars, symbol, opts.PositionSize)
		if err != nil {
			return nil, err
		}

		if res.Metrics.TotalReturn > best.BestReturn {
			best.BestParams = params
			best.BestReturn = res.Metrics.TotalReturn
			best.BestResult = res
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return best, nil
}

// cartesian expands ranges into every parameter combination. Names are
// iterated in sorted order so the grid order is deterministic.
func cartesian(ranges map[string][]float64) []map[string]float64 {
	names := make([]string, 0, len(ranges))
	for name, values := range ranges {
		if len(values) == 0 {
			return nil
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil
	}

	combos := []map[string]float64{{}}
	for _, name := range names {
		next := make([]map[string]float64, 0, len(combos)*len(ranges[name]))
		for _, combo := range combos {
			for _, v := range ranges[name] {
				merged := make(map[string]float64, len(combo)+1)
				for k, cv := range combo {
					merged[k] = cv
				}
				merged[name] = v
				next = append(next, merged)
			}
		}
		combos = next
	}
	return combos
}

func newGridProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Searching parameter grid..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
