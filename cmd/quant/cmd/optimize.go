package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quant/backtest"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/strategies"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search strategy parameters for the best total return",
	Long: `Optimize backtests every combination in the Cartesian product of the
given parameter ranges and reports the one with the highest total return.

Ranges are given as name=v1,v2,... and may repeat. Parameter names are the
strategy's own: fast_period/slow_period (ma-cross), rsi_period/oversold/
overbought (rsi), period/std_dev (bollinger).

Example:
  quant optimize --bars data/btcusdt.csv --strategy ma-cross \
    --range fast_period=5,10,15 --range slow_period=20,30,50`,
	RunE: runOptimize,
}

var (
	optBarsPath   string
	optSymbol     string
	optStrategy   string
	optRanges     []string
	optCapital    float64
	optCommission float64
	optSize       float64
	optProgress   bool
	optOutPath    string
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&optBarsPath, "bars", "b", "", "path to bar CSV (required)")
	optimizeCmd.Flags().StringVar(&optSymbol, "symbol", "BTCUSDT", "instrument symbol")
	optimizeCmd.Flags().StringVarP(&optStrategy, "strategy", "s", "", "strategy name to optimize (required)")
	optimizeCmd.Flags().StringArrayVarP(&optRanges, "range", "r", nil, "parameter range name=v1,v2,... (repeatable, required)")
	optimizeCmd.Flags().Float64Var(&optCapital, "capital", 10_000, "starting capital per grid point")
	optimizeCmd.Flags().Float64Var(&optCommission, "commission", 0.001, "commission rate per fill")
	optimizeCmd.Flags().Float64Var(&optSize, "size", 0.1, "fraction of cash committed per buy order")
	optimizeCmd.Flags().BoolVar(&optProgress, "progress", true, "render a progress bar over the grid")
	optimizeCmd.Flags().StringVarP(&optOutPath, "out", "o", "", "write the winning result as JSON to this path")

	optimizeCmd.MarkFlagRequired("bars")
	optimizeCmd.MarkFlagRequired("strategy")
	optimizeCmd.MarkFlagRequired("range")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ranges, err := parseRanges(optRanges)
	if err != nil {
		return err
	}

	bars, err := market.LoadCSV(optBarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	build := func(params map[string]float64) (strategies.Strategy, error) {
		return strategies.ByName(optStrategy, params)
	}

	fmt.Printf("Optimizing %s on %s (%d bars)\n\n", optStrategy, optSymbol, len(bars))

	res, err := backtest.Optimize(bars, optSymbol, ranges, build, backtest.OptimizeOptions{
		InitialCapital: optCapital,
		CommissionRate: optCommission,
		PositionSize:   optSize,
		Progress:       optProgress,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n\nBest parameters:\n")
	for _, name := range sortedKeys(res.BestParams) {
		fmt.Printf("  %s = %g\n", name, res.BestParams[name])
	}
	fmt.Printf("Best total return: %.2f%%\n", res.BestReturn)
	printMetrics(res.BestResult.Metrics)

	if optOutPath != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(optOutPath, data, 0644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Printf("Wrote result to %s\n", optOutPath)
	}

	return nil
}

// parseRanges turns repeated name=v1,v2,... flags into parameter ranges.
func parseRanges(specs []string) (map[string][]float64, error) {
	ranges := make(map[string][]float64, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || list == "" {
			return nil, fmt.Errorf("bad range %q (want name=v1,v2,...)", spec)
		}

		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("bad range value %q in %q: %w", s, spec, err)
			}
			values = append(values, v)
		}
		ranges[name] = values
	}
	return ranges, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
