package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quant/backtest"
	"github.com/rustyeddy/quant/config"
	"github.com/rustyeddy/quant/engine"
	"github.com/rustyeddy/quant/internal/id"
	"github.com/rustyeddy/quant/journal"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/metrics"
	"github.com/rustyeddy/quant/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy ensemble against historical bar data",
	Long: `Backtest replays a CSV of OHLCV bars through one or more strategies,
aggregates their signals by majority vote, and reports performance metrics.

Supported strategies:
  - ma-cross: moving average crossover (--fast, --slow)
  - rsi: RSI mean reversion (--rsi-period, --oversold, --overbought)
  - bollinger: Bollinger band reversion (--bb-period, --bb-std)

Example:
  quant backtest --bars data/btcusdt.csv --symbol BTCUSDT --strategy ma-cross --fast 10 --slow 20`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btBarsPath   string
	btSymbol     string
	btCapital    float64
	btCommission float64
	btSize       float64
	btStrategies []string
	btOutPath    string

	btFast       float64
	btSlow       float64
	btRSIPeriod  float64
	btOversold   float64
	btOverbought float64
	btBBPeriod   float64
	btBBStd      float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (time,open,high,low,close,volume)")
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "BTCUSDT", "instrument symbol")
	backtestCmd.Flags().Float64Var(&btCapital, "capital", 10_000, "starting capital")
	backtestCmd.Flags().Float64Var(&btCommission, "commission", 0.001, "commission rate per fill (0.001 = 0.1%)")
	backtestCmd.Flags().Float64Var(&btSize, "size", 0.1, "fraction of cash committed per buy order")
	backtestCmd.Flags().StringArrayVarP(&btStrategies, "strategy", "s", nil, "strategy name, repeatable (ma-cross, rsi, bollinger)")
	backtestCmd.Flags().StringVarP(&btOutPath, "out", "o", "", "write the full result as JSON to this path")

	backtestCmd.Flags().Float64Var(&btFast, "fast", 10, "ma-cross: fast SMA period")
	backtestCmd.Flags().Float64Var(&btSlow, "slow", 20, "ma-cross: slow SMA period")
	backtestCmd.Flags().Float64Var(&btRSIPeriod, "rsi-period", 14, "rsi: lookback period")
	backtestCmd.Flags().Float64Var(&btOversold, "oversold", 30, "rsi: oversold threshold")
	backtestCmd.Flags().Float64Var(&btOverbought, "overbought", 70, "rsi: overbought threshold")
	backtestCmd.Flags().Float64Var(&btBBPeriod, "bb-period", 20, "bollinger: lookback period")
	backtestCmd.Flags().Float64Var(&btBBStd, "bb-std", 2, "bollinger: band width in standard deviations")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := backtestConfig(cmd)
	if err != nil {
		return err
	}

	bars, err := market.LoadCSV(cfg.Backtest.BarsFile)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars in %s", cfg.Backtest.BarsFile)
	}

	eng := engine.New(cfg.Account.InitialCapital, cfg.Account.CommissionRate)
	runner := backtest.NewRunner(eng)
	for _, sc := range cfg.Strategies {
		strat, err := strategies.ByName(sc.Name, sc.Params)
		if err != nil {
			return err
		}
		runner.AddStrategy(strat)
	}

	fmt.Printf("Running backtest on %s (%d bars)\n", cfg.Backtest.Symbol, len(bars))
	fmt.Printf("  Strategies: %s\n", strings.Join(names(runner.Strategies), ", "))
	fmt.Printf("  Capital: $%.2f  Commission: %.4f  Size: %.2f\n\n",
		cfg.Account.InitialCapital, cfg.Account.CommissionRate, cfg.Backtest.PositionSize)

	res, err := runner.Run(bars, cfg.Backtest.Symbol, cfg.Backtest.PositionSize)
	if err != nil {
		return err
	}

	printMetrics(res.Metrics)

	runID := id.New()
	if err := persistRun(cfg, runID, bars, res); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if cfg.Journal.Type != "" && cfg.Journal.Type != "none" {
		fmt.Printf("\nJournaled run %s\n", runID)
	}

	if btOutPath != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(btOutPath, data, 0644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Printf("Wrote result to %s\n", btOutPath)
	}

	return nil
}

// backtestConfig resolves the effective configuration: the config file when
// given, with any explicitly-set flags layered on top; flags alone otherwise.
func backtestConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config

	if btConfigPath != "" {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.Backtest.BarsFile = ""
		cfg.Strategies = nil
	}

	if cmd.Flags().Changed("bars") {
		cfg.Backtest.BarsFile = btBarsPath
	}
	if cmd.Flags().Changed("symbol") || cfg.Backtest.Symbol == "" {
		cfg.Backtest.Symbol = btSymbol
	}
	if cmd.Flags().Changed("capital") {
		cfg.Account.InitialCapital = btCapital
	}
	if cmd.Flags().Changed("commission") {
		cfg.Account.CommissionRate = btCommission
	}
	if cmd.Flags().Changed("size") {
		cfg.Backtest.PositionSize = btSize
	}
	if len(btStrategies) > 0 {
		cfg.Strategies = nil
		for _, name := range btStrategies {
			cfg.Strategies = append(cfg.Strategies, config.StrategyConfig{
				Name:   name,
				Params: flagParams(name),
			})
		}
	}

	if cfg.Backtest.BarsFile == "" {
		return nil, fmt.Errorf("--bars or a config file with backtest.bars_file is required")
	}
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("--strategy or a config file with strategies is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagParams maps the per-strategy parameter flags onto the parameter names
// the strategy constructors expect.
func flagParams(name string) map[string]float64 {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ma-cross", "macross":
		return map[string]float64{"fast_period": btFast, "slow_period": btSlow}
	case "rsi":
		return map[string]float64{"rsi_period": btRSIPeriod, "oversold": btOversold, "overbought": btOverbought}
	case "bollinger", "bbands":
		return map[string]float64{"period": btBBPeriod, "std_dev": btBBStd}
	default:
		return nil
	}
}

func names(strats []strategies.Strategy) []string {
	out := make([]string, len(strats))
	for i, s := range strats {
		out[i] = s.Name()
	}
	return out
}

func printMetrics(m metrics.Metrics) {
	fmt.Println("Backtest Complete!")
	fmt.Printf("  Final Equity: $%.2f\n", m.FinalEquity)
	fmt.Printf("  Total Return: %.2f%%\n", m.TotalReturn)
	fmt.Printf("  Annualized Return: %.2f%%\n", m.AnnualizedReturn)
	fmt.Printf("  Volatility: %.2f%%\n", m.Volatility)
	fmt.Printf("  Sharpe Ratio: %.2f\n", m.SharpeRatio)
	fmt.Printf("  Max Drawdown: %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("  Trades: %d (%d wins, %d losses)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Printf("  Win Rate: %.2f%%\n", m.WinRate)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Printf("  Profit Factor: inf\n")
	} else {
		fmt.Printf("  Profit Factor: %.2f\n", m.ProfitFactor)
	}
	fmt.Printf("  Commission Paid: $%.2f\n", m.TotalCommission)
}

// persistRun writes the trade ledger and equity curve to the configured
// journal backend. The SQLite backend additionally stores a run summary row.
func persistRun(cfg *config.Config, runID string, bars []market.Bar, res *backtest.Result) error {
	switch cfg.Journal.Type {
	case "", "none":
		return nil

	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return err
		}
		defer j.Close()
		return recordRun(j, runID, res)

	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return err
		}
		defer j.Close()

		if err := recordRun(j, runID, res); err != nil {
			return err
		}
		return j.RecordRun(journal.BacktestRun{
			RunID:           runID,
			Created:         time.Now().UTC(),
			Symbol:          cfg.Backtest.Symbol,
			Strategies:      strings.Join(res.StrategyNames, ","),
			Start:           bars[0].Time,
			End:             bars[len(bars)-1].Time,
			InitialCapital:  cfg.Account.InitialCapital,
			FinalEquity:     res.Metrics.FinalEquity,
			TotalReturn:     res.Metrics.TotalReturn,
			SharpeRatio:     res.Metrics.SharpeRatio,
			MaxDrawdown:     res.Metrics.MaxDrawdown,
			WinRate:         res.Metrics.WinRate,
			ProfitFactor:    res.Metrics.ProfitFactor,
			Trades:          res.Metrics.TotalTrades,
			Wins:            res.Metrics.WinningTrades,
			Losses:          res.Metrics.LosingTrades,
			TotalCommission: res.Metrics.TotalCommission,
		})

	default:
		return fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func recordRun(j journal.Journal, runID string, res *backtest.Result) error {
	for _, tr := range res.Trades {
		rec := journal.TradeRecord{
			TradeID:    tr.ID,
			RunID:      runID,
			Symbol:     tr.Symbol,
			Side:       string(tr.Side),
			Quantity:   tr.Quantity,
			Price:      tr.Price,
			Time:       tr.Time,
			Commission: tr.Commission,
			PnL:        tr.PnL,
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}
	for _, pt := range res.EquityCurve {
		snap := journal.EquitySnapshot{
			RunID:         runID,
			Time:          pt.Time,
			Equity:        pt.Equity,
			Cash:          pt.Cash,
			UnrealizedPnL: pt.UnrealizedPnL,
			RealizedPnL:   pt.RealizedPnL,
		}
		if err := j.RecordEquity(snap); err != nil {
			return err
		}
	}
	return nil
}
