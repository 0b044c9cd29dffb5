package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "A strategy backtesting and parameter research tool",
	Long: `Quant is a backtesting engine and strategy research tool written in Go.

It provides tools for:
  - Backtesting strategy ensembles against historical bar data
  - Majority-vote signal aggregation across multiple strategies
  - Capital-aware order accounting with commissions
  - Performance metrics (returns, Sharpe, drawdown, profit factor)
  - Exhaustive grid search over strategy parameters
  - Journaling trades and equity curves to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
