// Package metrics derives return, risk and quality statistics from a
// completed run's equity curve and trade ledger.
package metrics

import (
	"math"

	"github.com/rustyeddy/quant/engine"
)

const (
	// Fixed annual risk-free rate used in the Sharpe ratio.
	riskFreeRate = 0.02
	// Annualization assumes one return sample per trading-day-equivalent bar.
	tradingDays = 252
)

// Metrics is the performance report of one backtest run. Return, drawdown,
// win-rate and volatility fields are percentages; SharpeRatio and
// ProfitFactor are unitless. ProfitFactor is +Inf when the run had winning
// trades and no losing ones.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	FinalEquity      float64 `json:"final_equity"`
	TotalCommission  float64 `json:"total_commission"`
}

// Calculate computes the full-run metrics. A curve with fewer than two
// points yields a zero-valued (neutral) result: there is nothing to compute
// variance over.
//
// Win/loss counts are derived from sell-side ledger entries: buys carry zero
// pnl by convention and are not counted, and a sell with exactly zero gross
// pnl counts as a loss.
func Calculate(initialCapital float64, curve []engine.EquityPoint, trades []engine.Trade) Metrics {
	if len(curve) < 2 {
		return Metrics{}
	}

	m := Metrics{FinalEquity: curve[len(curve)-1].Equity}

	m.TotalReturn = (m.FinalEquity - initialCapital) / initialCapital * 100

	days := int(curve[len(curve)-1].Time.Sub(curve[0].Time).Hours() / 24)
	annualized := 0.0
	if days > 0 {
		annualized = math.Pow(1+m.TotalReturn/100, 365/float64(days)) - 1
	}
	m.AnnualizedReturn = annualized * 100

	returns := periodReturns(curve)
	vol := 0.0
	if len(returns) >= 2 {
		vol = sampleStd(returns) * math.Sqrt(tradingDays)
	}
	m.Volatility = vol * 100

	if vol > 0 {
		m.SharpeRatio = (annualized - riskFreeRate) / vol
	}

	m.MaxDrawdown = maxDrawdown(curve)

	var grossWin, grossLoss float64
	for _, tr := range trades {
		m.TotalCommission += tr.Commission

		if tr.PnL > 0 {
			grossWin += tr.PnL
		} else if tr.PnL < 0 {
			grossLoss -= tr.PnL
		}

		if tr.Side != engine.Sell {
			continue
		}
		m.TotalTrades++
		if tr.PnL > 0 {
			m.WinningTrades++
		} else {
			m.LosingTrades++
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		m.ProfitFactor = math.Inf(1)
	}

	return m
}

// periodReturns is the simple percentage change between consecutive equity
// points.
func periodReturns(curve []engine.EquityPoint) []float64 {
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}

func sampleStd(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// maxDrawdown is the most negative percentage decline from the running
// equity peak.
func maxDrawdown(curve []engine.EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		dd := (pt.Equity - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
