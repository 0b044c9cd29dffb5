package indicators

import "fmt"

// RSI calculates the relative strength index from the rolling mean of gains
// and losses over the last period one-bar deltas.
//
// When the window shows no price movement at all the ratio is 0/0 and the
// result is NaN; threshold comparisons against NaN are always false, which
// makes a flat market read as no signal.
func RSI(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period+1, len(values))
	}

	var gains, losses float64
	for i := len(values) - period; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
