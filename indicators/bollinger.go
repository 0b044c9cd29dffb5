package indicators

// Bollinger calculates the Bollinger bands at the end of the series: a
// simple moving average (middle) plus and minus mult sample standard
// deviations. A constant window yields a zero-width band.
func Bollinger(values []float64, period int, mult float64) (upper, middle, lower float64, err error) {
	middle, err = SMA(values, period)
	if err != nil {
		return 0, 0, 0, err
	}

	sd, err := StdDev(values, period)
	if err != nil {
		return 0, 0, 0, err
	}

	upper = middle + sd*mult
	lower = middle - sd*mult
	return upper, middle, lower, nil
}
