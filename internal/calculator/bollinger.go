package calculator

// BollingerResult holds the upper, middle and lower bands.
type BollingerResult struct {
	Upper Series
	Mid   Series
	Lower Series
}

// Bollinger computes mid = SMA(window) and upper/lower = mid ± k·std, where std is
// the rolling sample standard deviation. The first window-1 positions are undefined.
func Bollinger(prices []float64, window int, k float64) (BollingerResult, error) {
	mid, err := SMA(prices, window)
	if err != nil {
		return BollingerResult{}, err
	}
	std, err := RollingStd(prices, window)
	if err != nil {
		return BollingerResult{}, err
	}
	warmup := max(mid.warmup, std.warmup)
	upper := newSeries(len(prices), warmup)
	lower := newSeries(len(prices), warmup)
	for i := warmup; i < len(prices); i++ {
		upper.values[i] = mid.values[i] + k*std.values[i]
		lower.values[i] = mid.values[i] - k*std.values[i]
	}
	return BollingerResult{Upper: upper, Mid: mid, Lower: lower}, nil
}

// Position returns where price sits between lower and upper, guarded against a
// zero-width band: (price-lower)/(upper-lower+1e-9).
func Position(price, upper, lower float64) float64 {
	return (price - lower) / (upper - lower + Epsilon)
}
