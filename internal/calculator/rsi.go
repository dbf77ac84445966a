package calculator

import "errors"

// RSI computes the relative strength index with EMA-smoothed gains and losses.
//
// The delta of the first point is taken as zero, so every position is defined.
// RS = ema(up)/(ema(down)+1e-9) and RSI = 100 - 100/(1+RS). A series with no
// down moves reads close to 100; a flat series reads 0.
func RSI(prices []float64, period int) (Series, error) {
	if period <= 0 {
		return Series{}, errors.New("period must be positive")
	}
	up := make([]float64, len(prices))
	down := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			up[i] = delta
		} else if delta < 0 {
			down[i] = -delta
		}
	}
	avgUp, err := EMA(up, period)
	if err != nil {
		return Series{}, err
	}
	avgDown, err := EMA(down, period)
	if err != nil {
		return Series{}, err
	}

	out := newSeries(len(prices), 0)
	for i := range prices {
		rs := avgUp.values[i] / (avgDown.values[i] + Epsilon)
		out.values[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out, nil
}
