package calculator

import (
	"errors"
	"math"

	"StockPulse/internal/model"
)

var errBadPeriod = errors.New("period must be positive")

// EMA computes the exponential moving average with α = 2/(span+1), seeded with
// the first input: ema[0] = x[0], ema[i] = α·x[i] + (1-α)·ema[i-1].
// Every position is defined.
func EMA(prices []float64, span int) (Series, error) {
	if span <= 0 {
		return Series{}, errBadPeriod
	}
	out := newSeries(len(prices), 0)
	if len(prices) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out.values[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out.values[i] = alpha*prices[i] + (1-alpha)*out.values[i-1]
	}
	return out, nil
}

// emaOf smooths a defined region of another series, starting at its first defined point.
func emaOf(s Series, span int) (Series, error) {
	tail, err := EMA(s.values[s.warmup:], span)
	if err != nil {
		return Series{}, err
	}
	out := newSeries(len(s.values), s.warmup)
	copy(out.values[s.warmup:], tail.values)
	return out, nil
}

// SMA computes the rolling simple moving average over window points.
// The first window-1 positions are undefined.
func SMA(prices []float64, window int) (Series, error) {
	if window <= 0 {
		return Series{}, errBadPeriod
	}
	out := newSeries(len(prices), window-1)
	for i := out.warmup; i < len(prices); i++ {
		out.values[i] = mean(prices[i-window+1 : i+1])
	}
	return out, nil
}

// RollingStd computes the rolling sample standard deviation (n-1 denominator).
// The first window-1 positions are undefined; a window of 1 is undefined everywhere.
func RollingStd(prices []float64, window int) (Series, error) {
	if window <= 0 {
		return Series{}, errBadPeriod
	}
	if window == 1 {
		return newSeries(len(prices), len(prices)), nil
	}
	out := newSeries(len(prices), window-1)
	for i := out.warmup; i < len(prices); i++ {
		w := prices[i-window+1 : i+1]
		m := mean(w)
		ss := 0.0
		for _, v := range w {
			d := v - m
			ss += d * d
		}
		out.values[i] = math.Sqrt(ss / float64(window-1))
	}
	return out, nil
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
