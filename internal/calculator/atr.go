package calculator

import (
	"errors"
	"math"

	"StockPulse/internal/model"
)

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar has no previous close and is undefined.
func TrueRange(bars []model.OHLCV) Series {
	out := newSeries(len(bars), 1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - prev)
		lc := math.Abs(bars[i].Low - prev)
		out.values[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the simple moving average of the true range over period bars.
// The first period positions are undefined.
func ATR(bars []model.OHLCV, period int) (Series, error) {
	if period <= 0 {
		return Series{}, errors.New("period must be positive")
	}
	tr := TrueRange(bars)
	out := newSeries(len(bars), tr.warmup+period-1)
	for i := out.warmup; i < len(bars); i++ {
		out.values[i] = mean(tr.values[i-period+1 : i+1])
	}
	return out, nil
}
