package strategy

import (
	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// TrendTag classifies the trend from the last EMA20, EMA50 and MACD histogram
// values: Up when EMA20 > EMA50 and the histogram is positive, Down when both
// point down, Sideways otherwise. There is no hysteresis.
func TrendTag(closes []float64) model.Trend {
	e20, err := calculator.EMA(closes, calculator.EMAFastSpan)
	if err != nil {
		return model.TrendSideways
	}
	e50, err := calculator.EMA(closes, calculator.EMASlowSpan)
	if err != nil {
		return model.TrendSideways
	}
	m, err := calculator.MACD(closes, calculator.MACDFast, calculator.MACDSlow, calculator.MACDSignal)
	if err != nil {
		return model.TrendSideways
	}
	fast, ok1 := e20.Last()
	slow, ok2 := e50.Last()
	hist, ok3 := m.Histogram.Last()
	if !ok1 || !ok2 || !ok3 {
		return model.TrendSideways
	}
	return classifyTrend(fast, slow, hist)
}

func classifyTrend(ema20, ema50, hist float64) model.Trend {
	switch {
	case ema20 > ema50 && hist > 0:
		return model.TrendUp
	case ema20 < ema50 && hist < 0:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}
