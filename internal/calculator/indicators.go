package calculator

import (
	"fmt"

	"StockPulse/internal/model"
)

// Standard indicator parameters.
const (
	EMAFastSpan = 20
	EMASlowSpan = 50
	RSIPeriod   = 14
	MACDFast    = 12
	MACDSlow    = 26
	MACDSignal  = 9
	BollingerN  = 20
	BollingerK  = 2.0
	ATRPeriod   = 14
)

// IndicatorSet holds every standard indicator for one series, aligned with its bars.
// It is recomputed per call and never cached.
type IndicatorSet struct {
	Closes    []float64
	EMA20     Series
	EMA50     Series
	RSI14     Series
	MACD      MACDResult
	Bollinger BollingerResult
	ATR14     Series
}

// ComputeIndicators derives the standard IndicatorSet from bars.
func ComputeIndicators(bars []model.OHLCV) (*IndicatorSet, error) {
	closes := extractCloses(bars)
	set := &IndicatorSet{Closes: closes}

	var err error
	if set.EMA20, err = EMA(closes, EMAFastSpan); err != nil {
		return nil, fmt.Errorf("ema%d: %w", EMAFastSpan, err)
	}
	if set.EMA50, err = EMA(closes, EMASlowSpan); err != nil {
		return nil, fmt.Errorf("ema%d: %w", EMASlowSpan, err)
	}
	if set.RSI14, err = RSI(closes, RSIPeriod); err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	if set.MACD, err = MACD(closes, MACDFast, MACDSlow, MACDSignal); err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	if set.Bollinger, err = Bollinger(closes, BollingerN, BollingerK); err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	if set.ATR14, err = ATR(bars, ATRPeriod); err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	return set, nil
}

// PctChange returns the fractional change of the last close over the close
// lag positions earlier, and false when the series is too short.
func PctChange(closes []float64, lag int) (float64, bool) {
	n := len(closes)
	if lag <= 0 || n <= lag {
		return 0, false
	}
	return closes[n-1]/closes[n-1-lag] - 1, true
}
