package strategy

import (
	"fmt"
	"math"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// ValidateBars checks that bars are long enough and well formed: strictly
// ascending timestamps, finite positive prices and finite non-negative volume.
func ValidateBars(bars []model.OHLCV) error {
	if len(bars) < MinBars {
		return fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, len(bars), MinBars)
	}
	for i, b := range bars {
		for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return fmt.Errorf("%w: bar %d has invalid price %v", ErrComputation, i, p)
			}
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
			return fmt.Errorf("%w: bar %d has invalid volume %v", ErrComputation, i, b.Volume)
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d is not after bar %d", ErrComputation, i, i-1)
		}
	}
	return nil
}

// CompositeScore computes the seven factors from the last bar and fuses them
// into a weighted sum. It also reports RSI14 and whether EMA20 > EMA50.
func CompositeScore(bars []model.OHLCV) (*model.CompositeSignal, error) {
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	set, err := calculator.ComputeIndicators(bars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputation, err)
	}
	snap, err := lastSnapshot(set)
	if err != nil {
		return nil, err
	}

	sig := &model.CompositeSignal{
		Factors:         make([]model.FactorScore, 0, len(factorOrder)),
		RSI14:           snap.rsi,
		EMA20AboveEMA50: snap.ema20 > snap.ema50,
	}
	for _, name := range factorOrder {
		f := factorFuncs[name](snap)
		sig.Factors = append(sig.Factors, f)
		sig.Score += f.Weighted
	}
	if math.IsNaN(sig.Score) || math.IsInf(sig.Score, 0) {
		return nil, fmt.Errorf("%w: non-finite score", ErrComputation)
	}
	return sig, nil
}

func lastSnapshot(set *calculator.IndicatorSet) (snapshot, error) {
	var s snapshot
	var ok bool
	reads := []struct {
		name string
		ser  calculator.Series
		dst  *float64
	}{
		{"rsi14", set.RSI14, &s.rsi},
		{"macd_hist", set.MACD.Histogram, &s.hist},
		{"ema20", set.EMA20, &s.ema20},
		{"ema50", set.EMA50, &s.ema50},
		{"bb_upper", set.Bollinger.Upper, &s.bbUpper},
		{"bb_lower", set.Bollinger.Lower, &s.bbLower},
		{"atr14", set.ATR14, &s.atr},
	}
	for _, r := range reads {
		if *r.dst, ok = r.ser.Last(); !ok {
			return s, fmt.Errorf("%w: %s undefined at last bar", ErrComputation, r.name)
		}
	}
	s.close = set.Closes[len(set.Closes)-1]
	if s.ret1, ok = calculator.PctChange(set.Closes, 1); !ok {
		return s, fmt.Errorf("%w: 1-period return undefined", ErrComputation)
	}
	if s.ret5, ok = calculator.PctChange(set.Closes, 5); !ok {
		return s, fmt.Errorf("%w: 5-period return undefined", ErrComputation)
	}
	return s, nil
}

// Evaluate computes the full trade signal for a series.
func Evaluate(series model.BarSeries, th Thresholds) (*model.TradeSignal, error) {
	comp, err := CompositeScore(series.Bars)
	if err != nil {
		return nil, err
	}
	return &model.TradeSignal{
		Composite:      *comp,
		Trend:          TrendTag(series.Closes()),
		Recommendation: th.MapRecommendation(comp.Score),
		LastClose:      series.LastClose(),
	}, nil
}
