package calculator

// MACDResult holds the three aligned MACD series.
type MACDResult struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(line, signal) and
// histogram = line - signal.
func MACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	emaFast, err := EMA(prices, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := EMA(prices, slow)
	if err != nil {
		return MACDResult{}, err
	}
	line := Sub(emaFast, emaSlow)
	sig, err := emaOf(line, signal)
	if err != nil {
		return MACDResult{}, err
	}
	return MACDResult{Line: line, Signal: sig, Histogram: Sub(line, sig)}, nil
}
