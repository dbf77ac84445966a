package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarSeries is the price history of one symbol, ascending by time.
type BarSeries struct {
	Symbol   string
	Period   string
	Interval string
	Bars     []OHLCV
}

// Len returns the number of bars in the series.
func (s BarSeries) Len() int { return len(s.Bars) }

// Closes extracts the close column.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastClose returns the close of the most recent bar, or 0 for an empty series.
func (s BarSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}
