package collector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"StockPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV
	Err   map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, _, _ string) ([]model.OHLCV, error) {
	if err, ok := m.Err[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return GenerateMockBars(m.Price, 120), nil
}

// GenerateMockBars builds count 15-minute bars drifting gently upward around basePrice.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Truncate(15 * time.Minute).Add(-time.Duration(count) * 15 * time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches bars from a Fetcher and normalizes them into a BarSeries.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches and normalizes the history of one symbol.
func (c *Collector) Collect(ctx context.Context, symbol, period, interval string) (model.BarSeries, error) {
	raw, err := c.Fetcher.FetchHistory(ctx, symbol, period, interval)
	if err != nil {
		return model.BarSeries{}, fmt.Errorf("%w: %s %s: %v", ErrUpstream, c.Fetcher.Name(), symbol, err)
	}
	bars := Normalize(raw)
	if dropped := len(raw) - len(bars); dropped > 0 {
		slog.Debug("dropped unusable bars", "symbol", symbol, "dropped", dropped, "kept", len(bars))
	}
	return model.BarSeries{Symbol: symbol, Period: period, Interval: interval, Bars: bars}, nil
}

// Normalize returns a clean copy of bars: ascending by time, one bar per
// timestamp (the last one wins), and only bars with finite positive prices and
// finite non-negative volume.
func Normalize(raw []model.OHLCV) []model.OHLCV {
	bars := make([]model.OHLCV, 0, len(raw))
	for _, b := range raw {
		if usable(b) {
			bars = append(bars, b)
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func usable(b model.OHLCV) bool {
	for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return false
		}
	}
	return !math.IsNaN(b.Volume) && !math.IsInf(b.Volume, 0) && b.Volume >= 0
}
