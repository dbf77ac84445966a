package collector

import (
	"context"
	"errors"

	"StockPulse/internal/model"
)

// ErrUpstream wraps every failure to obtain bars from a data source.
var ErrUpstream = errors.New("upstream fetch failed")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns the bars of symbol for a Yahoo-style period
	// ("5d", "1mo") and interval ("15m", "1d").
	FetchHistory(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error)
	Name() string
}
