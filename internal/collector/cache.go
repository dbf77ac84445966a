package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"StockPulse/internal/model"
)

// CachedFetcher serves recent fetches from Redis and falls through to the
// wrapped Fetcher on a miss. Redis errors never fail a fetch.
type CachedFetcher struct {
	Next   Fetcher
	Client *goredis.Client
	TTL    time.Duration
}

// NewCachedFetcher wraps next with a Redis cache at addr.
func NewCachedFetcher(next Fetcher, addr, password string, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		Next: next,
		Client: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
		}),
		TTL: ttl,
	}
}

func (c *CachedFetcher) Name() string { return c.Next.Name() + "+redis" }

// CacheKey returns the Redis key for one fetch.
func CacheKey(provider, symbol, period, interval string) string {
	return fmt.Sprintf("stockpulse:bars:%s:%s:%s:%s", provider, symbol, period, interval)
}

func (c *CachedFetcher) FetchHistory(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error) {
	key := CacheKey(c.Next.Name(), symbol, period, interval)

	data, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.OHLCV
		jerr := json.Unmarshal(data, &bars)
		if jerr == nil {
			return bars, nil
		}
		slog.Warn("discarding corrupt cache entry", "key", key, "error", jerr)
	case !errors.Is(err, goredis.Nil):
		slog.Warn("redis get failed, fetching upstream", "key", key, "error", err)
	}

	bars, err := c.Next.FetchHistory(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(bars); err == nil {
		if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
			slog.Warn("redis set failed", "key", key, "error", err)
		}
	}
	return bars, nil
}

// Close releases the Redis connection pool.
func (c *CachedFetcher) Close() error {
	return c.Client.Close()
}
