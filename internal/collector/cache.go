package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"SignalSentinel/internal/model"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Printf("[INFO] connected to redis at %s", addr)
	return client, nil
}

// CachedFetcher serves bars from Redis when present and otherwise delegates
// to Inner, caching what it returns. Redis failures never fail a fetch.
type CachedFetcher struct {
	Inner  Fetcher
	Client *redis.Client
	TTL    time.Duration
}

// NewCachedFetcher wraps inner with a Redis cache.
func NewCachedFetcher(inner Fetcher, client *redis.Client, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Inner: inner, Client: client, TTL: ttl}
}

func (f *CachedFetcher) Name() string { return f.Inner.Name() }

func (f *CachedFetcher) cacheKey(symbol string, days int) string {
	return fmt.Sprintf("signalsentinel:bars:%s:%s:%d", f.Inner.Name(), symbol, days)
}

func (f *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := f.cacheKey(symbol, days)

	data, err := f.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.OHLCV
		jerr := json.Unmarshal(data, &bars)
		if jerr == nil {
			return bars, nil
		}
		log.Printf("[WARN] discarding corrupt cache entry %s: %v", key, jerr)
	case !errors.Is(err, redis.Nil):
		log.Printf("[WARN] redis get %s: %v", key, err)
	}

	bars, err := f.Inner.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return bars, nil
	}
	payload, err := json.Marshal(bars)
	if err != nil {
		log.Printf("[WARN] encode bars for cache: %v", err)
		return bars, nil
	}
	if err := f.Client.Set(ctx, key, payload, f.TTL).Err(); err != nil {
		log.Printf("[WARN] redis set %s: %v", key, err)
	}
	return bars, nil
}
