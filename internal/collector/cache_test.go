package collector

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedFetcher_FallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	inner := &MockFetcher{Price: 50}
	f := NewCachedFetcher(inner, client, time.Minute)
	assert.Equal(t, "mock", f.Name())

	bars, err := f.FetchDailyBars(context.Background(), "SPY", 30)
	require.NoError(t, err)
	assert.Len(t, bars, 30)
	assert.Equal(t, 1, inner.Calls)
	assert.Equal(t, "signalsentinel:bars:mock:SPY:30", f.cacheKey("SPY", 30))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
