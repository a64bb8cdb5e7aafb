package biz

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/pkg/sbstest"
)

func TestSearchCacheKey(t *testing.T) {
	c := NewSearchCache(nil, SearchCacheConfig{KeyPrefix: "test:"})

	a := c.Key(model.SearchText, "Luffy")
	assert.Equal(t, a, c.Key(model.SearchText, "  luffy "))
	assert.NotEqual(t, a, c.Key(model.SearchCharacter, "Luffy"))
	assert.Regexp(t, `^test:[0-9a-f]{64}$`, a)
}

func TestNilSearchCache(t *testing.T) {
	var c *SearchCache
	_, ok := c.Get(context.Background(), model.SearchText, "x")
	assert.False(t, ok)
	c.Set(context.Background(), model.SearchText, "x", nil)

	n, err := c.Clear(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

// newRedis connects to a local Redis or skips the test.
func newRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	addr := os.Getenv("SBS_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15, DialTimeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestSearchCacheRoundTrip(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	c := NewSearchCache(rdb, SearchCacheConfig{TTL: time.Minute, EmptyTTL: 5 * time.Second, KeyPrefix: "sbs:test:" + t.Name() + ":"})
	t.Cleanup(func() { _, _ = c.Clear(ctx) })

	vols, tags := sbstest.Series(1, 2)
	svc := NewSearchService(newFactory(vols, tags), c)

	first, err := svc.Search(ctx, "luffy", model.SearchCharacter)
	require.NoError(t, err)

	cached, ok := c.Get(ctx, model.SearchCharacter, "LUFFY")
	require.True(t, ok)
	assert.Equal(t, first, cached)

	assert.Greater(t, rdb.TTL(ctx, c.Key(model.SearchCharacter, "luffy")).Val(), 30*time.Second)

	_, err = svc.Search(ctx, "zoro", model.SearchText)
	require.NoError(t, err)
	empty := rdb.TTL(ctx, c.Key(model.SearchText, "zoro")).Val()
	assert.Positive(t, empty)
	assert.LessOrEqual(t, empty, 5*time.Second)

	require.NoError(t, rdb.Set(ctx, c.Key(model.SearchTag, "food"), "{broken", time.Minute).Err())
	_, ok = c.Get(ctx, model.SearchTag, "food")
	assert.False(t, ok)
	assert.Equal(t, int64(0), rdb.Exists(ctx, c.Key(model.SearchTag, "food")).Val())

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
