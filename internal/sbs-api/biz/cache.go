package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/utils/json"
)

// SearchCacheConfig configures the search result cache.
type SearchCacheConfig struct {
	TTL time.Duration
	// EmptyTTL applies to searches without matches. Zero means TTL.
	EmptyTTL  time.Duration
	KeyPrefix string
}

// SearchCache stores search results in Redis. A nil *SearchCache is valid
// and never hits.
type SearchCache struct {
	redis  *goredis.Client
	config SearchCacheConfig
}

// NewSearchCache creates a search cache on rdb.
func NewSearchCache(rdb *goredis.Client, config SearchCacheConfig) *SearchCache {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	if config.EmptyTTL <= 0 {
		config.EmptyTTL = config.TTL
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "sbs:search:"
	}
	return &SearchCache{redis: rdb, config: config}
}

// Key returns the cache key of a search. Terms differing only in case share a key.
func (c *SearchCache) Key(typ model.SearchType, term string) string {
	hash := sha256.Sum256([]byte(string(typ) + ":" + strings.ToLower(strings.TrimSpace(term))))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached results, if any. Redis failures count as a miss.
func (c *SearchCache) Get(ctx context.Context, typ model.SearchType, term string) ([]model.MatchResult, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	key := c.Key(typ, term)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Warnw("failed to get from search cache", "error", err.Error(), "key", key)
		}
		return nil, false
	}

	var results []model.MatchResult
	if err := json.Unmarshal(data, &results); err != nil {
		logger.Warnw("dropping corrupt search cache entry", "error", err.Error(), "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	if results == nil {
		results = []model.MatchResult{}
	}

	logger.Debugw("search cache hit", "type", typ, "key", key, "volumes", len(results))
	return results, true
}

// Set stores results. Failures are logged and otherwise ignored.
func (c *SearchCache) Set(ctx context.Context, typ model.SearchType, term string, results []model.MatchResult) {
	if c == nil || c.redis == nil {
		return
	}

	key := c.Key(typ, term)
	data, err := json.Marshal(results)
	if err != nil {
		logger.Warnw("failed to marshal search results for caching", "error", err.Error())
		return
	}

	ttl := c.config.TTL
	if len(results) == 0 {
		ttl = c.config.EmptyTTL
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warnw("failed to set search cache", "error", err.Error(), "key", key)
	}
}

// Clear deletes every key under the configured prefix.
func (c *SearchCache) Clear(ctx context.Context) (int, error) {
	if c == nil || c.redis == nil {
		return 0, nil
	}

	deleted := 0
	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete search cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}

	logger.Infow("cleared search cache", "deleted_count", deleted)
	return deleted, nil
}
