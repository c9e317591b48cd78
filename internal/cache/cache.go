// Package cache memoizes extracted bags of words in Redis. Keys hash the
// extractor parameters together with the text, so a cached bag is only
// reused for identical input.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	pkgredis "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/redis"
)

const keyPrefix = "bow:"

// ErrMiss is returned by a Backend for a missing key.
var ErrMiss = errors.New("cache miss")

// Backend is the key-value store behind the cache.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// RedisBackend adapts a Redis client to Backend.
type RedisBackend struct {
	Client *pkgredis.Client
}

func (r RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.Client.Get(ctx, key)
	if pkgredis.IsNilError(err) {
		return nil, ErrMiss
	}
	return data, err
}

func (r RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl)
}

func (r RedisBackend) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	return r.Client.FlushByPattern(ctx, pattern)
}

// BowCache caches bags of words. Concurrent computations of the same key
// are collapsed into one.
type BowCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(backend Backend, ttl time.Duration) *BowCache {
	return &BowCache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "bow-cache"),
	}
}

func (c *BowCache) Get(ctx context.Context, params bow.Params, text string) (*bow.BagOfWords, bool) {
	key := BuildKey(params, text)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	b := bow.New()
	if err := json.Unmarshal(data, b); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return b, true
}

func (c *BowCache) Set(ctx context.Context, params bow.Params, text string, b *bow.BagOfWords) {
	key := BuildKey(params, text)
	data, err := json.Marshal(b)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached bag for (params, text) or computes it with
// computeFn. Results with a diagnostic are returned but not cached.
func (c *BowCache) GetOrCompute(
	ctx context.Context,
	params bow.Params,
	text string,
	computeFn func() (*bow.BagOfWords, error),
) (*bow.BagOfWords, bool, error) {
	if b, ok := c.Get(ctx, params, text); ok {
		return b, true, nil
	}
	type outcome struct {
		bag *bow.BagOfWords
		err error
	}
	val, _, _ := c.group.Do(BuildKey(params, text), func() (interface{}, error) {
		b, err := computeFn()
		if err == nil {
			c.Set(ctx, params, text, b)
		}
		return outcome{bag: b, err: err}, nil
	})
	out := val.(outcome)
	return out.bag, false, out.err
}

func (c *BowCache) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *BowCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BuildKey derives the cache key of a bag extracted from text with params.
func BuildKey(params bow.Params, text string) string {
	h := sha256.New()
	h.Write([]byte(params.Key()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}
