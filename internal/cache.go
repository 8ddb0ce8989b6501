package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache stores completed pipeline results keyed by the client-supplied
// request ID. It is the only resource shared across concurrent requests;
// each request ID maps to at most one pipeline run, so writes are
// single-writer-per-key.
type ResultCache interface {
	Get(ctx context.Context, requestID string) (*PipelineResult, bool, error)
	Put(ctx context.Context, requestID string, result *PipelineResult) error
}

// MemoryCache is the default in-process store. Entries live for the life of
// the process: there is no eviction, which is a known memory growth risk
// under sustained traffic. Use RedisCache with a TTL when that matters.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*PipelineResult
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*PipelineResult)}
}

func (c *MemoryCache) Get(_ context.Context, requestID string) (*PipelineResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[requestID]
	return result, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, requestID string, result *PipelineResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[requestID] = result
	return nil
}

// Len reports the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache stores results in Redis as JSON values, surviving process
// restarts and bounding growth via TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

const redisKeyPrefix = "commentlens:result:"

// NewRedisCache connects to Redis and verifies the connection. A zero ttl
// means entries never expire.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	slog.Info("result cache using redis", "addr", opts.Addr, "ttl", ttl)
	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, requestID string) (*PipelineResult, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+requestID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached result: %w", err)
	}

	var result PipelineResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, true, nil
}

func (c *RedisCache) Put(ctx context.Context, requestID string, result *PipelineResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+requestID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing result: %w", err)
	}
	return nil
}
