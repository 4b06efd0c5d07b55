package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-catalog-api/internal/models"
)

const keyPrefix = "catalog:"

type Options struct {
	URL string
	DB  int
	TTL time.Duration
}

// RedisCache stores remote product pages. A nil *RedisCache is valid and
// behaves as an always-missing cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects and pings. It returns nil when Redis cannot be
// reached so callers can run without a cache.
func NewRedisCache(ctx context.Context, opts Options, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		logger.Warn("invalid redis url, cache disabled", zap.Error(err))
		return nil
	}
	opt.DB = opts.DB

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", zap.Int("db", opts.DB), zap.Duration("ttl", opts.TTL))
	return New(client, opts.TTL, logger)
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisCache) GetPage(ctx context.Context, key string) (*models.ProductPage, error) {
	if !r.IsAvailable() {
		return nil, nil
	}

	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var page models.ProductPage
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return &page, nil
}

func (r *RedisCache) SetPage(ctx context.Context, key string, page *models.ProductPage) error {
	if !r.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err()
}

func (r *RedisCache) Close() error {
	if !r.IsAvailable() {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

func (r *RedisCache) GetStats(ctx context.Context) map[string]interface{} {
	if !r.IsAvailable() {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	info := r.client.Info(ctx, "memory").Val()
	return map[string]interface{}{
		"status":      "connected",
		"ttl_seconds": int(r.ttl.Seconds()),
		"keys":        len(r.GetAllKeys(ctx)),
		"memory_info": info,
	}
}

// GetAllKeys lists cached page keys without the prefix.
func (r *RedisCache) GetAllKeys(ctx context.Context) []string {
	if !r.IsAvailable() {
		return []string{}
	}
	keys := []string{}
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("redis scan failed", zap.Error(err))
	}
	return keys
}

// FlushCache removes every cached page. Other keys in the DB are kept.
func (r *RedisCache) FlushCache(ctx context.Context) error {
	if !r.IsAvailable() {
		return fmt.Errorf("redis client not available")
	}
	keys := r.GetAllKeys(ctx)
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisCache) GetKeyTTL(ctx context.Context, key string) time.Duration {
	if !r.IsAvailable() {
		return 0
	}
	ttl, err := r.client.TTL(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0
	}
	return ttl
}
