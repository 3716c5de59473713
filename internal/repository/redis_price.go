package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/registry"
)

const (
	redisNativePriceKey = "price:native"
	redisAssetPriceKey  = "price:asset:"
)

// RedisPriceCache is a read-through cache in front of another registry
// store. Lookups hit Redis first; mutations write through and invalidate.
// Cache failures degrade to the inner store, never to an error.
type RedisPriceCache struct {
	rdb   *redis.Client
	inner registry.Store
	ttl   time.Duration
}

func NewRedisPriceCache(client *RedisClient, inner registry.Store, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{rdb: client.Client, inner: inner, ttl: ttl}
}

func (c *RedisPriceCache) GetConfig(ctx context.Context) (*model.PriceConfig, error) {
	if raw, err := c.rdb.Get(ctx, redisNativePriceKey).Bytes(); err == nil {
		var cfg model.PriceConfig
		if json.Unmarshal(raw, &cfg) == nil {
			return &cfg, nil
		}
	}
	cfg, err := c.inner.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	c.cache(ctx, redisNativePriceKey, cfg)
	return cfg, nil
}

func (c *RedisPriceCache) InitConfig(ctx context.Context, cfg model.PriceConfig) error {
	if err := c.inner.InitConfig(ctx, cfg); err != nil {
		return err
	}
	c.invalidate(ctx, redisNativePriceKey)
	return nil
}

func (c *RedisPriceCache) SetUnitPrice(ctx context.Context, unitPrice uint64) error {
	if err := c.inner.SetUnitPrice(ctx, unitPrice); err != nil {
		return err
	}
	c.invalidate(ctx, redisNativePriceKey)
	return nil
}

func (c *RedisPriceCache) GetAsset(ctx context.Context, assetID string) (*model.AssetPrice, error) {
	key := redisAssetPriceKey + assetID
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var entry model.AssetPrice
		if json.Unmarshal(raw, &entry) == nil {
			return &entry, nil
		}
	}
	entry, err := c.inner.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	c.cache(ctx, key, entry)
	return entry, nil
}

func (c *RedisPriceCache) RegisterAsset(ctx context.Context, entry model.AssetPrice) error {
	if err := c.inner.RegisterAsset(ctx, entry); err != nil {
		return err
	}
	c.invalidate(ctx, redisAssetPriceKey+entry.AssetID)
	return nil
}

func (c *RedisPriceCache) RepriceAsset(ctx context.Context, assetID string, unitPrice uint64) error {
	if err := c.inner.RepriceAsset(ctx, assetID, unitPrice); err != nil {
		return err
	}
	c.invalidate(ctx, redisAssetPriceKey+assetID)
	return nil
}

func (c *RedisPriceCache) ListAssets(ctx context.Context) ([]model.AssetPrice, error) {
	// Listing is rare (inspector, read endpoint); go straight through.
	return c.inner.ListAssets(ctx)
}

func (c *RedisPriceCache) cache(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("price cache write failed", "key", key, "error", err)
	}
}

func (c *RedisPriceCache) invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		logger.Warn("price cache invalidation failed", "key", key, "error", err)
	}
}
