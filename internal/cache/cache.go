package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"go.uber.org/zap"
)

const keyPrefix = "shelfpulse:availability:"

// AvailabilityCache fronts the per-sku availability lookup between transform
// runs. A nil implementation is valid; callers must tolerate its absence.
type AvailabilityCache interface {
	Get(ctx context.Context, skuID string) (*insightsdomain.SkuAvailabilityView, bool)
	Set(ctx context.Context, skuID string, view *insightsdomain.SkuAvailabilityView) error
	Invalidate(ctx context.Context) error
}

func NewClient(cfg config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, cfg config.Config, log *zap.Logger) AvailabilityCache {
	if client == nil {
		return nil
	}
	return &redisCache{
		client: client,
		log:    log.Named("cache.availability"),
		ttl:    cfg.Redis.AvailabilityTTL,
	}
}

func (c *redisCache) Get(ctx context.Context, skuID string) (*insightsdomain.SkuAvailabilityView, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+skuID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read", zap.Error(err))
		}
		return nil, false
	}

	var view insightsdomain.SkuAvailabilityView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.log.Warn("cache decode", zap.String("sku_id", skuID), zap.Error(err))
		return nil, false
	}
	return &view, true
}

func (c *redisCache) Set(ctx context.Context, skuID string, view *insightsdomain.SkuAvailabilityView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+skuID, raw, c.ttl).Err()
}

// Invalidate drops every cached availability entry. Called after each
// transform run so readers never serve figures from the previous batch.
func (c *redisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
