package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Clients struct {
	Redis        *redis.Client
	CatalogCache cache.CatalogCache
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, catalog cache disabled")
		return Clients{CatalogCache: cache.NewNopCatalogCache()}, nil
	}
	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	catalog := instrumentCatalogCache(cache.NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL), metrics)
	return Clients{Redis: rdb, CatalogCache: catalog}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
