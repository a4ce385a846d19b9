package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CatalogCache holds read-through copies of products and product listings.
// Stock is part of the cached payload, so every stock mutation must invalidate.
type CatalogCache interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*types.Product, error)
	SetProduct(ctx context.Context, product *types.Product) error
	GetList(ctx context.Context, filter types.ProductFilter) ([]*types.Product, error)
	SetList(ctx context.Context, filter types.ProductFilter, products []*types.Product) error
	// Invalidate drops the given products and every cached listing.
	Invalidate(ctx context.Context, productIDs ...uuid.UUID) error
}

// NewRedisClient dials addr and pings it once.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type nopCatalogCache struct{}

// NewNopCatalogCache always misses; used when no redis is configured.
func NewNopCatalogCache() CatalogCache { return nopCatalogCache{} }

func (nopCatalogCache) GetProduct(context.Context, uuid.UUID) (*types.Product, error) {
	return nil, ErrCacheMiss
}
func (nopCatalogCache) SetProduct(context.Context, *types.Product) error { return nil }
func (nopCatalogCache) GetList(context.Context, types.ProductFilter) ([]*types.Product, error) {
	return nil, ErrCacheMiss
}
func (nopCatalogCache) SetList(context.Context, types.ProductFilter, []*types.Product) error {
	return nil
}
func (nopCatalogCache) Invalidate(context.Context, ...uuid.UUID) error { return nil }
