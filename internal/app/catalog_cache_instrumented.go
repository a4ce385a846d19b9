package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/observability"
)

type instrumentedCatalogCache struct {
	inner   cache.CatalogCache
	metrics *observability.Metrics
}

func instrumentCatalogCache(inner cache.CatalogCache, metrics *observability.Metrics) cache.CatalogCache {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedCatalogCache{inner: inner, metrics: metrics}
}

func (c *instrumentedCatalogCache) GetProduct(ctx context.Context, productID uuid.UUID) (*types.Product, error) {
	p, err := c.inner.GetProduct(ctx, productID)
	c.metrics.IncCacheLookup("product", err == nil && p != nil)
	return p, err
}

func (c *instrumentedCatalogCache) SetProduct(ctx context.Context, product *types.Product) error {
	return c.inner.SetProduct(ctx, product)
}

func (c *instrumentedCatalogCache) GetList(ctx context.Context, filter types.ProductFilter) ([]*types.Product, error) {
	out, err := c.inner.GetList(ctx, filter)
	c.metrics.IncCacheLookup("list", err == nil)
	return out, err
}

func (c *instrumentedCatalogCache) SetList(ctx context.Context, filter types.ProductFilter, products []*types.Product) error {
	return c.inner.SetList(ctx, filter, products)
}

func (c *instrumentedCatalogCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	return c.inner.Invalidate(ctx, productIDs...)
}
