package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCatalogCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCatalogCache(client, time.Minute), mr
}

func sampleProduct() *types.Product {
	return &types.Product{
		ID:       uuid.New(),
		Name:     "Teapot",
		Price:    decimal.RequireFromString("19.99"),
		Stock:    4,
		Category: "kitchen",
	}
}

func TestProduct_SetGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	p := sampleProduct()

	_, err := c.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetProduct(ctx, p))
	assert.True(t, mr.Exists(productKey(p.ID)))

	ttl := mr.TTL(productKey(p.ID))
	assert.True(t, ttl >= time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= time.Minute+maxJitter, "TTL should be base + max jitter")

	got, err := c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, 4, got.Stock)
	assert.True(t, got.Price.Equal(p.Price))
}

func TestProduct_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set(productKey(id), `{"id":`))

	_, err := c.GetProduct(context.Background(), id)
	require.ErrorContains(t, err, "unmarshal product failed")
}

func TestList_GenerationInvalidation(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	p := sampleProduct()
	filter := types.ProductFilter{Category: "kitchen"}

	_, err := c.GetList(ctx, filter)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetList(ctx, filter, []*types.Product{p}))
	got, err := c.GetList(ctx, filter)
	require.NoError(t, err)
	require.Len(t, got, 1)

	other, err := c.GetList(ctx, types.ProductFilter{Category: "office"})
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, other)

	require.NoError(t, c.SetProduct(ctx, p))
	require.NoError(t, c.Invalidate(ctx, p.ID))

	assert.False(t, mr.Exists(productKey(p.ID)))
	_, err = c.GetList(ctx, filter)
	assert.ErrorIs(t, err, ErrCacheMiss, "listings must miss after invalidation")

	gen, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestList_EmptyIsCached(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()
	filter := types.ProductFilter{Search: "nothing"}

	require.NoError(t, c.SetList(ctx, filter, nil))
	got, err := c.GetList(ctx, filter)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNopCache(t *testing.T) {
	c := NewNopCatalogCache()
	ctx := context.Background()
	_, err := c.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.GetList(ctx, types.ProductFilter{})
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestListKey_Format(t *testing.T) {
	assert.Equal(t, "catalog:list:3:Kitchen|mug", listKey(3, types.ProductFilter{Category: " Kitchen ", Search: "MUG"}))
}
