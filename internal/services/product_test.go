package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
)

func productInput(t *testing.T, raw string) ProductInput {
	t.Helper()
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return in
}

func TestProductService_AdminCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := asUser(env.user(t, true))
	shopper := asUser(env.user(t, false))

	_, err := env.products.Create(shopper, productInput(t, `{"name":"Kettle","price":"25.00","category":"kitchen"}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeForbidden))

	_, err = env.products.Create(admin, productInput(t, `{"name":"Kettle"}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeValidation))
	_, err = env.products.Create(admin, productInput(t, `{"name":"Kettle","price":-1,"category":"kitchen"}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeValidation))
	_, err = env.products.Create(admin, productInput(t, `{"name":"Kettle","price":"1.999","category":"kitchen"}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeValidation))
	_, err = env.products.Create(admin, productInput(t, `{"name":"Kettle","price":5,"stock":-2,"category":"kitchen"}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeValidation))

	p, err := env.products.Create(admin, productInput(t, `{"name":"Kettle","price":25.5,"stock":4,"category":"kitchen","image_url":"https://img/k.jpg"}`))
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 4, p.Stock)

	updated, err := env.products.Update(admin, p.ID, productInput(t, `{"stock":9,"description":"steel"}`))
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "steel", updated.Description)
	assert.Equal(t, "Kettle", updated.Name)

	_, err = env.products.Update(admin, uuid.New(), productInput(t, `{"stock":1}`))
	assert.True(t, apierr.HasCode(err, apierr.CodeNotFound))

	list, err := env.products.List(context.Background(), types.ProductFilter{Search: "kett"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, env.products.Delete(admin, p.ID))
	_, err = env.products.Get(context.Background(), p.ID)
	assert.True(t, apierr.HasCode(err, apierr.CodeNotFound))
	assert.True(t, apierr.HasCode(env.products.Delete(admin, p.ID), apierr.CodeNotFound))
}

func TestProductService_CacheInvalidatedByOrders(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnv(t, cache.NewRedisCatalogCache(client, time.Minute))
	ctx := context.Background()

	u := env.user(t, false)
	p := testutil.SeedProduct(t, ctx, env.db, "P", "10.00", 5)
	testutil.SeedCartLine(t, ctx, env.db, u.ID, p.ID, 3)

	got, err := env.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	assert.True(t, mr.Exists("catalog:product:"+p.ID.String()))

	list, err := env.products.List(ctx, types.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	order, err := env.orders.CreateOrder(asUser(u), addr)
	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:product:"+p.ID.String()))

	got, err = env.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	list, err = env.products.List(ctx, types.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list[0].Stock)

	_, err = env.orders.CancelOrder(asUser(u), order.ID)
	require.NoError(t, err)
	got, err = env.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}
