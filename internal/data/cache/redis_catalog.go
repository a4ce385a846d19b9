package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

const (
	productKeyPrefix = "catalog:product:"
	listKeyPrefix    = "catalog:list:"
	generationKey    = "catalog:gen"

	maxJitter = 30 * time.Second
)

type RedisCatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCatalogCache{client: client, baseTTL: ttl}
}

func (r *RedisCatalogCache) GetProduct(ctx context.Context, productID uuid.UUID) (*types.Product, error) {
	data, err := r.client.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var p types.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &p, nil
}

func (r *RedisCatalogCache) SetProduct(ctx context.Context, product *types.Product) error {
	if product == nil || product.ID == uuid.Nil {
		return nil
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}
	if err := r.client.Set(ctx, productKey(product.ID), raw, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCatalogCache) GetList(ctx context.Context, filter types.ProductFilter) ([]*types.Product, error) {
	key, err := r.listKey(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var out []*types.Product
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal product list failed: %w", err)
	}
	return out, nil
}

func (r *RedisCatalogCache) SetList(ctx context.Context, filter types.ProductFilter, products []*types.Product) error {
	key, err := r.listKey(ctx, filter)
	if err != nil {
		return err
	}
	if products == nil {
		products = []*types.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal product list failed: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate bumps the listing generation so stale list keys are never read
// again; they age out on their TTL.
func (r *RedisCatalogCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	pipe := r.client.TxPipeline()
	if len(productIDs) > 0 {
		keys := make([]string, 0, len(productIDs))
		for _, id := range productIDs {
			keys = append(keys, productKey(id))
		}
		pipe.Del(ctx, keys...)
	}
	pipe.Incr(ctx, generationKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func (r *RedisCatalogCache) listKey(ctx context.Context, filter types.ProductFilter) (string, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get generation failed: %w", err)
	}
	return listKey(gen, filter), nil
}

func (r *RedisCatalogCache) ttl() time.Duration {
	return r.baseTTL + time.Duration(rand.Int63n(int64(maxJitter)))
}

func productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

func listKey(gen int64, filter types.ProductFilter) string {
	return fmt.Sprintf("%s%d:%s|%s",
		listKeyPrefix,
		gen,
		strings.TrimSpace(filter.Category),
		strings.ToLower(strings.TrimSpace(filter.Search)),
	)
}
