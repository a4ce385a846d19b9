package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// ProductInput is the body of product create and update calls.
// On create, name, price and category are required.
type ProductInput struct {
	Name        OptionalString  `json:"name"`
	Description OptionalString  `json:"description"`
	Price       OptionalDecimal `json:"price"`
	Stock       OptionalInt     `json:"stock"`
	Category    OptionalString  `json:"category"`
	ImageURL    OptionalString  `json:"image_url"`
}

type ProductService interface {
	List(ctx context.Context, filter types.ProductFilter) ([]*types.Product, error)
	Get(ctx context.Context, productID uuid.UUID) (*types.Product, error)
	Create(ctx context.Context, in ProductInput) (*types.Product, error)
	Update(ctx context.Context, productID uuid.UUID, in ProductInput) (*types.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
	cache       cache.CatalogCache
	sfg         singleflight.Group
}

func NewProductService(db *gorm.DB, log *logger.Logger, productRepo repos.ProductRepo, catalogCache cache.CatalogCache) ProductService {
	if catalogCache == nil {
		catalogCache = cache.NewNopCatalogCache()
	}
	return &productService{
		db:          db,
		log:         log.With("service", "ProductService"),
		productRepo: productRepo,
		cache:       catalogCache,
	}
}

func (ps *productService) List(ctx context.Context, filter types.ProductFilter) ([]*types.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)

	cached, err := ps.cache.GetList(ctx, filter)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		ps.log.Warn("Catalog cache read failed", "error", err)
	}

	key := "list:" + filter.Category + "|" + strings.ToLower(filter.Search)
	v, err, _ := ps.sfg.Do(key, func() (interface{}, error) {
		rows, err := ps.productRepo.List(dbctx.New(ctx), filter)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if err := ps.cache.SetList(context.WithoutCancel(ctx), filter, rows); err != nil {
			ps.log.Warn("Catalog cache write failed", "error", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.Product), nil
}

func (ps *productService) Get(ctx context.Context, productID uuid.UUID) (*types.Product, error) {
	if productID == uuid.Nil {
		return nil, apierr.Validation("invalid product id")
	}
	cached, err := ps.cache.GetProduct(ctx, productID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		ps.log.Warn("Catalog cache read failed", "error", err)
	}

	v, err, _ := ps.sfg.Do("product:"+productID.String(), func() (interface{}, error) {
		p, err := ps.productRepo.GetByID(dbctx.New(ctx), productID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if p == nil {
			return nil, apierr.NotFound("product %s not found", productID)
		}
		if err := ps.cache.SetProduct(context.WithoutCancel(ctx), p); err != nil {
			ps.log.Warn("Catalog cache write failed", "error", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Product), nil
}

func requireAdmin(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromRequestData(ctxutil.GetRequestData(ctx))
	if !ok {
		return Principal{}, apierr.Unauthorized("unauthorized")
	}
	if !p.IsAdmin {
		return Principal{}, apierr.Forbidden("admin only")
	}
	return p, nil
}

func validatePrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return apierr.Validation("price must not be negative")
	}
	if !d.Equal(d.Round(2)) {
		return apierr.Validation("price must have at most two decimal places")
	}
	return nil
}

// updates converts the set fields of in into column updates.
func (in ProductInput) updates() (map[string]any, error) {
	out := map[string]any{}
	if in.Name.Set {
		if in.Name.Value == nil || *in.Name.Value == "" {
			return nil, apierr.Validation("name is required")
		}
		out["name"] = *in.Name.Value
	}
	if in.Description.Set {
		desc := ""
		if in.Description.Value != nil {
			desc = *in.Description.Value
		}
		out["description"] = desc
	}
	if in.Price.Set {
		if in.Price.Value == nil {
			return nil, apierr.Validation("price is required")
		}
		if err := validatePrice(*in.Price.Value); err != nil {
			return nil, err
		}
		out["price"] = *in.Price.Value
	}
	if in.Stock.Set {
		if in.Stock.Value == nil || *in.Stock.Value < 0 {
			return nil, apierr.Validation("stock must be zero or more")
		}
		out["stock"] = *in.Stock.Value
	}
	if in.Category.Set {
		if in.Category.Value == nil || *in.Category.Value == "" {
			return nil, apierr.Validation("category is required")
		}
		out["category"] = *in.Category.Value
	}
	if in.ImageURL.Set {
		img := ""
		if in.ImageURL.Value != nil {
			img = *in.ImageURL.Value
		}
		out["image_url"] = img
	}
	return out, nil
}

func (ps *productService) Create(ctx context.Context, in ProductInput) (*types.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !in.Name.Set || !in.Price.Set || !in.Category.Set {
		return nil, apierr.Validation("name, price and category are required")
	}
	fields, err := in.updates()
	if err != nil {
		return nil, err
	}
	p := &types.Product{
		Name:     fields["name"].(string),
		Price:    fields["price"].(decimal.Decimal),
		Category: fields["category"].(string),
	}
	if v, ok := fields["description"].(string); ok {
		p.Description = v
	}
	if v, ok := fields["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := fields["image_url"].(string); ok {
		p.ImageURL = v
	}

	if _, err := ps.productRepo.Create(dbctx.New(ctx), []*types.Product{p}); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	ps.invalidate(ctx, p.ID)
	ps.log.Info("Product created", "product_id", p.ID)
	return p, nil
}

func (ps *productService) Update(ctx context.Context, productID uuid.UUID, in ProductInput) (*types.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	fields, err := in.updates()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apierr.Validation("nothing to update")
	}

	var out *types.Product
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ok, err := ps.productRepo.UpdateFields(dbc, productID, fields)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if !ok {
			return apierr.NotFound("product %s not found", productID)
		}
		p, err := ps.productRepo.GetByID(dbc, productID)
		if err != nil {
			return fmt.Errorf("reload product: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.invalidate(ctx, productID)
	return out, nil
}

func (ps *productService) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	ok, err := ps.productRepo.SoftDelete(dbctx.New(ctx), productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !ok {
		return apierr.NotFound("product %s not found", productID)
	}
	ps.invalidate(ctx, productID)
	ps.log.Info("Product deleted", "product_id", productID)
	return nil
}

func (ps *productService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	invalidateCatalog(ctx, ps.cache, ps.log, ids...)
}

// invalidateCatalog runs after commit; a failure only leaves entries to expire on their TTL.
func invalidateCatalog(ctx context.Context, c cache.CatalogCache, log *logger.Logger, ids ...uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.Invalidate(context.WithoutCancel(ctx), ids...); err != nil {
		log.Warn("Catalog cache invalidation failed", "error", err, "products", len(ids))
	}
}
