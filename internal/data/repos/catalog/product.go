package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error)
	List(dbc dbctx.Context, filter types.ProductFilter) ([]*types.Product, error)
	UpdateFields(dbc dbctx.Context, productID uuid.UUID, updates map[string]any) (bool, error)
	SoftDelete(dbc dbctx.Context, productID uuid.UUID) (bool, error)
	// DecrementStock subtracts qty only if enough stock remains; false means nothing changed.
	DecrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) (bool, error)
	IncrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if productID == uuid.Nil {
		return nil, nil
	}
	var row types.Product
	if err := t.WithContext(dbc.Ctx).
		Where("id = ?", productID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *productRepo) List(dbc dbctx.Context, filter types.ProductFilter) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Product{})
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var results []*types.Product
	if err := q.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, productID uuid.UUID, updates map[string]any) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if productID == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id = ?", productID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) SoftDelete(dbc dbctx.Context, productID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("id = ?", productID).
		Delete(&types.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) DecrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if qty <= 0 {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock also restocks soft-deleted products so cancellations stay exact.
func (r *productRepo) IncrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if qty <= 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now().UTC(),
		}).Error
}
