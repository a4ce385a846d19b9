package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type OrderRepo interface {
	// Create inserts the order row and its items; associations are never upserted.
	Create(dbc dbctx.Context, order *types.Order) error
	GetByID(dbc dbctx.Context, orderID uuid.UUID) (*types.Order, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error)
	ListAll(dbc dbctx.Context) ([]*types.Order, error)
	// TransitionStatus flips status only when the current status is one of from.
	TransitionStatus(dbc dbctx.Context, orderID uuid.UUID, from []types.OrderStatus, to types.OrderStatus) (bool, error)
	// UpdateShippingAddress only touches pending orders.
	UpdateShippingAddress(dbc dbctx.Context, orderID uuid.UUID, address string) (bool, error)
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (r *orderRepo) Create(dbc dbctx.Context, order *types.Order) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if order == nil {
		return nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for _, it := range order.Items {
		it.OrderID = order.ID
	}
	return t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&order.Items).Error
}

func (r *orderRepo) withItems(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *orderRepo) GetByID(dbc dbctx.Context, orderID uuid.UUID) (*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if orderID == uuid.Nil {
		return nil, nil
	}
	var row types.Order
	if err := r.withItems(t.WithContext(dbc.Ctx)).
		Where("id = ?", orderID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *orderRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.Order
	if userID == uuid.Nil {
		return results, nil
	}
	if err := r.withItems(t.WithContext(dbc.Ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) ListAll(dbc dbctx.Context) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.Order
	if err := r.withItems(t.WithContext(dbc.Ctx)).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) TransitionStatus(dbc dbctx.Context, orderID uuid.UUID, from []types.OrderStatus, to types.OrderStatus) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if orderID == uuid.Nil || len(from) == 0 {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Where("id = ? AND status IN ?", orderID, commerce.StatusStrings(from...)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) UpdateShippingAddress(dbc dbctx.Context, orderID uuid.UUID, address string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Where("id = ? AND status = ?", orderID, string(commerce.OrderStatusPending)).
		Updates(map[string]any{
			"shipping_address": address,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
