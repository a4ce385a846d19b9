package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CartRepo interface {
	// Ensure returns the user's cart, creating it on first access.
	Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error)
	ListItems(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartItem, error)
	GetItem(dbc dbctx.Context, cartID, productID uuid.UUID) (*types.CartItem, error)
	SetItemQuantity(dbc dbctx.Context, cartID, productID uuid.UUID, qty int) error
	DeleteItem(dbc dbctx.Context, cartID, productID uuid.UUID) (bool, error)
	ClearItems(dbc dbctx.Context, cartID uuid.UUID) (int64, error)
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: baseLog.With("repo", "CartRepo")}
}

func (r *cartRepo) Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	row := &types.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, userID)
}

func (r *cartRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.Cart
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListItems preloads products, including soft-deleted ones so callers can tell
// a vanished product apart from a missing line.
func (r *cartRepo) ListItems(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.CartItem
	if cartID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartRepo) GetItem(dbc dbctx.Context, cartID, productID uuid.UUID) (*types.CartItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.CartItem
	if err := t.WithContext(dbc.Ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartRepo) SetItemQuantity(dbc dbctx.Context, cartID, productID uuid.UUID, qty int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row := &types.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(row).Error
}

func (r *cartRepo) DeleteItem(dbc dbctx.Context, cartID, productID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&types.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) ClearItems(dbc dbctx.Context, cartID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("cart_id = ?", cartID).
		Delete(&types.CartItem{})
	return res.RowsAffected, res.Error
}
