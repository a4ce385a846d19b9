package commerce

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type OrderEventRepo interface {
	Create(dbc dbctx.Context, events []*types.OrderEvent) error
	ListByOrderID(dbc dbctx.Context, orderID uuid.UUID) ([]*types.OrderEvent, error)
}

type orderEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderEventRepo(db *gorm.DB, baseLog *logger.Logger) OrderEventRepo {
	return &orderEventRepo{db: db, log: baseLog.With("repo", "OrderEventRepo")}
}

func (r *orderEventRepo) Create(dbc dbctx.Context, events []*types.OrderEvent) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(events) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Create(&events).Error
}

func (r *orderEventRepo) ListByOrderID(dbc dbctx.Context, orderID uuid.UUID) ([]*types.OrderEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.OrderEvent
	if orderID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
