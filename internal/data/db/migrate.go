package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Catalog
		&types.Product{},

		// Cart
		&types.Cart{},
		&types.CartItem{},

		// Orders
		&types.Order{},
		&types.OrderItem{},
		&types.OrderEvent{},
	)
}
