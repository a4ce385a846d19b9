package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, isAdmin bool) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		IsAdmin:   isAdmin,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name, price string, stock int) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Category:    "general",
		ImageURL:    "https://img.example.com/" + name + ".jpg",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

// SeedCartLine ensures the user's cart and puts one line in it.
func SeedCartLine(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID, qty int) *types.Cart {
	tb.Helper()
	var cart types.Cart
	if err := tx.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&cart).Error; err != nil {
		tb.Fatalf("load cart: %v", err)
	}
	if cart.ID == uuid.Nil {
		cart = types.Cart{ID: uuid.New(), UserID: userID}
		if err := tx.WithContext(ctx).Create(&cart).Error; err != nil {
			tb.Fatalf("seed cart: %v", err)
		}
	}
	item := &types.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed cart item: %v", err)
	}
	return &cart
}

func ProductStock(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID) int {
	tb.Helper()
	var p types.Product
	if err := tx.WithContext(ctx).Unscoped().Where("id = ?", productID).First(&p).Error; err != nil {
		tb.Fatalf("load product: %v", err)
	}
	return p.Stock
}

func CountRows(tb testing.TB, ctx context.Context, tx *gorm.DB, model any) int64 {
	tb.Helper()
	var n int64
	if err := tx.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
