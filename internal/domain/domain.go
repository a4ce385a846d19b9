package domain

import (
	"github.com/yungbote/storefront-backend/internal/domain/auth"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/domain/user"
)

const (
	OrderStatusPending    = commerce.OrderStatusPending
	OrderStatusProcessing = commerce.OrderStatusProcessing
	OrderStatusShipped    = commerce.OrderStatusShipped
	OrderStatusDelivered  = commerce.OrderStatusDelivered
	OrderStatusCancelled  = commerce.OrderStatusCancelled
)

type User = user.User
type UserToken = auth.UserToken

type Product = catalog.Product
type ProductFilter = catalog.ProductFilter

type Cart = commerce.Cart
type CartItem = commerce.CartItem
type Order = commerce.Order
type OrderItem = commerce.OrderItem
type OrderEvent = commerce.OrderEvent
type OrderStatus = commerce.OrderStatus
