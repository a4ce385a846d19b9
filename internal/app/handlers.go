package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Handlers struct {
	Auth    *httpH.AuthHandler
	User    *httpH.UserHandler
	Product *httpH.ProductHandler
	Cart    *httpH.CartHandler
	Order   *httpH.OrderHandler
	Health  *httpH.HealthHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    httpH.NewAuthHandler(log, s.Auth),
		User:    httpH.NewUserHandler(log, s.User),
		Product: httpH.NewProductHandler(log, s.Product),
		Cart:    httpH.NewCartHandler(log, s.Cart),
		Order:   httpH.NewOrderHandler(log, s.Order),
		Health:  httpH.NewHealthHandler(db),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Auth)}
}
