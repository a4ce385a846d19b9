package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	User    services.UserService
	Product services.ProductService
	Cart    services.CartService
	Order   services.OrderService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:    services.NewAuthService(db, log, r.User, r.UserToken, r.Cart, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:    services.NewUserService(db, log, r.User),
		Product: services.NewProductService(db, log, r.Product, c.CatalogCache),
		Cart:    services.NewCartService(db, log, r.Cart, r.Product),
		Order:   services.NewOrderService(db, log, r.Order, r.OrderEvent, r.Cart, r.Product, c.CatalogCache, metrics),
	}
}
