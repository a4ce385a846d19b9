package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Product    repos.ProductRepo
	Cart       repos.CartRepo
	Order      repos.OrderRepo
	OrderEvent repos.OrderEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Product:    repos.NewProductRepo(db, log),
		Cart:       repos.NewCartRepo(db, log),
		Order:      repos.NewOrderRepo(db, log),
		OrderEvent: repos.NewOrderEventRepo(db, log),
	}
}
