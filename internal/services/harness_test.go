package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	auth     AuthService
	users    UserService
	products ProductService
	carts    CartService
	orders   OrderService
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T, catalogCache cache.CatalogCache) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	cartRepo := repos.NewCartRepo(db, log)
	orderRepo := repos.NewOrderRepo(db, log)
	eventRepo := repos.NewOrderEventRepo(db, log)
	metrics := observability.NewMetrics(time.Minute)

	return &testEnv{
		db:       db,
		log:      log,
		auth:     NewAuthService(db, log, userRepo, tokenRepo, cartRepo, "test-secret", 15*time.Minute, 24*time.Hour),
		users:    NewUserService(db, log, userRepo),
		products: NewProductService(db, log, productRepo, catalogCache),
		carts:    NewCartService(db, log, cartRepo, productRepo),
		orders:   NewOrderService(db, log, orderRepo, eventRepo, cartRepo, productRepo, catalogCache, metrics),
		metrics:  metrics,
	}
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:  u.ID,
		IsAdmin: u.IsAdmin,
	})
}

func (e *testEnv) user(t *testing.T, isAdmin bool) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), e.db, uuid.NewString()+"@example.com", isAdmin)
}

func (e *testEnv) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	return testutil.ProductStock(t, context.Background(), e.db, productID)
}

func dbctxFor(ctx context.Context) dbctx.Context { return dbctx.New(ctx) }
