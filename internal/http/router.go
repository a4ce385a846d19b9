package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler
	ProductHandler *httpH.ProductHandler
	CartHandler    *httpH.CartHandler
	OrderHandler   *httpH.OrderHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		// Catalog (public reads)
		if cfg.ProductHandler != nil {
			api.GET("/products", cfg.ProductHandler.List)
			api.GET("/products/:id", cfg.ProductHandler.Get)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		}

		// Cart
		if cfg.CartHandler != nil {
			protected.GET("/cart", cfg.CartHandler.Get)
			protected.DELETE("/cart", cfg.CartHandler.Clear)
			protected.POST("/cart/items", cfg.CartHandler.AddItem)
			protected.PUT("/cart/items/:product_id", cfg.CartHandler.UpdateItem)
			protected.DELETE("/cart/items/:product_id", cfg.CartHandler.RemoveItem)
		}

		// Orders
		if cfg.OrderHandler != nil {
			protected.POST("/orders", cfg.OrderHandler.Create)
			protected.GET("/orders", cfg.OrderHandler.List)
			protected.GET("/orders/user/:id", cfg.OrderHandler.ListForUser)
			protected.GET("/orders/:id", cfg.OrderHandler.Get)
			protected.PUT("/orders/:id", cfg.OrderHandler.Update)
			protected.POST("/orders/:id/cancel", cfg.OrderHandler.Cancel)
			protected.GET("/orders/:id/events", cfg.OrderHandler.Events)
		}
	}

	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	{
		if cfg.ProductHandler != nil {
			admin.POST("/products", cfg.ProductHandler.Create)
			admin.PUT("/products/:id", cfg.ProductHandler.Update)
			admin.DELETE("/products/:id", cfg.ProductHandler.Delete)
		}
		if cfg.UserHandler != nil {
			admin.PUT("/admin/users/:id/role", cfg.UserHandler.SetRole)
		}
	}

	return r
}
