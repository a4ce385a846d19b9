package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storefront-backend/internal/domain"
	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/services"
)

type apiHarness struct {
	t       *testing.T
	db      *gorm.DB
	engine  *gin.Engine
	users   services.UserService
	metrics *observability.Metrics
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	cartRepo := repos.NewCartRepo(db, log)
	orderRepo := repos.NewOrderRepo(db, log)
	eventRepo := repos.NewOrderEventRepo(db, log)
	catalogCache := cache.NewNopCatalogCache()
	metrics := observability.NewMetrics(time.Minute)

	authService := services.NewAuthService(db, log, userRepo, tokenRepo, cartRepo, "router-secret", 15*time.Minute, time.Hour)
	userService := services.NewUserService(db, log, userRepo)

	engine := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService),
		AuthHandler:    httpH.NewAuthHandler(log, authService),
		UserHandler:    httpH.NewUserHandler(log, userService),
		ProductHandler: httpH.NewProductHandler(log, services.NewProductService(db, log, productRepo, catalogCache)),
		CartHandler:    httpH.NewCartHandler(log, services.NewCartService(db, log, cartRepo, productRepo)),
		OrderHandler: httpH.NewOrderHandler(log, services.NewOrderService(
			db, log, orderRepo, eventRepo, cartRepo, productRepo, catalogCache, metrics,
		)),
		HealthHandler: httpH.NewHealthHandler(db),
	})
	return &apiHarness{t: t, db: db, engine: engine, users: userService, metrics: metrics}
}

func (h *apiHarness) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// signup registers and logs in a user, returning the access token.
func (h *apiHarness) signup(email string, admin bool) string {
	h.t.Helper()
	rec, _ := h.do(http.MethodPost, "/api/register", "", map[string]string{
		"email": email, "password": "secret-pw", "first_name": "Ada", "last_name": "Lovelace",
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	if admin {
		_, err := h.users.PromoteByEmail(context.Background(), email)
		require.NoError(h.t, err)
	}
	rec, body := h.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "secret-pw"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := body["access_token"].(string)
	require.NotEmpty(h.t, token)
	return token
}

func TestRouter_Healthcheck(t *testing.T) {
	h := newAPIHarness(t)
	rec, _ := h.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_OrderLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	admin := h.signup("admin@example.com", true)
	buyer := h.signup("buyer@example.com", false)
	other := h.signup("other@example.com", false)

	rec, body := h.do(http.MethodPost, "/api/products", buyer, map[string]any{"name": "Mug", "price": "10.00", "stock": 5, "category": "kitchen"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", body["code"])

	rec, body = h.do(http.MethodPost, "/api/products", admin, map[string]any{"name": "Mug", "price": "10.00", "stock": 5, "category": "kitchen"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := body["product"].(map[string]any)["id"].(string)
	assert.Equal(t, 10.0, body["product"].(map[string]any)["price"])
	assert.Contains(t, rec.Body.String(), `"price":10.00`)

	rec, _ = h.do(http.MethodPost, "/api/cart/items", buyer, map[string]any{"product_id": productID, "quantity": 6})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec, body = h.do(http.MethodPost, "/api/cart/items", buyer, map[string]any{"product_id": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := body["cart"].(map[string]any)
	assert.Equal(t, 30.0, cart["total"])
	assert.Equal(t, 30.0, cart["items"].([]any)[0].(map[string]any)["subtotal"])
	assert.Contains(t, rec.Body.String(), `"total":30.00`)

	rec, body = h.do(http.MethodPost, "/api/orders", buyer, map[string]string{"shipping_address": "123 Main Street"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 30.0, body["total_amount"], "total=%v", body["total_amount"])
	assert.Contains(t, rec.Body.String(), `"total_amount":30.00`)
	line := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, 10.0, line["price"])
	assert.Equal(t, 30.0, line["subtotal"])
	assert.Equal(t, "pending", body["status"])
	orderID := body["id"].(string)

	rec, body = h.do(http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["product"].(map[string]any)["stock"])

	rec, body = h.do(http.MethodGet, "/api/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, body["message"])

	rec, _ = h.do(http.MethodGet, "/api/orders/"+orderID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = h.do(http.MethodPut, "/api/orders/"+orderID, buyer, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = h.do(http.MethodPost, "/api/orders/"+orderID+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled", body["status"])

	rec, body = h.do(http.MethodPost, "/api/orders/"+orderID+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_state_transition", body["code"])

	rec, body = h.do(http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, body["product"].(map[string]any)["stock"])

	rec, body = h.do(http.MethodGet, "/api/orders/"+orderID+"/events", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["events"], 2)

	rec, body = h.do(http.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["orders"], 1)

	assert.EqualValues(t, 1, h.metrics.OrdersPlaced())
}

func TestRouter_InsufficientStockRejected(t *testing.T) {
	h := newAPIHarness(t)
	buyer := h.signup("buyer@example.com", false)
	p := testutil.SeedProduct(t, context.Background(), h.db, "Lamp", "10.00", 2)

	rec, _ := h.do(http.MethodPost, "/api/cart/items", buyer, map[string]any{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// stock drops below the cart quantity before checkout
	require.NoError(t, h.db.Model(p).Update("stock", 1).Error)

	rec, body := h.do(http.MethodPost, "/api/orders", buyer, map[string]string{"shipping_address": "123 Main Street"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient_stock", body["code"])
	assert.Equal(t, 1, testutil.ProductStock(t, context.Background(), h.db, p.ID))

	rec, body = h.do(http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["cart"].(map[string]any)["items"], 1)
}

func TestRouter_RegisterValidatesBody(t *testing.T) {
	h := newAPIHarness(t)

	for name, req := range map[string]map[string]string{
		"bad email":     {"email": "not-an-email", "password": "secret-pw", "first_name": "Ada", "last_name": "Lovelace"},
		"missing email": {"password": "secret-pw", "first_name": "Ada", "last_name": "Lovelace"},
		"missing name":  {"email": "ada@example.com", "password": "secret-pw", "last_name": "Lovelace"},
	} {
		rec, body := h.do(http.MethodPost, "/api/register", "", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "validation_error", body["code"], name)
	}
	assert.EqualValues(t, 0, testutil.CountRows(t, context.Background(), h.db, &types.User{}))

	rec, _ := h.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AuthErrors(t *testing.T) {
	h := newAPIHarness(t)

	rec, body := h.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["code"])

	rec, _ = h.do(http.MethodPost, "/api/login", "", map[string]string{"email": "nobody@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := h.signup("me@example.com", false)
	rec, body = h.do(http.MethodPatch, "/api/me", token, map[string]string{"first_name": "Grace"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Grace", body["me"].(map[string]any)["first_name"])

	rec, _ = h.do(http.MethodGet, "/api/orders/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
