package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type stubAuth struct {
	tokens map[string]ctxutil.RequestData
}

func (s *stubAuth) RegisterUser(context.Context, *types.User) error { return nil }
func (s *stubAuth) LoginUser(context.Context, string, string) (string, string, error) {
	return "", "", nil
}
func (s *stubAuth) RefreshUser(context.Context) (string, string, error) { return "", "", nil }
func (s *stubAuth) LogoutUser(context.Context) error                    { return nil }
func (s *stubAuth) GetAccessTTL() time.Duration                         { return time.Minute }

func (s *stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	rd, ok := s.tokens[token]
	if !ok {
		return nil, apierr.Unauthorized("token revoked")
	}
	rd.TokenString = token
	return ctxutil.WithRequestData(ctx, &rd), nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), &stubAuth{tokens: map[string]ctxutil.RequestData{
		"user":  {UserID: uuid.New()},
		"admin": {UserID: uuid.New(), IsAdmin: true},
	}})
	r := gin.New()
	protected := r.Group("/api", am.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
	})
	protected.POST("/products", am.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func call(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter(t)

	rec := call(r, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["code"])
	assert.NotEmpty(t, body["message"])

	rec = call(r, http.MethodGet, "/api/me", "stale")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token revoked")

	rec = call(r, http.MethodGet, "/api/me", "user")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/products", "").Code)
	rec := call(r, http.MethodPost, "/api/products", "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/products", "admin").Code)
}
