package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f fakeBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(7, "reader", "reader@example.com")
	require.NoError(t, err)
	revoked, err := manager.GenerateToken(8, "gone", "gone@example.com")
	require.NoError(t, err)

	auth := NewAuthMiddleware(manager, fakeBlacklist{revoked: map[string]bool{revoked.AccessToken: true}})

	r := gin.New()
	whoami := func(c *gin.Context) {
		response.Success(c, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	}
	r.GET("/private", auth.RequireAuth(), whoami)
	r.GET("/public", auth.OptionalAuth(), whoami)

	bearer := func(token string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + token}
	}

	t.Run("缺少Token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/private", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decodeCode(t, w))
	})

	t.Run("格式错误", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/private", map[string]string{"Authorization": pair.AccessToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("合法Token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/private", bearer(pair.AccessToken))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"username":"reader"`)
	})

	t.Run("已登出Token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/private", bearer(revoked.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeCode(t, w))
	})

	t.Run("伪造Token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/private", bearer("not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeCode(t, w))
	})

	t.Run("可选登录", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/public", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)

		w = serve(r, http.MethodGet, "/public", bearer("not-a-jwt"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)

		w = serve(r, http.MethodGet, "/public", bearer(pair.AccessToken))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("黑名单查询失败", func(t *testing.T) {
		broken := NewAuthMiddleware(manager, fakeBlacklist{err: apperrors.ErrRedisError.WithCause(errors.New("down"))})
		r := gin.New()
		r.GET("/private", broken.RequireAuth(), whoami)

		w := serve(r, http.MethodGet, "/private", bearer(pair.AccessToken))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apperrors.ErrCodeRedisError, decodeCode(t, w))
	})
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:       true,
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        time.Hour,
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("允许的Origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/books", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "/books", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("拒绝未知Origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/books", map[string]string{"Origin": "http://evil.example"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("无Origin的请求直接放行", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/books", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		rid, _ := c.Get("request_id")
		c.String(http.StatusOK, rid.(string))
	})

	w := serve(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}
