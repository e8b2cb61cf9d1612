package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"qrcode-platform/internal/config"
	"qrcode-platform/internal/model"
	auth "qrcode-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(&config.Limit{Enabled: true, Requests: 60, Burst: 2, SkipPaths: []string{"/track/"}}))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/track/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/api", nil).Code)

	// 跳过的路径不受限流影响
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/track/abc", nil).Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(&config.Limit{Enabled: false}))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api", nil).Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewManager("test-secret", "qrcode-platform", 1)
	r := gin.New()
	r.Use(AuthMiddleware(manager))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"store_hash": c.GetString("store_hash")})
	})
	admin := r.Group("/admin", AdminMiddleware())
	admin.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer bad"}).Code)

	token, err := manager.GenerateToken(2, "merchant", model.RoleMerchant, "abc")
	require.NoError(t, err)
	w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"store_hash":"abc"}`, w.Body.String())
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token}).Code)

	token, err = manager.GenerateToken(1, "admin", model.RoleAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token}).Code)
}

func TestGinZapRecovery(t *testing.T) {
	r := gin.New()
	r.Use(GinZapRecovery(zap.NewNop(), true), GinZapLogger(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "服务器内部错误")
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/ok", nil).Code)
}
