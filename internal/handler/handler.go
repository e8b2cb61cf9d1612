// Package handler 提供 HTTP 接口。
package handler

import (
	"context"
	"net/http"
	"time"

	"qrcode-platform/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler 健康检查
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthCheck godoc
// @Summary 健康检查
// @Tags System
// @Produce  json
// @Success 200 {object} map[string]interface{} "服务正常"
// @Failure 503 {object} map[string]interface{} "数据库不可用"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "healthy", "timestamp": time.Now().Unix(), "database": "ok"}
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["status"] = "unhealthy"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	// 缓存不可用时服务降级为直接读库，不影响健康状态
	switch {
	case h.redis == nil:
		status["cache"] = "disabled"
	case h.redis.Ping(ctx).Err() != nil:
		status["cache"] = "degraded"
	default:
		status["cache"] = "ok"
	}
	c.JSON(code, status)
}

// respondError 统一的错误响应
func respondError(c *gin.Context, code int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	c.JSON(code, body)
}

// storeAllowed 商户令牌只能访问自己绑定的店铺，管理员和未启用认证时不受限制
func storeAllowed(c *gin.Context, storeHash string) bool {
	if c.GetString("role") != model.RoleMerchant || c.GetString("store_hash") == storeHash {
		return true
	}
	respondError(c, http.StatusForbidden, "无权访问该店铺的数据", nil)
	return false
}
