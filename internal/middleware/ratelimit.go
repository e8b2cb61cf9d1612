package middleware

import (
	"net/http"
	"strings"
	"time"

	"qrcode-platform/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 全局限流中间件，requests_per_minute 换算为令牌补充间隔
func RateLimit(limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled || limitConfig.Requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := int(limitConfig.Burst)
	if burst <= 0 {
		burst = 1
	}
	// rate.Limiter 本身是并发安全的
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(limitConfig.Requests)), burst)

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
