package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 所有路由需要的处理器。Auth 为 nil 时不注册认证接口。
type Handlers struct {
	Health    *HealthHandler
	Track     *TrackHandler
	ScanStats *ScanStatsHandler
	Analytics *AnalyticsHandler
	QRCode    *QRCodeHandler
	Store     *StoreHandler
	Auth      *AuthHandler
}

// Middlewares 按分组挂载的中间件，为 nil 的项跳过
type Middlewares struct {
	RateLimit gin.HandlerFunc // 认证接口和后台接口
	Auth      gin.HandlerFunc // 后台接口
	Admin     gin.HandlerFunc // 店铺配置、测试二维码
}

// RegisterRoutes 注册业务路由。扫码跳转和健康检查不经过任何中间件，扫码必须总能拿到跳转。
func RegisterRoutes(router *gin.Engine, h Handlers, mw Middlewares) {
	router.GET("/health", h.Health.HealthCheck)
	router.GET("/track/:qr_code_id", h.Track.Track)

	if h.Auth != nil {
		authGroup := router.Group("/auth")
		authGroup.Use(chain(mw.RateLimit)...)
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/register", h.Auth.Register)
			authGroup.GET("/me", chain(mw.Auth, h.Auth.GetCurrentUser)...)
		}
	}

	api := router.Group("")
	api.Use(chain(mw.RateLimit, mw.Auth)...)
	{
		api.GET("/scan-stats", h.ScanStats.ListScanStats)
		api.GET("/scan-stats/:qr_code_id", h.ScanStats.GetScanStats)

		api.GET("/analytics/overview", h.Analytics.Overview)
		api.GET("/analytics/qrcode/:qr_code_id", h.Analytics.QRCodeOverview)

		api.POST("/qr-codes/product", h.QRCode.CreateProductQR)
		api.POST("/qr-codes/category", h.QRCode.CreateCategoryQR)
		api.POST("/qr-codes/homepage", h.QRCode.CreateHomepageQR)
		api.POST("/qr-codes/coupon", h.QRCode.CreateCouponQR)
		api.POST("/qr-codes/custom", h.QRCode.CreateCustomQR)
		api.POST("/qr-codes/test", chain(mw.Admin, h.QRCode.CreateTestQR)...)
		api.GET("/qr-codes/list/:store_hash", h.QRCode.ListQRCodes)
		api.GET("/qr-codes/:id", h.QRCode.GetQRCode)
		api.PUT("/qr-codes/:id", h.QRCode.UpdateQRCode)
		api.DELETE("/qr-codes/:id", h.QRCode.DeleteQRCode)

		api.PUT("/stores/:store_hash", chain(mw.Admin, h.Store.UpsertStore)...)
	}
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
