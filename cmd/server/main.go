package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrcode-platform/internal/analytics"
	"qrcode-platform/internal/config"
	"qrcode-platform/internal/handler"
	"qrcode-platform/internal/middleware"
	"qrcode-platform/internal/registry"
	"qrcode-platform/internal/shortcode"
	"qrcode-platform/internal/tracking"
	"qrcode-platform/pkg/database"
	auth "qrcode-platform/pkg/jwt"
	"qrcode-platform/pkg/logger"
	"qrcode-platform/pkg/redis"

	_ "qrcode-platform/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title QR 码扫码追踪 API
// @version 1.0
// @description 二维码管理、扫码跳转与扫码统计接口
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer func() {
		_ = logger.Logger.Sync()
	}()
	sugaredLogger := logger.Sugar

	db, err := database.Open(cfg.Database)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	if err := database.Migrate(db); err != nil {
		sugaredLogger.Fatalf("数据库迁移失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	rdb, err := redis.NewClient(&redis.Options{
		Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
	})
	switch {
	case err != nil:
		sugaredLogger.Warnf("缓存连接失败，扫码解析将直接读库: %v", err)
	case rdb == nil:
		sugaredLogger.Info("未配置缓存，扫码解析直接读库")
	default:
		sugaredLogger.Info("✅ 缓存连接成功")
	}

	reg := registry.New(db, rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second, sugaredLogger)

	// 初始化并启动 id 生成器
	generator := shortcode.NewGenerator(reg, sugaredLogger)
	generator.Start()

	tracker := tracking.NewTracker(db, tracking.NewAggregator(db, reg, sugaredLogger), cfg.Tracking, sugaredLogger)
	tracker.Start()

	mw := handler.Middlewares{RateLimit: middleware.RateLimit(&cfg.RateLimit)}
	var authHandler *handler.AuthHandler
	if cfg.Auth.Enabled {
		tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
		if err := handler.EnsureAdmin(db, cfg.Auth.AdminPassword, sugaredLogger); err != nil {
			sugaredLogger.Errorf("创建管理员失败: %v", err)
		}
		mw.Auth = middleware.AuthMiddleware(tokenManager)
		mw.Admin = middleware.AdminMiddleware()
		authHandler = handler.NewAuthHandler(db, tokenManager, sugaredLogger)
		sugaredLogger.Info("✅ 后台接口认证已启用")
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router, handler.Handlers{
		Health:    handler.NewHealthHandler(db, rdb),
		Track:     handler.NewTrackHandler(reg, tracker, cfg.Tracking, sugaredLogger),
		ScanStats: handler.NewScanStatsHandler(tracking.NewStats(db), sugaredLogger),
		Analytics: handler.NewAnalyticsHandler(analytics.NewService(db, reg, sugaredLogger), reg, sugaredLogger),
		QRCode:    handler.NewQRCodeHandler(reg, generator, cfg.Server.PublicBaseURL, sugaredLogger),
		Store:     handler.NewStoreHandler(reg, sugaredLogger),
		Auth:      authHandler,
	}, mw)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugaredLogger.Errorf("服务关闭超时: %v", err)
	}

	// 先停止接收请求，再把队列里剩余的扫码写完
	tracker.Stop()
	generator.Stop()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	sugaredLogger.Info("服务已退出")
}
