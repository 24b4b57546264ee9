package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unit-one/backend/config"
	"unit-one/backend/internal/api/handler"
	"unit-one/backend/internal/api/middleware"
	"unit-one/backend/internal/model"
	"unit-one/backend/pkg/jwt"
	"unit-one/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可以为 nil：此时不检查 Token 黑名单，也不做写入限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		authorized.Use(middleware.RoleAuth(model.RoleAdmin, model.RolePartner, model.RoleManager))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 名册（只读）
			authorized.GET("/roster/:establishmentId", h.Journal.Roster)

			// 日志
			logs := authorized.Group("/logs")
			{
				logs.GET("/monthly", h.Journal.MonthlyLogs)
				logs.POST("", middleware.RateLimit(rdb, cfg.Server.LogRateLimit, time.Minute), h.Journal.Record)
			}

			// 导出
			authorized.GET("/export/journal", h.Export.ExportJournal)
		}
	}

	return r
}
