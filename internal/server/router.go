package server

import (
	"molt-core/internal/handler"

	"molt-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Action    *handler.ActionHandler
	Boost     *handler.BoostHandler
	Scan      *handler.ScanHandler
	Stats     *handler.StatsHandler
	Shop      *handler.ShopHandler
	Play      *handler.PlayHandler
	Graveyard *handler.GraveyardHandler
	Assistant *handler.AssistantHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(h Handlers) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware()) // 监控埋点

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // 暴露给 Prometheus
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.POST("/actions/verify", h.Action.Verify)

		api.POST("/boosts", h.Boost.Create)
		api.GET("/boosts", h.Boost.List)

		api.GET("/scan", h.Scan.Scan)

		api.GET("/leaderboard", h.Stats.Leaderboard)
		api.GET("/profile/:fid", h.Stats.Profile)

		api.POST("/shop/purchase", h.Shop.Purchase)

		api.POST("/play", h.Play.Play)

		api.POST("/graveyard", h.Graveyard.Declare)
		api.GET("/graveyard", h.Graveyard.Top)

		api.POST("/assistant", h.Assistant.Chat)
	}

	return r
}
