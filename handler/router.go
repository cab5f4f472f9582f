package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions 路由可选项
type RouterOptions struct {
	StaticDir      string       // 为空时不挂载静态文件
	Limiter        *RateLimiter // 为空时预测接口不限流
	TrustedProxies []string     // 为空时忽略 X-Forwarded-For, 客户端 IP 取自连接地址
}

// NewRouter 注册所有路由
func NewRouter(r *gin.Engine, h *Handler, opts RouterOptions) error {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	// 静态文件服务 - 提供前端页面
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "ok",
			"ready":   h.svc.Ready(),
		})
	})

	// 页面
	r.GET("/", Home)
	r.GET("/dashboard", Dashboard)
	r.GET("/about", About)

	api := r.Group("/api")
	{
		predict := api.Group("/predict")
		if opts.Limiter != nil {
			predict.Use(RateLimit(opts.Limiter))
		}
		predict.POST("", h.Predict)
		predict.POST("/", h.Predict)
		predict.POST("/batch", h.PredictBatch)

		api.GET("/model", h.ModelInfo)
		api.GET("/metrics", h.ListMetrics)
		api.GET("/locations", h.ListLocations)
		api.GET("/locations/:name", h.GetLocation)
		api.POST("/login", h.Login)

		// 后台接口 (需要认证)
		admin := api.Group("/admin")
		admin.Use(h.AuthMiddleware())
		{
			admin.GET("/predictions", h.ListPredictions)
			admin.GET("/stats", h.Stats)
			admin.POST("/locations", h.SaveLocation)
		}
	}
	return nil
}
