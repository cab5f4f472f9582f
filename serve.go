package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"co2-predictor/algo"
	"co2-predictor/cache"
	"co2-predictor/config"
	"co2-predictor/db"
	"co2-predictor/handler"
	"co2-predictor/predictor"
)

// loadService 加载模型和 scaler 并构造推理服务
// 模型加载失败是致命错误; scaler 缺失只在模型需要缩放时才影响预测
func loadService(cfg config.Config) (*predictor.Service, error) {
	m, err := algo.LoadModel(cfg.ModelPath, cfg.ScaledModels)
	if err != nil {
		return nil, fmt.Errorf("加载模型失败: %w", err)
	}
	log.Info().
		Str("path", cfg.ModelPath).
		Str("model", m.TypeName).
		Bool("requires_scaling", m.RequiresScaling).
		Msg("模型加载成功")

	var scaler algo.Scaler
	if cfg.ScalerPath != "" {
		scaler, err = algo.LoadScaler(cfg.ScalerPath)
		if err != nil {
			scaler = nil
			ev := log.Warn()
			if m.RequiresScaling {
				ev = log.Error()
			}
			ev.Err(err).Str("path", cfg.ScalerPath).Msg("scaler 加载失败")
		} else {
			log.Info().Str("path", cfg.ScalerPath).Msg("scaler 加载成功")
		}
	}

	return predictor.NewService(m, scaler), nil
}

// openStore 连接数据库, 未配置时返回 nil
func openStore(cfg config.Config) (*db.Store, error) {
	if !cfg.PersistenceEnabled() {
		return nil, nil
	}
	conn, err := db.Open(cfg.Database())
	if err != nil {
		return nil, err
	}
	return db.NewStore(conn)
}

// openCache 优先使用 Redis, 连接失败时退回进程内 LRU
func openCache(cfg config.Config) cache.Cache {
	if cfg.RedisAddr != "" {
		r := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := r.Ping(ctx)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("使用 Redis 缓存预测结果")
			return r
		}
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis 不可用, 使用进程内缓存")
		_ = r.Close()
	}

	if cfg.CacheSize <= 0 {
		return nil
	}
	lru, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		log.Warn().Err(err).Msg("缓存已禁用")
		return nil
	}
	return lru
}

func runServe(cfg config.Config) error {
	// 1. 加载模型 (只加载一次, 之后只读共享)
	svc, err := loadService(cfg)
	if err != nil {
		return err
	}

	// 2. 数据库 (可选): 连接失败时只提供预测, 不记录历史
	var store handler.Store
	s, err := openStore(cfg)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("数据库不可用, 预测历史将不会被记录")
	case s != nil:
		defer s.Close()
		store = s
	}

	// 3. 组装 handler 和路由
	h := handler.New(svc, store, openCache(cfg), cfg.JWTSecret)
	if err := h.RefreshLocations(context.Background()); err != nil {
		log.Warn().Err(err).Msg("加载参考城市失败")
	}

	opts := handler.RouterOptions{
		StaticDir:      cfg.StaticDir,
		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.RateLimit > 0 {
		opts.Limiter = handler.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer opts.Limiter.Stop()
	}

	r := gin.New()
	if err := handler.NewRouter(r, h, opts); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. 启动服务器
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", svc.ModelName()).Msg("服务器启动中")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("服务器启动失败: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("正在关闭服务器")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}

	log.Info().Msg("服务器已退出")
	return nil
}
