package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"co2-predictor/cache"
	"co2-predictor/db"
	"co2-predictor/model"
	"co2-predictor/predictor"
)

// Store handler 依赖的持久化能力, 由 db.Store 实现
type Store interface {
	SavePrediction(ctx context.Context, rec *model.PredictionRecord) error
	IncrementPredictionCount(ctx context.Context, modelName string) error
	ListPredictions(ctx context.Context, limit, offset int) ([]model.PredictionRecord, error)
	CountPredictions(ctx context.Context) (int64, error)
	ListMetrics(ctx context.Context) ([]model.ModelMetrics, error)
	ListLocations(ctx context.Context) ([]model.LocationLookup, error)
	GetLocation(ctx context.Context, name string) (*model.LocationLookup, error)
	UpsertLocation(ctx context.Context, loc *model.LocationLookup) error
	FindUser(ctx context.Context, username string) (*model.User, error)
	Stats(ctx context.Context) (*db.PredictionStats, error)
}

// Handler 所有 HTTP 接口共享的依赖
// store 和 cache 可以为 nil: 不落库 / 不缓存
type Handler struct {
	svc       *predictor.Service
	store     Store
	cache     cache.Cache
	jwtSecret []byte

	mu        sync.RWMutex
	locations []model.LocationLookup // 参考城市快照, 用于给预测记录标注城市
}

// New 创建 Handler
func New(svc *predictor.Service, store Store, c cache.Cache, jwtSecret string) *Handler {
	return &Handler{
		svc:       svc,
		store:     store,
		cache:     c,
		jwtSecret: []byte(jwtSecret),
	}
}

// RefreshLocations 从数据库重新加载参考城市快照
func (h *Handler) RefreshLocations(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	locations, err := h.store.ListLocations(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.locations = locations
	h.mu.Unlock()
	return nil
}

func (h *Handler) snapshotLocations() []model.LocationLookup {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.locations
}

// requireStore 未配置数据库时返回 503
func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Persistence is not configured"})
		return false
	}
	return true
}

// writeError 按错误分类输出 400 / 500
func writeError(c *gin.Context, err error) {
	kind := predictor.KindOf(err)
	status := kind.Status()
	if status >= 500 {
		log.Error().Err(err).Str("kind", kind.String()).Msg("prediction failed")
	}
	c.JSON(status, model.ErrorResponse{Error: err.Error()})
}
