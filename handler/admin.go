package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"co2-predictor/db"
	"co2-predictor/model"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ListPredictions 分页查看预测历史 (需要登录)
func (h *Handler) ListPredictions(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	limit := queryInt(c, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ctx := c.Request.Context()
	records, err := h.store.ListPredictions(ctx, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("list predictions")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load predictions"})
		return
	}
	total, err := h.store.CountPredictions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("count predictions")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to count predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   total,
		"limit":   limit,
		"offset":  offset,
		"results": records,
	})
}

// Stats 预测历史汇总 (需要登录)
func (h *Handler) Stats(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("prediction stats")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListMetrics 模型评估指标
func (h *Handler) ListMetrics(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	metrics, err := h.store.ListMetrics(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list metrics")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(metrics),
		"metrics": metrics,
	})
}

// ListLocations 参考城市列表
func (h *Handler) ListLocations(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	locations, err := h.store.ListLocations(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list locations")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load locations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(locations),
		"locations": locations,
	})
}

// GetLocation 按城市名查询
func (h *Handler) GetLocation(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	loc, err := h.store.GetLocation(c.Request.Context(), c.Param("name"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Location not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get location")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load location"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

// SaveLocation 新增或更新参考城市 (需要登录)
func (h *Handler) SaveLocation(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	var loc model.LocationLookup
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid location: " + err.Error()})
		return
	}
	loc.ID = 0 // 按城市名 upsert, 不接受客户端指定主键
	if loc.Country == "" {
		loc.Country = "India"
	}

	ctx := c.Request.Context()
	if err := h.store.UpsertLocation(ctx, &loc); err != nil {
		log.Error().Err(err).Msg("save location")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to save location"})
		return
	}
	if err := h.RefreshLocations(ctx); err != nil {
		log.Warn().Err(err).Msg("刷新参考城市快照失败")
	}

	c.JSON(http.StatusCreated, loc)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
