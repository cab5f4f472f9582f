package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"co2-predictor/cache"
	"co2-predictor/model"
	"co2-predictor/predictor"
	"co2-predictor/utils"
)

// cityMatchRadius 预测坐标距参考城市多近时标注城市名 (米)
const cityMatchRadius = 50_000

// PredictRequest 单点预测请求, 经纬度可以是数字或数字字符串
type PredictRequest struct {
	Latitude  any    `json:"latitude"`
	Longitude any    `json:"longitude"`
	CityName  string `json:"city_name"`
}

// BatchRequest 批量预测请求
type BatchRequest struct {
	Locations []predictor.Location `json:"locations"`
}

// BatchItem 批量预测中单个坐标的结果
type BatchItem struct {
	Success bool `json:"success"`
	*model.PredictionResult
	Error string `json:"error,omitempty"`
}

// BatchResponse 批量预测响应
type BatchResponse struct {
	Count   int         `json:"count"`
	Results []BatchItem `json:"results"`
}

// Predict 单点预测接口
func (h *Handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := bindNumbers(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}

	lat, lon, err := predictor.ParseCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.predictCached(c, lat, lon)
	if err != nil {
		writeError(c, err)
		return
	}

	h.record(c, req.CityName, result)
	c.JSON(http.StatusOK, result)
}

// PredictBatch 批量预测接口, 单个坐标失败不影响其他坐标
func (h *Handler) PredictBatch(c *gin.Context) {
	var req BatchRequest
	if err := bindNumbers(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}

	outcomes, err := h.svc.PredictBatch(req.Locations)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]BatchItem, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			items[i] = BatchItem{Error: o.Err.Error()}
			continue
		}
		items[i] = BatchItem{Success: true, PredictionResult: o.Result}
	}

	c.JSON(http.StatusOK, BatchResponse{Count: len(items), Results: items})
}

// ModelInfo 当前模型状态
func (h *Handler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_used": h.svc.ModelName(),
		"ready":      h.svc.Ready(),
		"units":      model.Units,
	})
}

// predictCached 命中缓存直接返回, 否则推理后写入缓存; 缓存异常只记日志
func (h *Handler) predictCached(c *gin.Context, lat, lon float64) (model.PredictionResult, error) {
	if h.cache == nil {
		return h.svc.PredictPoint(lat, lon)
	}

	ctx := c.Request.Context()
	key := cache.PredictionKey(h.svc.CacheID(), lat, lon)
	if cached, ok := h.cache.Get(ctx, key); ok {
		var result model.PredictionResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result, nil
		}
	}

	result, err := h.svc.PredictPoint(lat, lon)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := h.cache.Set(ctx, key, string(data)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("写入预测缓存失败")
		}
	}
	return result, nil
}

// record 保存预测记录 (不影响响应)
func (h *Handler) record(c *gin.Context, cityName string, result model.PredictionResult) {
	if h.store == nil {
		return
	}

	rec := &model.PredictionRecord{
		Latitude:     result.Latitude,
		Longitude:    result.Longitude,
		PredictedCO2: result.PredictedCO2,
		ModelUsed:    result.ModelUsed,
		IPAddress:    optional(c.ClientIP()),
		UserAgent:    optional(c.Request.UserAgent()),
	}
	if cityName != "" {
		rec.CityName = &cityName
	} else if loc := utils.NearestLocation(
		model.Point{Lat: result.Latitude, Lng: result.Longitude},
		h.snapshotLocations(),
		cityMatchRadius,
	); loc != nil {
		rec.CityName = &loc.CityName
	}

	ctx := c.Request.Context()
	if err := h.store.SavePrediction(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("保存预测记录失败")
	}
	if err := h.store.IncrementPredictionCount(ctx, result.ModelUsed); err != nil {
		log.Warn().Err(err).Msg("更新预测次数失败")
	}
}

// bindNumbers 解析请求体, 数字保留为 json.Number
// 溢出 float64 的数字 (如 1e400) 与数字字符串走同一套校验
func bindNumbers(c *gin.Context, v any) error {
	if c.Request.Body == nil {
		return errors.New("empty request body")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
