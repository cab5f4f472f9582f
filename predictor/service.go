// Package predictor 实现坐标 -> CO2 排放强度的推理流程
package predictor

import (
	"fmt"
	"math"

	"co2-predictor/algo"
	"co2-predictor/model"
)

// Service 推理服务
// 启动时构造一次, 之后只读, 可被多个请求并发使用
type Service struct {
	model  *algo.Model
	scaler algo.Scaler
}

// NewService 创建推理服务, scaler 可以为 nil
func NewService(m *algo.Model, scaler algo.Scaler) *Service {
	return &Service{model: m, scaler: scaler}
}

// ModelName 当前加载的模型类型, 未加载时为空
func (s *Service) ModelName() string {
	if s.model == nil {
		return ""
	}
	return s.model.TypeName
}

// CacheID 标识参与推理的模型和 scaler 内容, 替换制品后随之变化
func (s *Service) CacheID() string {
	if s.model == nil {
		return ""
	}
	id := s.model.TypeName
	if s.model.Version != "" {
		id += "@" + s.model.Version
	}
	if v, ok := s.scaler.(interface{ Version() string }); ok && s.model.RequiresScaling {
		id += "+" + v.Version()
	}
	return id
}

// Ready 模型是否可以提供预测
func (s *Service) Ready() bool {
	if s.model == nil {
		return false
	}
	return !s.model.RequiresScaling || s.scaler != nil
}

// Predict 对原始输入 (数值或数字字符串) 做校验并预测
func (s *Service) Predict(rawLat, rawLon any) (model.PredictionResult, error) {
	lat, lon, err := ParseCoordinates(rawLat, rawLon)
	if err != nil {
		return model.PredictionResult{}, err
	}
	return s.PredictPoint(lat, lon)
}

// ParseCoordinates 缺失检查 + 转换为浮点数, 不检查范围
func ParseCoordinates(rawLat, rawLon any) (lat, lon float64, err error) {
	if rawLat == nil || rawLon == nil {
		return 0, 0, newError(MissingInput, "Missing latitude or longitude")
	}

	lat, perr := parseCoordinate("latitude", rawLat)
	if perr != nil {
		return 0, 0, perr
	}
	lon, perr = parseCoordinate("longitude", rawLon)
	if perr != nil {
		return 0, 0, perr
	}
	return lat, lon, nil
}

// PredictPoint 对已解析的坐标做校验并预测
func (s *Service) PredictPoint(lat, lon float64) (model.PredictionResult, error) {
	// 3. NaN / Inf 检查
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return model.PredictionResult{}, newError(NonFiniteInput, "Coordinates cannot be NaN or Infinity")
	}

	// 4. 范围检查
	if !(model.Point{Lat: lat, Lng: lon}).InRange() {
		return model.PredictionResult{}, newError(OutOfRange,
			"Latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	value, err := s.infer(lat, lon)
	if err != nil {
		return model.PredictionResult{}, err
	}

	return model.PredictionResult{
		Latitude:     lat,
		Longitude:    lon,
		PredictedCO2: round4(math.Max(0, value)),
		Units:        model.Units,
		ModelUsed:    s.model.TypeName,
	}, nil
}

// infer 特征计算 + 缩放 + 模型推理, 其中的 panic 也转换为 InferenceFailed
func (s *Service) infer(lat, lon float64) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: InferenceFailed, Msg: "Internal Error", Err: fmt.Errorf("%v", r)}
		}
	}()

	fv := algo.ExtractFeatures(lat, lon)
	// 有限且在范围内的坐标不会算出 NaN, 这里只兜底直接传入 NaN 的调用
	if fv.HasNaN() {
		return 0, newError(FeatureComputationFailed, "Calculation resulted in NaN. Check inputs.")
	}

	if s.model == nil {
		return 0, newError(ModelUnavailable, "Model not loaded on server")
	}

	input := fv.Slice()
	if s.model.RequiresScaling {
		if s.scaler == nil {
			return 0, newError(ScalerUnavailable, "Scaler is required but not loaded")
		}
		if input, err = s.scaler.Transform(input); err != nil {
			return 0, &Error{Kind: InferenceFailed, Msg: "Internal Error", Err: err}
		}
	}

	value, err = s.model.Predict(input)
	if err != nil {
		return 0, &Error{Kind: InferenceFailed, Msg: "Internal Error", Err: err}
	}
	return value, nil
}

// round4 保留 4 位小数
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
