package predictor

import (
	"fmt"

	"co2-predictor/model"
)

// MaxBatchSize 批量预测的最大坐标数
const MaxBatchSize = 100

// Location 批量请求中的一个坐标, 兼容 lat/lon 简写
type Location struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
	Lat       any `json:"lat,omitempty"`
	Lon       any `json:"lon,omitempty"`
}

func (l Location) coords() (any, any) {
	lat, lon := l.Latitude, l.Longitude
	if lat == nil {
		lat = l.Lat
	}
	if lon == nil {
		lon = l.Lon
	}
	return lat, lon
}

// Outcome 批量预测中单个坐标的结果, Result 与 Err 二选一
type Outcome struct {
	Result *model.PredictionResult
	Err    *Error
}

// PredictBatch 逐个预测, 单个失败不影响其他坐标, 结果与输入顺序一致
func (s *Service) PredictBatch(locations []Location) ([]Outcome, error) {
	if len(locations) == 0 {
		return nil, newError(EmptyBatch, "Locations list cannot be empty.")
	}
	if len(locations) > MaxBatchSize {
		return nil, newError(TooManyLocations, fmt.Sprintf("Maximum %d locations allowed.", MaxBatchSize))
	}

	outcomes := make([]Outcome, len(locations))
	for i, loc := range locations {
		lat, lon := loc.coords()
		result, err := s.Predict(lat, lon)
		if err != nil {
			outcomes[i] = Outcome{Err: asError(err)}
			continue
		}
		outcomes[i] = Outcome{Result: &result}
	}
	return outcomes, nil
}

func asError(err error) *Error {
	if pe, ok := err.(*Error); ok {
		return pe
	}
	return &Error{Kind: InferenceFailed, Msg: "Internal Error", Err: err}
}
