package model

import "time"

// Units 预测结果的单位
const Units = "kg CO2/kWh"

// PredictionResult 单次预测的返回结构 (不落库)
type PredictionResult struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PredictedCO2 float64 `json:"predicted_co2_emission"` // 保留 4 位小数, 且 >= 0
	Units        string  `json:"units"`
	ModelUsed    string  `json:"model_used"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// PredictionRecord 预测历史记录
type PredictionRecord struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Latitude        float64   `json:"latitude" gorm:"not null;check:latitude >= -90 AND latitude <= 90"`
	Longitude       float64   `json:"longitude" gorm:"not null;check:longitude >= -180 AND longitude <= 180"`
	PredictedCO2    float64   `json:"predicted_co2" gorm:"column:predicted_co2;not null"`
	CityName        *string   `json:"city_name" gorm:"size:100"`
	ConfidenceScore float64   `json:"confidence_score" gorm:"default:0"`
	ModelUsed       string    `json:"model_used" gorm:"size:100;index"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
	IPAddress       *string   `json:"-" gorm:"size:45"`
	UserAgent       *string   `json:"-"`
}

// TableName 固定表名
func (PredictionRecord) TableName() string {
	return "prediction_records"
}
