package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ModelMetrics 模型评估指标
type ModelMetrics struct {
	ID               uint           `json:"-" gorm:"primaryKey"`
	ModelName        string         `json:"model_name" gorm:"size:100;uniqueIndex;not null"`
	R2Score          float64        `json:"r2_score"`
	RMSE             float64        `json:"rmse" gorm:"column:rmse"`
	MAE              float64        `json:"mae" gorm:"column:mae"`
	CVR2Mean         float64        `json:"cv_r2_mean" gorm:"column:cv_r2_mean"`
	CVR2Std          float64        `json:"cv_r2_std" gorm:"column:cv_r2_std"`
	TotalPredictions int64          `json:"total_predictions" gorm:"default:0"`
	Features         pq.StringArray `json:"features,omitempty" gorm:"type:text[]"` // 模型输入特征名
	LastUpdated      time.Time      `json:"last_updated" gorm:"autoUpdateTime"`
	CreatedAt        time.Time      `json:"-"`
}

func (m ModelMetrics) String() string {
	return fmt.Sprintf("%s - R²: %.4f", m.ModelName, m.R2Score)
}

// TableName 固定表名
func (ModelMetrics) TableName() string {
	return "model_metrics"
}
