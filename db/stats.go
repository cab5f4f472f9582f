package db

import (
	"context"
	"fmt"
)

// PredictionStats 预测记录的汇总报表
type PredictionStats struct {
	Total   int64        `db:"total" json:"total"`
	Last24h int64        `db:"last_24h" json:"last_24h"`
	Mean    float64      `db:"mean" json:"mean"`
	Min     float64      `db:"min" json:"min"`
	Max     float64      `db:"max" json:"max"`
	ByModel []ModelCount `db:"-" json:"by_model"`
}

// ModelCount 各模型的预测次数
type ModelCount struct {
	ModelUsed string `db:"model_used" json:"model_used"`
	Count     int64  `db:"count" json:"count"`
}

const statsQuery = `
	SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '24 hours') AS last_24h,
		COALESCE(AVG(predicted_co2), 0) AS mean,
		COALESCE(MIN(predicted_co2), 0) AS min,
		COALESCE(MAX(predicted_co2), 0) AS max
	FROM prediction_records`

const byModelQuery = `
	SELECT model_used, COUNT(*) AS count
	FROM prediction_records
	GROUP BY model_used
	ORDER BY count DESC`

// Stats 汇总预测历史
func (s *Store) Stats(ctx context.Context) (*PredictionStats, error) {
	var st PredictionStats
	if err := s.sql.GetContext(ctx, &st, statsQuery); err != nil {
		return nil, fmt.Errorf("failed to query prediction stats: %w", err)
	}
	if err := s.sql.SelectContext(ctx, &st.ByModel, byModelQuery); err != nil {
		return nil, fmt.Errorf("failed to query per-model counts: %w", err)
	}
	return &st, nil
}
