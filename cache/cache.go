// Package cache 缓存序列化后的预测结果
package cache

import (
	"context"
	"fmt"
	"strconv"
)

// Cache 预测结果缓存
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// PredictionKey 生成缓存键: 模型标识 (类型 + 制品摘要) + 规范化后的坐标
func PredictionKey(modelID string, lat, lon float64) string {
	return fmt.Sprintf("co2:%s:%s,%s", modelID,
		strconv.FormatFloat(lat, 'g', -1, 64),
		strconv.FormatFloat(lon, 'g', -1, 64))
}
