package db

import (
	"context"
	"fmt"

	"co2-predictor/model"
)

// DefaultLocations 初始化时写入的参考城市
var DefaultLocations = []model.LocationLookup{
	{CityName: "Delhi", Latitude: 28.6139, Longitude: 77.2090, Description: "Capital city, major industrial hub"},
	{CityName: "Mumbai", Latitude: 19.0760, Longitude: 72.8777, Description: "Financial capital, industrial center"},
	{CityName: "Kolkata", Latitude: 22.5726, Longitude: 88.3639, Description: "Eastern industrial hub"},
	{CityName: "Chennai", Latitude: 13.0827, Longitude: 80.2707, Description: "Southern metropolitan area"},
	{CityName: "Bangalore", Latitude: 12.9716, Longitude: 77.5946, Description: "IT capital, tech hub"},
	{CityName: "Hyderabad", Latitude: 17.3850, Longitude: 78.4867, Description: "Tech and pharmaceutical hub"},
	{CityName: "Pune", Latitude: 18.5204, Longitude: 73.8567, Description: "Industrial and IT center"},
	{CityName: "Ahmedabad", Latitude: 23.0225, Longitude: 72.5714, Description: "Industrial city in Gujarat"},
}

// DefaultMetrics 初始化时写入的默认模型指标
var DefaultMetrics = model.ModelMetrics{
	ModelName: "XGBoost",
	R2Score:   0.85,
	RMSE:      0.12,
	MAE:       0.08,
	CVR2Mean:  0.83,
	CVR2Std:   0.02,
}

// SeedResult 单条初始化数据的写入结果
type SeedResult struct {
	Name    string
	Created bool
}

// Seed 写入默认参考城市和模型指标, 已存在的不会覆盖
func (s *Store) Seed(ctx context.Context) ([]SeedResult, error) {
	results := make([]SeedResult, 0, len(DefaultLocations)+1)

	for _, def := range DefaultLocations {
		attrs := def
		attrs.Country = "India"

		var loc model.LocationLookup
		tx := s.db.WithContext(ctx).
			Where(model.LocationLookup{CityName: def.CityName}).
			Attrs(attrs).
			FirstOrCreate(&loc)
		if tx.Error != nil {
			return results, fmt.Errorf("初始化参考城市 %s 失败: %w", def.CityName, tx.Error)
		}
		results = append(results, SeedResult{Name: def.CityName, Created: tx.RowsAffected > 0})
	}

	var metrics model.ModelMetrics
	tx := s.db.WithContext(ctx).
		Where(model.ModelMetrics{ModelName: DefaultMetrics.ModelName}).
		Attrs(DefaultMetrics).
		FirstOrCreate(&metrics)
	if tx.Error != nil {
		return results, fmt.Errorf("初始化模型指标失败: %w", tx.Error)
	}
	results = append(results, SeedResult{Name: "Model metrics", Created: tx.RowsAffected > 0})

	return results, nil
}
