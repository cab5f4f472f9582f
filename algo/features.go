package algo

import (
	"math"

	"co2-predictor/model"
	"co2-predictor/utils"
)

// FeatureCount 模型输入特征维数
const FeatureCount = 11

// ReferenceCity 计算距离特征用的参考城市
type ReferenceCity struct {
	Name  string
	Point model.Point
}

// ReferenceCities 固定的参考城市表, 顺序即特征顺序
var ReferenceCities = [4]ReferenceCity{
	{Name: "Delhi", Point: model.Point{Lat: 28.6139, Lng: 77.2090}},
	{Name: "Mumbai", Point: model.Point{Lat: 19.0760, Lng: 72.8777}},
	{Name: "Kolkata", Point: model.Point{Lat: 22.5726, Lng: 88.3639}},
	{Name: "Chennai", Point: model.Point{Lat: 13.0827, Lng: 80.2707}},
}

// FeatureNames 特征名称, 与 FeatureVector 下标一一对应
var FeatureNames = [FeatureCount]string{
	"lat", "lon", "lat^2", "lon^2", "lat*lon", "lat^3", "lon^3",
	"dist_delhi", "dist_mumbai", "dist_kolkata", "dist_chennai",
}

// FeatureVector 由经纬度推导出的定长特征向量
type FeatureVector [FeatureCount]float64

// ExtractFeatures 根据经纬度计算特征向量
// [lat, lon, lat², lon², lat·lon, lat³, lon³, 到四个参考城市的距离]
func ExtractFeatures(lat, lon float64) FeatureVector {
	p := model.Point{Lat: lat, Lng: lon}

	fv := FeatureVector{
		lat,
		lon,
		lat * lat,
		lon * lon,
		lat * lon,
		lat * lat * lat,
		lon * lon * lon,
	}
	for i, city := range ReferenceCities {
		fv[7+i] = utils.DegreeDistance(p, city.Point)
	}
	return fv
}

// HasNaN 是否存在 NaN 特征
func (fv FeatureVector) HasNaN() bool {
	for _, v := range fv {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Slice 返回特征的切片副本
func (fv FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, fv[:])
	return out
}
