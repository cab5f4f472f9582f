package utils

import (
	"math"

	"co2-predictor/model"
)

// EarthRadius WGS84 参考椭球长半轴 (米)
const EarthRadius = 6378137.0

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// DegreeDistance 经纬度平面上的欧氏距离 (单位: 度)
// 模型训练时的距离特征就是这样算的, 不要换成球面距离
func DegreeDistance(p1, p2 model.Point) float64 {
	dLat := p1.Lat - p2.Lat
	dLng := p1.Lng - p2.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// HaversineDistance Haversine 公式 (直接计算两点间球面距离, 米)
// 用于给预测记录匹配最近的参考城市
func HaversineDistance(p1, p2 model.Point) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lon1 := DegreesToRadians(p1.Lng)
	lat2 := DegreesToRadians(p2.Lat)
	lon2 := DegreesToRadians(p2.Lng)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlon/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// NearestLocation 找到离给定坐标最近且在 maxDist (米) 以内的参考城市
// 没有符合条件的城市时返回 nil
func NearestLocation(p model.Point, locations []model.LocationLookup, maxDist float64) *model.LocationLookup {
	var nearest *model.LocationLookup
	minDist := -1.0

	for i := range locations {
		dist := HaversineDistance(p, locations[i].Point())
		if dist > maxDist {
			continue
		}
		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = &locations[i]
		}
	}

	return nearest
}
