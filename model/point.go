package model

// Point 代表一个经纬度点 (WGS84)
type Point struct {
	Lat float64 // 纬度
	Lng float64 // 经度
}

// 坐标合法范围
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// InRange 判断坐标是否落在合法的经纬度范围内
func (p Point) InRange() bool {
	return p.Lat >= MinLatitude && p.Lat <= MaxLatitude &&
		p.Lng >= MinLongitude && p.Lng <= MaxLongitude
}
