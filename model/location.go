package model

import (
	"fmt"
	"time"
)

// LocationLookup 参考城市 (后台维护, 用于给预测记录标注城市名)
type LocationLookup struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CityName       string    `json:"city_name" gorm:"size:100;uniqueIndex;not null" binding:"required"`
	Latitude       float64   `json:"latitude" binding:"min=-90,max=90"`
	Longitude      float64   `json:"longitude" binding:"min=-180,max=180"`
	Country        string    `json:"country" gorm:"size:100;default:India"`
	Description    string    `json:"description"`
	AvgCO2Emission *float64  `json:"avg_co2_emission"`
	CreatedAt      time.Time `json:"-"`
}

func (l LocationLookup) String() string {
	return fmt.Sprintf("%s, %s", l.CityName, l.Country)
}

// Point 返回城市坐标
func (l LocationLookup) Point() Point {
	return Point{Lat: l.Latitude, Lng: l.Longitude}
}

// TableName 固定表名
func (LocationLookup) TableName() string {
	return "location_lookups"
}
