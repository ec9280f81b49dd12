package assignment

import "time"

// Assignment 车辆-司机派遣 GORM 模型。
// 没有状态字段：是否在岗完全由 end_date 与参考日期的比较决定（见 status 包）。
type Assignment struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	PlateNumber string `gorm:"index;size:20;not null"` // 车辆外键
	DriverID    uint   `gorm:"index;not null"`         // 司机外键
	WorkPlace   string `gorm:"size:100"`
	StartDate   time.Time
	EndDate     *time.Time // 空 = 长期派遣
	GPSPosition string     `gorm:"size:50"`
	// 电子围栏越界次数，非负
	GeofenceViolations int       `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}
