package vehicle

import (
	"strings"
	"time"
)

// VehicleType 车辆类型枚举（持久化为字符串）。
type VehicleType string

const (
	TypePickup  VehicleType = "Pickup"
	TypeV8      VehicleType = "V8"
	TypeHardtop VehicleType = "Hardtop"
	TypeOther   VehicleType = "Other"
)

func (t VehicleType) Valid() bool {
	switch t {
	case TypePickup, TypeV8, TypeHardtop, TypeOther:
		return true
	}
	return false
}

// FuelType 燃料类型枚举。
type FuelType string

const (
	FuelDiesel   FuelType = "Diesel"
	FuelBenzin   FuelType = "Benzin"
	FuelHybrid   FuelType = "Hybrid"
	FuelElectric FuelType = "Electric"
)

func (t FuelType) Valid() bool {
	switch t {
	case FuelDiesel, FuelBenzin, FuelHybrid, FuelElectric:
		return true
	}
	return false
}

// AssignedFor 车辆用途类别枚举。
type AssignedFor string

const (
	AssignedProject      AssignedFor = "Project"
	AssignedRegion       AssignedFor = "Region"
	AssignedCenterOffice AssignedFor = "Center Office"
	AssignedOther        AssignedFor = "Other"
)

func (t AssignedFor) Valid() bool {
	switch t {
	case AssignedProject, AssignedRegion, AssignedCenterOffice, AssignedOther:
		return true
	}
	return false
}

// Vehicle 是 vehicles 表的 GORM 模型。主键为规范化后的车牌号。
type Vehicle struct {
	PlateNumber     string      `gorm:"primaryKey;size:20"`
	Chassis         string      `gorm:"uniqueIndex;size:50;not null"`
	VehicleType     VehicleType `gorm:"type:varchar(16)"`
	Make            string      `gorm:"size:50"`
	Model           string      `gorm:"size:50"`
	Year            string      `gorm:"size:4"`
	FuelType        FuelType    `gorm:"type:varchar(16)"`
	FuelCapacity    float64
	FuelConsumption float64
	LoadingCapacity string      `gorm:"size:100"`
	AssignedFor     AssignedFor `gorm:"type:varchar(16)"`
	CreatedAt       time.Time   `gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime"`
}

// NormalizePlate 车牌号规范化：去空白 + 大写。
// 所有以车牌为键的读写都先经过这里。
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
