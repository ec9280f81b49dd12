package vehicle

import "time"

// Center 保养中心枚举。
type Center string

const (
	CenterEEP    Center = "EEP"
	CenterMoenco Center = "Moenco"
	CenterOther  Center = "Other"
)

func (t Center) Valid() bool {
	switch t {
	case CenterEEP, CenterMoenco, CenterOther:
		return true
	}
	return false
}

// Maintenance 保养记录，属于车辆（plate_number 外键），一车多条。
type Maintenance struct {
	ID                uint   `gorm:"primaryKey;autoIncrement"`
	PlateNumber       string `gorm:"index;size:20;not null"`
	LastServiceKM     int
	LastServiceDate   *time.Time
	NextServiceKM     int
	NextServiceDate   *time.Time
	MaintenanceCenter Center `gorm:"type:varchar(16)"`
}
