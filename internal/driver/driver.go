package driver

import "time"

// Driver 是 drivers 表的 GORM 模型。
// id 由库自增分配，创建后稳定不复用；id_number 是对外证件号，全局唯一。
type Driver struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:100;not null"`
	IDNumber    string    `gorm:"uniqueIndex;size:50"`
	Phone       string    `gorm:"size:15"`
	ReportingTo string    `gorm:"size:100"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
