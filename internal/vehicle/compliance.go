package vehicle

import "time"

// InsuranceType 保险类型枚举。
type InsuranceType string

const (
	InsuranceFull    InsuranceType = "Fully Insured"
	InsurancePartial InsuranceType = "Partial"
)

func (t InsuranceType) Valid() bool {
	switch t {
	case InsuranceFull, InsurancePartial:
		return true
	}
	return false
}

// SafetyRating 安全审计结论枚举。
type SafetyRating string

const (
	SafetySafe    SafetyRating = "Safe"
	SafetyFair    SafetyRating = "Fair"
	SafetyNotSafe SafetyRating = "Not Safe"
)

func (t SafetyRating) Valid() bool {
	switch t {
	case SafetySafe, SafetyFair, SafetyNotSafe:
		return true
	}
	return false
}

// YesNo 是/否枚举。
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

func (t YesNo) Valid() bool {
	return t == Yes || t == No
}

// Compliance 合规记录，与车辆一对一（主键即车牌号）。
// 日期字段可空：未录入与已过期是不同状态。
type Compliance struct {
	PlateNumber        string        `gorm:"primaryKey;size:20"`
	InsuranceType      InsuranceType `gorm:"type:varchar(16)"`
	InsuranceDate      *time.Time
	YearlyInspection   YesNo `gorm:"type:varchar(4)"`
	InspectionDate     *time.Time
	SafetyAudit        SafetyRating `gorm:"type:varchar(10)"`
	UtilizationHistory string       `gorm:"type:text"`
	AccidentHistory    string       `gorm:"type:text"`
}
