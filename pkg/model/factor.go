package model

import (
	"time"
)

// WorkType 工时类别（封闭集合）
type WorkType string

const (
	WorkCleaning   WorkType = "cleaning"
	WorkFlare      WorkType = "flare"
	WorkMechanical WorkType = "mechanical"
	WorkBlast      WorkType = "blast"
	WorkLining     WorkType = "lining"
	WorkPaint      WorkType = "paint"
	WorkOther      WorkType = "other"
)

// WorkTypes 全部工时类别（固定顺序）
var WorkTypes = []WorkType{
	WorkCleaning, WorkFlare, WorkMechanical, WorkBlast, WorkLining, WorkPaint, WorkOther,
}

// 工时系数类型
const (
	FactorCarType       = "car_type"
	FactorMaterial      = "material"
	FactorCleaningClass = "cleaning_class"
	FactorLining        = "lining"
	FactorSpecial       = "special"
)

// 特殊系数取值
const (
	SpecialNitrogen = "Nitrogen"
	SpecialKosher   = "Kosher"
	SpecialAsbestos = "Asbestos"
)

// WorkHoursFactor 工时系数
// 同一 (factor_type, factor_value, work_type) 可存在多个生效日期，取不晚于当天的最新一条
type WorkHoursFactor struct {
	BaseModel
	FactorType    string    `json:"factor_type" db:"factor_type"`
	FactorValue   string    `json:"factor_value" db:"factor_value"`
	WorkType      WorkType  `json:"work_type" db:"work_type"`
	EffectiveDate time.Time `json:"effective_date" db:"effective_date"`
	BaseHours     float64   `json:"base_hours" db:"base_hours"`
	Multiplier    float64   `json:"multiplier" db:"multiplier"`
}

// IsEffectiveOn 生效日期不晚于指定日期
func (f *WorkHoursFactor) IsEffectiveOn(asOf time.Time) bool {
	return !DateOnly(f.EffectiveDate).After(DateOnly(asOf))
}
