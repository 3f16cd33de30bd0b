package model

import (
	"encoding/json"
)

// RuleCategory 资格规则类别
type RuleCategory string

const (
	RuleCategoryCarType       RuleCategory = "car_type"
	RuleCategoryMaterial      RuleCategory = "material"
	RuleCategoryLining        RuleCategory = "lining"
	RuleCategoryCertification RuleCategory = "certification"
	RuleCategoryCommodity     RuleCategory = "commodity"
	RuleCategoryCapacity      RuleCategory = "capacity"
	RuleCategoryNetwork       RuleCategory = "network"
	RuleCategorySpecial       RuleCategory = "special"
	RuleCategoryService       RuleCategory = "service"
)

// IsValid 检查类别是否在枚举范围内
func (c RuleCategory) IsValid() bool {
	switch c {
	case RuleCategoryCarType, RuleCategoryMaterial, RuleCategoryLining,
		RuleCategoryCertification, RuleCategoryCommodity, RuleCategoryCapacity,
		RuleCategoryNetwork, RuleCategorySpecial, RuleCategoryService:
		return true
	}
	return false
}

// EligibilityRule 资格规则（外部配置，不是代码）
type EligibilityRule struct {
	BaseModel
	RuleName     string          `json:"rule_name" db:"rule_name"`
	RuleCategory RuleCategory    `json:"rule_category" db:"rule_category"`
	Condition    json.RawMessage `json:"condition_json" db:"condition_json"`
	Priority     int             `json:"priority" db:"priority"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	IsBlocking   bool            `json:"is_blocking" db:"is_blocking"`
}

// FailedRule 未通过规则的诊断信息
type FailedRule struct {
	RuleID       string       `json:"rule_id"`
	RuleName     string       `json:"rule_name"`
	RuleCategory RuleCategory `json:"rule_category"`
	Reason       string       `json:"reason"`
}
