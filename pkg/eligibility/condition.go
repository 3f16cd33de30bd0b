package eligibility

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// Kind 条件类型
type Kind int

const (
	KindUnknown Kind = iota
	KindCommodityRestriction
	KindConditional
	KindDisjunctive
	KindFieldComparison
	KindMalformed
)

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindCommodityRestriction:
		return "commodity_restriction"
	case KindConditional:
		return "if"
	case KindDisjunctive:
		return "or"
	case KindFieldComparison:
		return "field_comparison"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Condition 解析后的条件（封闭集合，仅本包内实现）
type Condition interface {
	Kind() Kind
	// evaluate 返回是否通过、未通过原因；err 非空时调用方按放行处理
	evaluate(ec *EvaluationContext) (bool, string, error)
}

// optional 区分 JSON 字段缺失/null 与零值
type optional struct {
	set   bool
	value interface{}
}

// UnmarshalJSON 实现 json.Unmarshaler
func (o *optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.set = true
	return nil
}

// document 条件文档的原始结构，任何字段都可能缺失
type document struct {
	Type                  string        `json:"type"`
	Field                 string        `json:"field"`
	Operator              string        `json:"operator"`
	Value                 optional      `json:"value"`
	Threshold             optional      `json:"threshold"`
	Condition             string        `json:"condition"`
	Conditions            []document    `json:"conditions"`
	CheckField            string        `json:"check_field"`
	CheckValue            optional      `json:"check_value"`
	CheckNotNull          bool          `json:"check_not_null"`
	Require               *requireBlock `json:"require"`
	CapabilityType        string        `json:"capability_type"`
	MatchField            string        `json:"match_field"`
	RestrictionCodesBlock []string      `json:"restriction_codes_block"`
}

type requireBlock struct {
	CapabilityType  string   `json:"capability_type"`
	CapabilityValue optional `json:"capability_value"`
	Field           string   `json:"field"`
	Value           optional `json:"value"`
}

// Requirement 条件成立后施加的要求：能力要求或字段要求
type Requirement struct {
	CapabilityType  string
	CapabilityValue RequiredValue
	Field           string
	Value           optional
}

// IsCapability 是否为能力要求
func (r *Requirement) IsCapability() bool {
	return r.CapabilityType != ""
}

// CommodityRestrictionCondition 货品限制检查
type CommodityRestrictionCondition struct {
	BlockedCodes []string
}

// ConditionalCondition 单触发条件（if）
type ConditionalCondition struct {
	CheckField   string
	CheckValue   optional
	CheckNotNull bool
	Require      *Requirement
}

// Trigger 析取条件中的一个触发项
type Trigger struct {
	Field string
	Value interface{}
}

// DisjunctiveCondition 析取触发条件（or）
type DisjunctiveCondition struct {
	Triggers []Trigger
	Require  *Requirement
}

// FieldComparisonCondition 字段比较或能力匹配
type FieldComparisonCondition struct {
	Field     string
	Operator  string
	Value     optional
	Threshold optional

	CapabilityType string
	MatchField     string
}

// UnknownCondition 无法识别的文档结构，总是通过
type UnknownCondition struct{}

// MalformedCondition 解析失败的文档，评估时报告解析错误
type MalformedCondition struct {
	Err error
}

func (CommodityRestrictionCondition) Kind() Kind { return KindCommodityRestriction }
func (ConditionalCondition) Kind() Kind { return KindConditional }
func (DisjunctiveCondition) Kind() Kind { return KindDisjunctive }
func (FieldComparisonCondition) Kind() Kind { return KindFieldComparison }
func (UnknownCondition) Kind() Kind { return KindUnknown }
func (MalformedCondition) Kind() Kind { return KindMalformed }

// ParseCondition 将条件文档解析为条件类型，按固定顺序匹配，先匹配者优先
// 解析失败不返回错误，而是返回 MalformedCondition
func ParseCondition(raw json.RawMessage) Condition {
	if len(raw) == 0 {
		return UnknownCondition{}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return MalformedCondition{Err: apperrors.MalformedCondition(err)}
	}

	cond, err := fromDocument(&doc)
	if err != nil {
		return MalformedCondition{Err: apperrors.MalformedCondition(err)}
	}
	return cond
}

func fromDocument(doc *document) (Condition, error) {
	switch {
	case doc.Type == "commodity_restriction":
		blocked := doc.RestrictionCodesBlock
		if len(blocked) == 0 {
			blocked = []string{model.RestrictionBlocked}
		}
		return CommodityRestrictionCondition{BlockedCodes: blocked}, nil

	case doc.Condition == "if":
		if doc.CheckField == "" {
			return nil, fmt.Errorf("if condition requires check_field")
		}
		req, err := parseRequirement(doc.Require)
		if err != nil {
			return nil, err
		}
		return ConditionalCondition{
			CheckField:   doc.CheckField,
			CheckValue:   doc.CheckValue,
			CheckNotNull: doc.CheckNotNull,
			Require:      req,
		}, nil

	case doc.Condition == "or":
		triggers := make([]Trigger, 0, len(doc.Conditions))
		for i, sub := range doc.Conditions {
			if sub.Field == "" {
				return nil, fmt.Errorf("or condition #%d requires field", i)
			}
			triggers = append(triggers, Trigger{Field: sub.Field, Value: sub.Value.value})
		}
		req, err := parseRequirement(doc.Require)
		if err != nil {
			return nil, err
		}
		return DisjunctiveCondition{Triggers: triggers, Require: req}, nil

	case doc.Field != "" && doc.Operator != "":
		return FieldComparisonCondition{
			Field:          doc.Field,
			Operator:       doc.Operator,
			Value:          doc.Value,
			Threshold:      doc.Threshold,
			CapabilityType: doc.CapabilityType,
			MatchField:     doc.MatchField,
		}, nil
	}

	return UnknownCondition{}, nil
}

func parseRequirement(block *requireBlock) (*Requirement, error) {
	if block == nil {
		return nil, nil
	}

	req := &Requirement{
		CapabilityType: block.CapabilityType,
		Field:          block.Field,
		Value:          block.Value,
	}

	if req.IsCapability() {
		if !block.CapabilityValue.set {
			return nil, fmt.Errorf("require.capability_type %q has no capability_value", block.CapabilityType)
		}
		if s, ok := block.CapabilityValue.value.(string); ok {
			req.CapabilityValue = ParseRequiredValue(s)
		} else {
			req.CapabilityValue = Literal(stringify(block.CapabilityValue.value))
		}
		return req, nil
	}

	if req.Field == "" {
		// 空 require 视为无要求
		return nil, nil
	}
	return req, nil
}
