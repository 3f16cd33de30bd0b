package eligibility

import (
	"fmt"
	"strings"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
)

// 比较操作符
const (
	OpLessThan       = "lt"
	OpLessOrEqual    = "lte"
	OpGreaterThan    = "gt"
	OpGreaterOrEqual = "gte"
	OpEqual          = "eq"
	OpIn             = "in"
)

func (c CommodityRestrictionCondition) evaluate(ec *EvaluationContext) (bool, string, error) {
	code := ec.commodityCode()
	if code == "" {
		return true, "", nil
	}

	// 无限制记录表示允许
	r := findRestriction(ec, code)
	if r == nil {
		return true, "", nil
	}

	for _, blocked := range c.BlockedCodes {
		if r.RestrictionCode == blocked {
			return false, fmt.Sprintf("Commodity %s is restricted at this shop (%s): %s",
				code, r.RestrictionCode, r.Reason), nil
		}
	}
	return true, "", nil
}

func (c ConditionalCondition) evaluate(ec *EvaluationContext) (bool, string, error) {
	val, ok, err := ec.Resolve(c.CheckField)
	if err != nil {
		return true, "", err
	}

	applies := (c.CheckNotNull && ok) ||
		(c.CheckValue.set && ok && strictEqual(val, c.CheckValue.value))
	if !applies || c.Require == nil {
		return true, "", nil
	}
	return c.Require.check(ec)
}

func (c DisjunctiveCondition) evaluate(ec *EvaluationContext) (bool, string, error) {
	triggered := false
	for _, t := range c.Triggers {
		val, ok, err := ec.Resolve(t.Field)
		if err != nil {
			return true, "", err
		}
		if ok && strictEqual(val, t.Value) {
			triggered = true
			break
		}
	}

	if !triggered || c.Require == nil {
		return true, "", nil
	}
	return c.Require.check(ec)
}

func (c FieldComparisonCondition) evaluate(ec *EvaluationContext) (bool, string, error) {
	if c.CapabilityType != "" && c.MatchField != "" {
		return c.checkCapability(ec)
	}

	val, ok, err := ec.Resolve(c.Field)
	if err != nil {
		return true, "", err
	}
	// 字段缺失，无需检查
	if !ok {
		return true, "", nil
	}

	switch c.Operator {
	case OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return c.compareThreshold(val)
	case OpEqual:
		if strictEqual(val, c.Value.value) {
			return true, "", nil
		}
		return false, fmt.Sprintf("%s = %s does not equal %s", c.Field, stringify(val), stringify(c.Value.value)), nil
	case OpIn:
		list, isList := c.Value.value.([]interface{})
		if !isList {
			return true, "", apperrors.TypeMismatch("value", "list", c.Value.value)
		}
		for _, item := range list {
			if strictEqual(val, item) {
				return true, "", nil
			}
		}
		return false, fmt.Sprintf("%s = %s is not one of %s", c.Field, stringify(val), formatList(list)), nil
	}

	// 未识别的操作符视为通过
	return true, "", nil
}

func (c FieldComparisonCondition) checkCapability(ec *EvaluationContext) (bool, string, error) {
	val, ok, err := ec.Resolve(c.MatchField)
	if err != nil {
		return true, "", err
	}
	if !ok {
		// 匹配字段缺失时没有可比对的能力值，按通过处理
		return true, "", nil
	}

	value := stringify(val)
	if ec.hasCapability(c.CapabilityType, value) {
		return true, "", nil
	}
	return false, capabilityReason(c.CapabilityType, value), nil
}

func (c FieldComparisonCondition) compareThreshold(val interface{}) (bool, string, error) {
	limitSrc := c.Threshold
	if !limitSrc.set {
		limitSrc = c.Value
	}
	limit, ok := toNumber(limitSrc.value)
	if !ok {
		return true, "", apperrors.TypeMismatch("threshold", "number", limitSrc.value)
	}
	actual, ok := toNumber(val)
	if !ok {
		return true, "", apperrors.TypeMismatch(c.Field, "number", val)
	}

	var passed bool
	switch c.Operator {
	case OpLessThan:
		passed = actual < limit
	case OpLessOrEqual:
		passed = actual <= limit
	case OpGreaterThan:
		passed = actual > limit
	case OpGreaterOrEqual:
		passed = actual >= limit
	}
	if passed {
		return true, "", nil
	}

	direction := "exceeds"
	if c.Operator == OpGreaterThan || c.Operator == OpGreaterOrEqual {
		direction = "below"
	}
	return false, fmt.Sprintf("%s = %s %s threshold %s (%s)",
		c.Field, stringify(actual), direction, stringify(limit), c.Operator), nil
}

func (UnknownCondition) evaluate(*EvaluationContext) (bool, string, error) {
	return true, "", nil
}

func (c MalformedCondition) evaluate(*EvaluationContext) (bool, string, error) {
	return true, "", c.Err
}

// check 施加要求：能力要求需有效能力匹配，字段要求需严格相等
func (r *Requirement) check(ec *EvaluationContext) (bool, string, error) {
	if r.IsCapability() {
		value, err := r.CapabilityValue.Resolve(ec)
		if err != nil {
			return true, "", err
		}
		if ec.hasCapability(r.CapabilityType, value) {
			return true, "", nil
		}
		return false, capabilityReason(r.CapabilityType, value), nil
	}

	val, ok, err := ec.Resolve(r.Field)
	if err != nil {
		return true, "", err
	}
	if ok && strictEqual(val, r.Value.value) {
		return true, "", nil
	}
	return false, fmt.Sprintf("Required %s = %s not met", r.Field, stringify(r.Value.value)), nil
}

func capabilityReason(capType, value string) string {
	return fmt.Sprintf("Shop lacks required capability: %s=%s", capType, value)
}

func formatList(items []interface{}) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = stringify(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
