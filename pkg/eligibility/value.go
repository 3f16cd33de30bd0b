package eligibility

import (
	"strings"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
)

const (
	templatePrefix = "{{"
	templateSuffix = "}}"
)

// RequiredValue 规则要求的能力值：字面量或字段引用
type RequiredValue struct {
	literal string
	path    string
}

// Literal 创建字面量要求值
func Literal(s string) RequiredValue {
	return RequiredValue{literal: s}
}

// FieldReference 创建字段引用要求值
func FieldReference(path string) RequiredValue {
	return RequiredValue{path: path}
}

// ParseRequiredValue 解析 "{{path}}" 形式的单层模板，其余按字面量处理
func ParseRequiredValue(raw string) RequiredValue {
	if len(raw) > len(templatePrefix)+len(templateSuffix) &&
		strings.HasPrefix(raw, templatePrefix) && strings.HasSuffix(raw, templateSuffix) {
		path := strings.TrimSpace(raw[len(templatePrefix) : len(raw)-len(templateSuffix)])
		if path != "" {
			return FieldReference(path)
		}
	}
	return Literal(raw)
}

// IsReference 是否为字段引用
func (v RequiredValue) IsReference() bool {
	return v.path != ""
}

// String 返回原始表示
func (v RequiredValue) String() string {
	if v.IsReference() {
		return templatePrefix + v.path + templateSuffix
	}
	return v.literal
}

// Resolve 求值；引用的字段缺失时返回 UNRESOLVED_TEMPLATE 错误
func (v RequiredValue) Resolve(ec *EvaluationContext) (string, error) {
	if !v.IsReference() {
		return v.literal, nil
	}
	val, present, err := ec.Resolve(v.path)
	if err != nil {
		return "", err
	}
	if !present {
		return "", apperrors.UnresolvedTemplate(v.path)
	}
	return stringify(val), nil
}
