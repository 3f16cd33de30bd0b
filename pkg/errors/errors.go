// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"

	// 规则引擎相关（单条规则内部错误，按放行处理）
	CodeMalformedCondition Code = "MALFORMED_CONDITION"
	CodeUnknownField       Code = "UNKNOWN_FIELD"
	CodeTypeMismatch       Code = "TYPE_MISMATCH"
	CodeUnresolvedTemplate Code = "UNRESOLVED_TEMPLATE"
	CodeRulePanic          Code = "RULE_PANIC"

	// 基础设施相关
	CodeDatabaseError     Code = "DATABASE_ERROR"
	CodeCacheError        Code = "CACHE_ERROR"
	CodeConfigUnavailable Code = "CONFIG_UNAVAILABLE"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsRuleError 是否为单条规则内部错误（调用方应按放行处理）
func IsRuleError(err error) bool {
	switch GetCode(err) {
	case CodeMalformedCondition, CodeUnknownField, CodeTypeMismatch, CodeUnresolvedTemplate, CodeRulePanic:
		return true
	}
	return false
}

// MalformedCondition 创建条件文档格式错误
func MalformedCondition(cause error) *AppError {
	return Wrap(cause, CodeMalformedCondition, "条件文档格式错误")
}

// UnknownField 创建未知字段路径错误
func UnknownField(path string) *AppError {
	return New(CodeUnknownField, fmt.Sprintf("未知字段路径 '%s'", path)).WithField("path", path)
}

// TypeMismatch 创建类型不匹配错误
func TypeMismatch(field, expected string, got interface{}) *AppError {
	return New(CodeTypeMismatch, fmt.Sprintf("字段 '%s' 期望 %s, 实际为 %T", field, expected, got)).
		WithField("field", field)
}

// UnresolvedTemplate 创建模板无法解析错误
func UnresolvedTemplate(path string) *AppError {
	return New(CodeUnresolvedTemplate, fmt.Sprintf("模板引用 '%s' 无法解析", path)).WithField("path", path)
}

// NotFound 创建资源不存在错误
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' 不存在", resource, id))
}

// Database 包装数据库错误
func Database(err error, op string) *AppError {
	return Wrap(err, CodeDatabaseError, fmt.Sprintf("数据库操作失败: %s", op))
}

// ConfigUnavailable 包装配置存储不可用错误
func ConfigUnavailable(err error) *AppError {
	return Wrap(err, CodeConfigUnavailable, "规则/系数配置不可用")
}

// 预定义错误
var (
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrInternal     = New(CodeInternal, "内部错误")
	ErrTimeout      = New(CodeTimeout, "操作超时")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeInvalidInput, "验证失败")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
