package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeNotFound, "车辆不存在")
	if err.Error() != "[NOT_FOUND] 车辆不存在" {
		t.Errorf("Error() = %s", err.Error())
	}

	wrapped := Wrap(sql.ErrNoRows, CodeDatabaseError, "查询失败")
	if !errors.Is(wrapped, sql.ErrNoRows) {
		t.Error("Wrap should preserve the cause for errors.Is")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("evaluate: %w", UnknownField("car.wheel_count"))

	if !Is(err, CodeUnknownField) {
		t.Error("Is() should see through fmt.Errorf wrapping")
	}
	if GetCode(err) != CodeUnknownField {
		t.Errorf("GetCode() = %s, expected %s", GetCode(err), CodeUnknownField)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() on plain error should be UNKNOWN")
	}
}

func TestIsRuleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"格式错误", MalformedCondition(errors.New("bad json")), true},
		{"未知字段", UnknownField("x.y"), true},
		{"类型不匹配", TypeMismatch("value", "list", 1), true},
		{"模板", UnresolvedTemplate("car.lining_type"), true},
		{"数据库", Database(errors.New("conn refused"), "list rules"), false},
		{"普通错误", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsRuleError(tt.err); result != tt.expected {
				t.Errorf("IsRuleError() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Error("new ValidationErrors should be empty")
	}

	ve.Add("labor_rate", "不能为负数")
	if !ve.HasErrors() {
		t.Error("HasErrors() should be true after Add")
	}

	appErr := ve.ToAppError()
	if appErr.Code != CodeInvalidInput {
		t.Errorf("ToAppError().Code = %s, expected %s", appErr.Code, CodeInvalidInput)
	}
	if appErr.Fields["labor_rate"] != "不能为负数" {
		t.Errorf("Fields[labor_rate] = %v", appErr.Fields["labor_rate"])
	}
}
