package database

import (
	"strings"
	"testing"
)

func TestTruncateQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"单行不变", "SELECT 1", "SELECT 1"},
		{"多行压缩", "\n\t\tSELECT id\n\t\tFROM shops\n\t\tWHERE shop_code = $1\n\t", "SELECT id FROM shops WHERE shop_code = $1"},
		{"超长截断", strings.Repeat("a", 250), strings.Repeat("a", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateQuery(tt.query); got != tt.expected {
				t.Errorf("truncateQuery() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
