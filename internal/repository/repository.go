// Package repository 提供规则、系数、维修厂与车辆数据的只读访问
package repository

import (
	"context"
	"database/sql"
)

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ShopFilter 维修厂查询过滤器
type ShopFilter struct {
	Codes         []string `json:"codes,omitempty"`
	Region        string   `json:"region,omitempty"`
	ActiveOnly    bool     `json:"active_only"`
	PreferredOnly bool     `json:"preferred_only"`
	Limit         int      `json:"limit"`
}

// DefaultShopFilter 返回默认过滤器（全部启用的维修厂）
func DefaultShopFilter() ShopFilter {
	return ShopFilter{
		ActiveOnly: true,
		Limit:      500,
	}
}

// WithCodes 限定维修厂代码
func (f ShopFilter) WithCodes(codes []string) ShopFilter {
	f.Codes = codes
	return f
}

// WithRegion 限定区域
func (f ShopFilter) WithRegion(region string) ShopFilter {
	f.Region = region
	return f
}

// WithPreferredOnly 只查询优选网络
func (f ShopFilter) WithPreferredOnly() ShopFilter {
	f.PreferredOnly = true
	return f
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func nullFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}
