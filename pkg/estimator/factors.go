package estimator

import (
	"context"
	"time"

	"github.com/shopeval/shopeval/pkg/model"
)

// FactorLookup 工时系数查询
// 两种实现：同步查询（数据库仓储）和预取的内存系数表 FactorTable
type FactorLookup interface {
	// Lookup 返回 (类型, 值, 工时类别) 当前生效的系数，不存在时返回 nil
	Lookup(ctx context.Context, factorType, factorValue string, workType model.WorkType) (*model.WorkHoursFactor, error)
	// LookupAll 返回 (类型, 值) 在各工时类别上当前生效的系数
	LookupAll(ctx context.Context, factorType, factorValue string) ([]model.WorkHoursFactor, error)
}

type factorKey struct {
	factorType  string
	factorValue string
	workType    model.WorkType
}

// FactorTable 预取的内存系数表，构造后只读
type FactorTable struct {
	asOf    time.Time
	factors map[factorKey]model.WorkHoursFactor
}

// NewFactorTable 创建系数表：只保留生效日期不晚于 asOf 的记录，同键取生效日期最新的一条
func NewFactorTable(factors []model.WorkHoursFactor, asOf time.Time) *FactorTable {
	t := &FactorTable{
		asOf:    model.DateOnly(asOf),
		factors: make(map[factorKey]model.WorkHoursFactor, len(factors)),
	}

	for _, f := range factors {
		if !f.IsEffectiveOn(asOf) {
			continue
		}
		key := factorKey{f.FactorType, f.FactorValue, f.WorkType}
		if existing, ok := t.factors[key]; ok && !f.EffectiveDate.After(existing.EffectiveDate) {
			continue
		}
		t.factors[key] = f
	}

	return t
}

// AsOf 系数表生效日期
func (t *FactorTable) AsOf() time.Time {
	return t.asOf
}

// Len 生效系数数量
func (t *FactorTable) Len() int {
	return len(t.factors)
}

// Lookup 实现 FactorLookup
func (t *FactorTable) Lookup(_ context.Context, factorType, factorValue string, workType model.WorkType) (*model.WorkHoursFactor, error) {
	f, ok := t.factors[factorKey{factorType, factorValue, workType}]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// LookupAll 实现 FactorLookup，按工时类别固定顺序返回
func (t *FactorTable) LookupAll(_ context.Context, factorType, factorValue string) ([]model.WorkHoursFactor, error) {
	var result []model.WorkHoursFactor
	for _, wt := range model.WorkTypes {
		if f, ok := t.factors[factorKey{factorType, factorValue, wt}]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}
