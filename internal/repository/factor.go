package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// FactorRepository 工时系数仓储
// 同时实现同步查询模式的 estimator.FactorLookup
type FactorRepository struct {
	db DB
}

// NewFactorRepository 创建工时系数仓储
func NewFactorRepository(db DB) *FactorRepository {
	return &FactorRepository{db: db}
}

const factorColumns = `id, factor_type, factor_value, work_type, effective_date, base_hours, multiplier`

// ListEffective 查询每个 (类型, 值, 工时类别) 在 asOf 当天生效的最新系数
func (r *FactorRepository) ListEffective(ctx context.Context, asOf time.Time) ([]model.WorkHoursFactor, error) {
	query := `
		SELECT DISTINCT ON (factor_type, factor_value, work_type) ` + factorColumns + `
		FROM work_hours_factors
		WHERE effective_date <= $1
		ORDER BY factor_type, factor_value, work_type, effective_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, model.DateOnly(asOf))
	if err != nil {
		return nil, apperrors.Database(err, "查询工时系数")
	}
	defer rows.Close()

	return scanFactors(rows)
}

// Lookup 实现 estimator.FactorLookup，按当天日期取最新生效系数
func (r *FactorRepository) Lookup(ctx context.Context, factorType, factorValue string, workType model.WorkType) (*model.WorkHoursFactor, error) {
	query := `
		SELECT ` + factorColumns + `
		FROM work_hours_factors
		WHERE factor_type = $1 AND factor_value = $2 AND work_type = $3
			AND effective_date <= CURRENT_DATE
		ORDER BY effective_date DESC
		LIMIT 1
	`

	f := &model.WorkHoursFactor{}
	var wt string
	err := r.db.QueryRowContext(ctx, query, factorType, factorValue, string(workType)).Scan(
		&f.ID, &f.FactorType, &f.FactorValue, &wt, &f.EffectiveDate, &f.BaseHours, &f.Multiplier,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Database(err, "查询工时系数")
	}
	f.WorkType = model.WorkType(wt)

	return f, nil
}

// LookupAll 实现 estimator.FactorLookup
func (r *FactorRepository) LookupAll(ctx context.Context, factorType, factorValue string) ([]model.WorkHoursFactor, error) {
	query := `
		SELECT DISTINCT ON (work_type) ` + factorColumns + `
		FROM work_hours_factors
		WHERE factor_type = $1 AND factor_value = $2 AND effective_date <= CURRENT_DATE
		ORDER BY work_type, effective_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, factorType, factorValue)
	if err != nil {
		return nil, apperrors.Database(err, "查询工时系数")
	}
	defer rows.Close()

	return scanFactors(rows)
}

func scanFactors(rows *sql.Rows) ([]model.WorkHoursFactor, error) {
	var factors []model.WorkHoursFactor
	for rows.Next() {
		var (
			f  model.WorkHoursFactor
			wt string
		)
		if err := rows.Scan(
			&f.ID, &f.FactorType, &f.FactorValue, &wt, &f.EffectiveDate, &f.BaseHours, &f.Multiplier,
		); err != nil {
			return nil, fmt.Errorf("扫描工时系数失败: %w", err)
		}
		f.WorkType = model.WorkType(wt)
		factors = append(factors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历工时系数")
	}
	return factors, nil
}
