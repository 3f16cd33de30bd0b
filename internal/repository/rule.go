package repository

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// RuleRepository 资格规则仓储
type RuleRepository struct {
	db DB
}

// NewRuleRepository 创建资格规则仓储
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// ListAll 查询全部未删除的规则（含未启用规则，由评估器跳过）
func (r *RuleRepository) ListAll(ctx context.Context) ([]model.EligibilityRule, error) {
	query := `
		SELECT id, rule_name, rule_category, condition_json, priority,
			is_active, is_blocking, created_at, updated_at
		FROM eligibility_rules
		WHERE deleted_at IS NULL
		ORDER BY priority ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Database(err, "查询资格规则")
	}
	defer rows.Close()

	var rules []model.EligibilityRule
	for rows.Next() {
		var (
			rule     model.EligibilityRule
			category string
			cond     []byte
		)
		if err := rows.Scan(
			&rule.ID, &rule.RuleName, &category, &cond, &rule.Priority,
			&rule.IsActive, &rule.IsBlocking, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描规则失败: %w", err)
		}
		rule.RuleCategory = model.RuleCategory(category)
		rule.Condition = json.RawMessage(cond)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历资格规则")
	}

	return rules, nil
}
