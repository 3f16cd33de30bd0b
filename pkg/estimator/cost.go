package estimator

import (
	"github.com/shopspring/decimal"

	"github.com/shopeval/shopeval/pkg/model"
)

// CostEstimate 费用估算（金额保留两位小数）
type CostEstimate struct {
	TotalHours   decimal.Decimal `json:"total_hours"`
	LaborRate    decimal.Decimal `json:"labor_rate"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	MaterialCost decimal.Decimal `json:"material_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// EstimateCost 按维修厂工时费率和材料系数计算费用
// 人工费 = 总工时 × 费率；材料费 = 人工费 × (材料系数 - 1)，不为负
func EstimateCost(hours Hours, shop *model.Shop) CostEstimate {
	total := decimal.Zero
	for _, wt := range model.WorkTypes {
		total = total.Add(decimal.NewFromFloat(hours.Get(wt)))
	}

	if shop == nil {
		return CostEstimate{
			TotalHours:   total,
			LaborRate:    decimal.Zero,
			LaborCost:    decimal.Zero,
			MaterialCost: decimal.Zero,
			TotalCost:    decimal.Zero,
		}
	}

	rate := decimal.NewFromFloat(shop.LaborRate)
	labor := total.Mul(rate).Round(2)

	markup := decimal.NewFromFloat(shop.MaterialMultiplier).Sub(decimal.NewFromInt(1))
	if markup.IsNegative() {
		markup = decimal.Zero
	}
	material := labor.Mul(markup).Round(2)

	return CostEstimate{
		TotalHours:   total,
		LaborRate:    rate,
		LaborCost:    labor,
		MaterialCost: material,
		TotalCost:    labor.Add(material),
	}
}
